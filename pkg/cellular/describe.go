package cellular

import (
	"strings"

	"github.com/meshguard/sentinel/pkg/model"
)

// Describe generates the actionable description for a cellular anomaly,
// grounded on the anomaly type and its contributing factors. Wired into
// Engine.buildAnomaly and the EventAnomaly timeline entry (spec.md §7).
func Describe(anomalyType model.CellularAnomalyType, factors []string) model.ActionableDescription {
	switch anomalyType {
	case model.AnomalySuspiciousNetwork:
		return model.ActionableDescription{
			ProbableSource:    "Test or unregistered mobile network identity",
			WhatItDoes:        "A base station broadcasting an ITU test or unassigned MCC/MNC can impersonate a carrier to coerce nearby phones to attach.",
			RecommendedAction: "Enable airplane mode briefly, then re-enable cellular; avoid sending sensitive data until the network identity resolves to your carrier.",
			ConfirmationSteps: []string{
				"Check whether the carrier name shown in the status bar matches your usual operator.",
				"Move to a different location and see if the same MCC/MNC is still reported.",
			},
		}
	case model.AnomalyEncryptionDowngrade:
		return model.ActionableDescription{
			ProbableSource:    "Cell-site simulator (IMSI catcher)",
			WhatItDoes:        "Forces the device onto a weaker-encryption or unencrypted generation, typically to intercept calls, texts, or device identifiers.",
			RecommendedAction: "Move away from the current location if possible; avoid placing calls or sending SMS until signal returns to normal generation.",
			ConfirmationSteps: []string{
				"Check whether the network generation recovers to 4G/5G after moving.",
				"Compare the reported cell ID against previously seen trusted cells for this area.",
			},
		}
	case model.AnomalyRapidCellSwitching:
		return model.ActionableDescription{
			ProbableSource:    "Mobile or portable cell-site simulator, or marginal coverage",
			WhatItDoes:        "Frequent cell reselection can indicate a nearby device aggressively competing for attachment, as well as ordinary coverage gaps.",
			RecommendedAction: "If switching continues while stationary, consider enabling airplane mode briefly.",
			ConfirmationSteps: []string{"Check whether switching stops once you are clearly stationary for several minutes."},
		}
	case model.AnomalySignalSpike:
		return model.ActionableDescription{
			ProbableSource:    "Nearby high-power transmitter, possibly a cell-site simulator",
			WhatItDoes:        "A sudden jump in signal strength can mean a more powerful, closer transmitter began dominating cell selection.",
			RecommendedAction: "Note the location and time; treat repeat spikes at the same place as more suspicious than a single occurrence.",
			ConfirmationSteps: []string{"Check whether the signal strength returns to its prior baseline shortly after."},
		}
	case model.AnomalyUnknownCellFamiliar:
		return model.ActionableDescription{
			ProbableSource:    "Unrecognized cell in a normally well-known area",
			WhatItDoes:        "A cell with no observation history appeared in a location where this device has otherwise built up trusted cells.",
			RecommendedAction: "Treat with caution if it recurs in the same familiar area; otherwise likely routine network rebalancing.",
			ConfirmationSteps: []string{"Check whether a previously trusted cell for this area returns on the next scan."},
		}
	case model.AnomalyLACTACChange:
		return model.ActionableDescription{
			ProbableSource:    "Tracking-area reassignment, or a simulator re-keying the same cell identity",
			WhatItDoes:        "The location/tracking area code changed while the serving cell identity stayed the same, which legitimate networks do only rarely outside planned boundary changes.",
			RecommendedAction: "Treat as informational unless accompanied by other suspicious factors in the same window.",
			ConfirmationSteps: []string{"Check whether the tracking area reverts on a subsequent scan."},
		}
	case model.AnomalyOperatorChange:
		return model.ActionableDescription{
			ProbableSource:    "Roaming onto a different carrier, or a simulator impersonating a different operator",
			WhatItDoes:        "The mobile country/network code changed without the device being placed in airplane mode or a roaming region.",
			RecommendedAction: "Confirm the new operator name is a carrier you recognize before treating it as routine.",
			ConfirmationSteps: []string{"Check whether the carrier name shown in the status bar matches an expected roaming partner."},
		}
	case model.AnomalyStationaryChange:
		return model.ActionableDescription{
			ProbableSource:    "Unexpected cell reselection while the device was not moving",
			WhatItDoes:        "The serving cell changed while the device showed no meaningful movement, which is more often routine network optimization but can indicate a nearby simulator competing for attachment.",
			RecommendedAction: "Monitor for recurrence; escalate only if the pattern repeats at the same location.",
			ConfirmationSteps: []string{"Check whether the original cell is reselected shortly afterward."},
		}
	default:
		return model.ActionableDescription{
			ProbableSource:    "Unusual cellular network behavior",
			WhatItDoes:        "One or more cellular signal characteristics deviated from this device's learned baseline.",
			RecommendedAction: "Monitor for repeat occurrences; treat as informational unless severity escalates.",
			ConfirmationSteps: []string{"Review the contributing factors listed with this alert."},
		}
	}
}

// actionableDescriptionText renders the §7 actionable description block —
// probable source, what it does, recommended action, confirmation steps —
// alongside the scored contributing factors, for the timeline entry and
// persisted event text attached to an emitted anomaly.
func actionableDescriptionText(d model.ActionableDescription, factorsText string) string {
	var b strings.Builder
	b.WriteString(factorsText)
	b.WriteString(" Probable source: ")
	b.WriteString(d.ProbableSource)
	b.WriteString(". ")
	b.WriteString(d.WhatItDoes)
	b.WriteString(" Recommended action: ")
	b.WriteString(d.RecommendedAction)
	if len(d.ConfirmationSteps) > 0 {
		b.WriteString(" Confirm by: ")
		b.WriteString(strings.Join(d.ConfirmationSteps, "; "))
		b.WriteString(".")
	}
	return b.String()
}
