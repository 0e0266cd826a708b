package ultrasonic

import (
	"strings"

	"github.com/meshguard/sentinel/pkg/model"
)

// Describe generates the actionable description for an ultrasonic beacon
// anomaly. matchedSource, if non-empty, pulls the catalog's confirmation
// and mitigation text for that vendor instead of the category default.
// Wired into Engine.emit and the EventAnomaly timeline entry (spec.md §7).
func Describe(anomalyType model.UltrasonicAnomalyType, matchedSource string, confirmationText, mitigationText string) model.ActionableDescription {
	if matchedSource != "" {
		return model.ActionableDescription{
			ProbableSource:    matchedSource,
			WhatItDoes:        confirmationText,
			RecommendedAction: mitigationText,
			ConfirmationSteps: []string{
				"Move to a different room or location and confirm the tone stops being detected.",
				"Check installed apps for microphone permissions they do not need.",
			},
		}
	}

	switch anomalyType {
	case model.AnomalyAdvertisingBeacon:
		return model.ActionableDescription{
			ProbableSource:    "Ad-tracking SDK listening for an ultrasonic ad beacon",
			WhatItDoes:        "Cross-device ad-tracking SDKs emit or listen for ultrasonic tones to correlate a TV or in-store ad exposure with a nearby phone.",
			RecommendedAction: "Revoke microphone permission from apps that do not need it for their core function.",
			ConfirmationSteps: []string{"Check whether the tone persists away from any TV, radio, or speaker."},
		}
	case model.AnomalyTrackingBeacon:
		return model.ActionableDescription{
			ProbableSource:    "Ultrasonic cross-device tracking beacon",
			WhatItDoes:        "A beacon designed to link multiple devices to the same person by ultrasonic proximity, observed following this device across distinct locations.",
			RecommendedAction: "Revoke microphone permission from apps that do not require it; consider a factory app audit if this recurs.",
			ConfirmationSteps: []string{
				"Confirm the same frequency is observed at a second, unrelated location.",
				"Review recently installed apps with microphone access.",
			},
		}
	case model.AnomalyRetailBeacon:
		return model.ActionableDescription{
			ProbableSource:    "In-store retail analytics beacon",
			WhatItDoes:        "Retail beacons use ultrasonic tones to detect presence and dwell time near displays or checkout areas.",
			RecommendedAction: "Usually benign while inside the store; revoke microphone access from shopping apps if unwanted outside store hours.",
			ConfirmationSteps: []string{"Check whether the tone stops once you leave the retail location."},
		}
	case model.AnomalyAnalyticsBeacon:
		return model.ActionableDescription{
			ProbableSource:    "TV content-attribution or viewership watermark",
			WhatItDoes:        "Smart TVs and set-top boxes embed inaudible watermarks in broadcast audio for automatic content recognition and ad attribution.",
			RecommendedAction: "Usually benign; no action required unless detected far from any television.",
			ConfirmationSteps: []string{"Confirm a TV or media device is active nearby."},
		}
	default:
		return model.ActionableDescription{
			ProbableSource:    "Unidentified ultrasonic emitter",
			WhatItDoes:        "A persistent, repeating ultrasonic tone was detected that did not match a known signature.",
			RecommendedAction: "Monitor for recurrence across multiple locations before taking action.",
			ConfirmationSteps: []string{"Review the contributing factors listed with this alert."},
		}
	}
}

// actionableDescriptionText renders the §7 actionable description block —
// probable source, what it does, recommended action, confirmation steps —
// alongside the scored contributing factors, for the timeline entry and
// persisted event text attached to an emitted beacon anomaly.
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
