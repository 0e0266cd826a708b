package cellular

import (
	"strconv"

	"github.com/meshguard/sentinel/pkg/model"
	"github.com/meshguard/sentinel/pkg/signatures"
)

// ScoreFactor names one additive contributor to the IMSI-catcher score,
// used both for the numeric total and for the human-readable contributing-
// factors list attached to an emitted anomaly.
type ScoreFactor struct {
	Points int
	Reason string
}

// IMSIScoreResult is the output of ScoreIMSICatcher: the saturated 0..100
// score plus the list of factors that contributed to it.
type IMSIScoreResult struct {
	Score   int
	Factors []ScoreFactor
}

// ScoreIMSICatcher computes the additive, saturating 0..100 IMSI-catcher
// score from a plain analysis record (spec.md §4.7.1), kept as a pure
// function so it is easy to property-test and fuzz (spec.md §9).
func ScoreIMSICatcher(a model.CellularAnalysis) IMSIScoreResult {
	var total int
	var factors []ScoreFactor

	add := func(points int, reason string) {
		total += points
		factors = append(factors, ScoreFactor{Points: points, Reason: reason})
	}

	if IsMonotoneDowngradeToTwoG(a.DowngradeChain) {
		add(30, "Progressive downgrade to 2G (StingRay signature)")
	}
	if a.EncryptionWeakOrNone {
		add(25, "Encryption downgraded to weak or none")
	}
	if a.SignalDBM >= -55 {
		add(20, "Suspiciously strong signal for current location")
	}
	if a.DowngradeWithSpike {
		add(20, "Network downgrade coincided with a signal spike")
	}
	if a.DowngradeWithUntrusted {
		add(15, "Network downgrade coincided with an untrusted tower")
	}
	if a.ImpossibleSpeed {
		add(15, "Movement between readings implies an impossible speed")
	}
	if a.Movement.Class == model.MovementStationary {
		add(10, "Device stationary at moment of cell change")
	}
	if a.TrustScore < 30 {
		add(10, "Low trust score for current cell")
	}
	if a.LACTACChangedNoCell {
		add(10, "Location/tracking area code changed without a cell change")
	}
	if a.OperatorChanged {
		add(10, "Operator changed")
	}
	if a.GenerationChanged {
		add(5, "Network generation changed")
	}
	if a.LAC != nil && signatures.SuspiciousLAC(*a.LAC) {
		add(25, suspiciousLACReason(*a.LAC))
	}
	if a.TAC != nil && signatures.SuspiciousTAC(*a.TAC) {
		add(20, suspiciousTACReason(*a.TAC))
	}
	if a.SuspiciousCellIDShape {
		add(15, "Cell ID matches a known simulator default pattern")
	}
	if (a.MCC == "310" || a.MCC == "311") && !signatures.IsKnownUSCarrierMNC(a.MCC, a.MNC) {
		add(20, "MCC is a US code but MNC is not a recognized carrier")
	}
	if a.SignalDBM >= -55 && a.TrustScore < 30 {
		add(15, "Strong signal from a low-trust cell")
	}

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return IMSIScoreResult{Score: total, Factors: factors}
}

func suspiciousLACReason(lac int32) string {
	return "Suspicious LAC value (" + strconv.Itoa(int(lac)) + ")"
}

func suspiciousTACReason(tac int32) string {
	return "Suspicious TAC value (" + strconv.Itoa(int(tac)) + ")"
}
