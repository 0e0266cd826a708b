package cellular

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/meshguard/sentinel/pkg/model"
)

// TestScoreIMSICatcherAlwaysSaturates property-tests the §8 invariant that
// ScoreIMSICatcher's output is clamped to 0..100 no matter which subset of
// additive factors a random analysis record triggers (spec.md §4.7.1,
// §9 "scoring as pure functions").
func TestScoreIMSICatcherAlwaysSaturates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lacVal := int32(rapid.IntRange(-1, 20).Draw(t, "lac"))
		tacVal := int32(rapid.IntRange(-1, 20).Draw(t, "tac"))
		var lac, tac *int32
		if lacVal >= 0 {
			lac = &lacVal
		}
		if tacVal >= 0 {
			tac = &tacVal
		}

		chainLen := rapid.IntRange(0, 5).Draw(t, "chainLen")
		chain := make([]model.NetworkGeneration, chainLen)
		for i := range chain {
			chain[i] = model.NetworkGeneration(rapid.IntRange(0, 4).Draw(t, "gen"))
		}

		analysis := model.CellularAnalysis{
			DowngradeChain:         chain,
			EncryptionWeakOrNone:   rapid.Bool().Draw(t, "encWeak"),
			SignalDBM:              rapid.IntRange(-120, 0).Draw(t, "signal"),
			DowngradeWithSpike:     rapid.Bool().Draw(t, "downgradeSpike"),
			DowngradeWithUntrusted: rapid.Bool().Draw(t, "downgradeUntrusted"),
			ImpossibleSpeed:        rapid.Bool().Draw(t, "impossibleSpeed"),
			Movement:               model.MovementAnalysis{Class: model.MovementClass(rapid.IntRange(0, 6).Draw(t, "movement"))},
			TrustScore:             rapid.IntRange(0, 100).Draw(t, "trust"),
			LACTACChangedNoCell:    rapid.Bool().Draw(t, "lacTacChanged"),
			OperatorChanged:        rapid.Bool().Draw(t, "operatorChanged"),
			GenerationChanged:      rapid.Bool().Draw(t, "genChanged"),
			LAC:                    lac,
			TAC:                    tac,
			SuspiciousCellIDShape:  rapid.Bool().Draw(t, "suspiciousShape"),
			MCC:                    rapid.SampledFrom([]string{"310", "311", "262", "001"}).Draw(t, "mcc"),
			MNC:                    rapid.SampledFrom([]string{"260", "410", "01", "999"}).Draw(t, "mnc"),
		}

		result := ScoreIMSICatcher(analysis)
		if result.Score < 0 || result.Score > 100 {
			t.Fatalf("score %d escaped the 0..100 clamp for analysis %+v", result.Score, analysis)
		}
	})
}
