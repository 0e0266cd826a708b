package cellular

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meshguard/sentinel/pkg/model"
)

func TestScoreIMSICatcherCleanSnapshotScoresZero(t *testing.T) {
	result := ScoreIMSICatcher(model.CellularAnalysis{
		TrustScore: 100,
		SignalDBM:  -95,
	})
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Factors)
}

func TestScoreIMSICatcherStingRaySignatureSaturatesHigh(t *testing.T) {
	lac := int32(0)
	analysis := model.CellularAnalysis{
		DowngradeChain:         []model.NetworkGeneration{model.Gen4G, model.Gen3G, model.Gen2G},
		EncryptionWeakOrNone:   true,
		SignalDBM:              -40,
		DowngradeWithSpike:     true,
		DowngradeWithUntrusted: true,
		ImpossibleSpeed:        true,
		Movement:               model.MovementAnalysis{Class: model.MovementStationary},
		TrustScore:             0,
		LAC:                    &lac,
	}

	result := ScoreIMSICatcher(analysis)
	assert.Equal(t, 100, result.Score, "additive factors should saturate at the 0..100 ceiling")
	assert.NotEmpty(t, result.Factors)
}

func TestScoreIMSICatcherNeverNegative(t *testing.T) {
	result := ScoreIMSICatcher(model.CellularAnalysis{})
	assert.GreaterOrEqual(t, result.Score, 0)
}

func TestScoreIMSICatcherStrongSignalFromLowTrustCell(t *testing.T) {
	result := ScoreIMSICatcher(model.CellularAnalysis{
		SignalDBM:  -50,
		TrustScore: 10,
	})
	assert.Equal(t, 20+10+15, result.Score)
}
