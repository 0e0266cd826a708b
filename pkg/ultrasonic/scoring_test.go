package ultrasonic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersistenceScoreBuckets(t *testing.T) {
	assert.Equal(t, 1.0, PersistenceScore(10))
	assert.Equal(t, 0.7, PersistenceScore(3))
	assert.Equal(t, 0.5, PersistenceScore(1.5))
	assert.Equal(t, 0.3, PersistenceScore(0.6))
	assert.Equal(t, 0.1, PersistenceScore(0.1))
}

func TestTrackingLikelihoodFollowingAcrossLocationsScoresHigh(t *testing.T) {
	score := TrackingLikelihood(TrackingInput{
		SourceConfidence:  80,
		FollowingUser:     true,
		SeenAtHome:        true,
		DistinctLocations: 3,
		PersistenceScore:  0.8,
		DurationSeconds:   10,
		AmplitudeProfile:  "Pulsing",
		SNRDb:             25,
		FrequencyStable:   true,
		ModulationMatched: true,
		Category:          "Tracking",
		Environment:       1.0,
		IsHome:            false,
	})
	assert.GreaterOrEqual(t, score, 90)
	assert.LessOrEqual(t, score, 100)
}

func TestTrackingLikelihoodHalvedAtHomeUnlessFollowing(t *testing.T) {
	base := TrackingInput{
		SourceConfidence: 50,
		Environment:      1.0,
	}

	atHome := base
	atHome.IsHome = true
	scoreAtHome := TrackingLikelihood(atHome)

	elsewhere := base
	elsewhere.IsHome = false
	scoreElsewhere := TrackingLikelihood(elsewhere)

	assert.Less(t, scoreAtHome, scoreElsewhere)
}

func TestTrackingLikelihoodClampsToHundred(t *testing.T) {
	score := TrackingLikelihood(TrackingInput{
		SourceConfidence:  100,
		FollowingUser:     true,
		SeenAtHome:        true,
		DistinctLocations: 5,
		PersistenceScore:  1.0,
		DurationSeconds:   100,
		AmplitudeProfile:  "Pulsing",
		SNRDb:             50,
		FrequencyStable:   true,
		ModulationMatched: true,
		Category:          "Tracking",
		Environment:       2.0,
	})
	assert.Equal(t, 100, score)
}

func TestFalsePositiveLikelihoodManyConcurrentUnconfirmedBeacons(t *testing.T) {
	score := FalsePositiveLikelihood(FalsePositiveInput{
		ConcurrentBeacons: 6,
		DetectionCount:    2,
		DurationSeconds:   2,
		FrequencyStable:   false,
	})
	assert.Greater(t, score, 50)
}

func TestFalsePositiveLikelihoodConfirmedSourceScoresLow(t *testing.T) {
	score := FalsePositiveLikelihood(FalsePositiveInput{
		ConcurrentBeacons: 1,
		DetectionCount:    10,
		DurationSeconds:   30,
		MatchedSource:     true,
		SourceConfidence:  90,
		SNRDb:             30,
		FrequencyStable:   true,
		ModulationMatched: true,
		DistinctLocations: 5,
		SeenAtHome:        true,
		MinutesElapsed:    10,
		AmplitudeProfile:  "Pulsing",
		FollowingUser:     true,
	})
	assert.Equal(t, 0, score, "a high-confidence matched source with corroborating signals should clamp to zero")
}

func TestFalsePositiveLikelihoodNeverNegative(t *testing.T) {
	score := FalsePositiveLikelihood(FalsePositiveInput{
		MatchedSource:     true,
		SourceConfidence:  100,
		FrequencyStable:   true,
		ModulationMatched: true,
		SeenAtHome:        true,
		DistinctLocations: 10,
		MinutesElapsed:    100,
		FollowingUser:     true,
		AmplitudeProfile:  "Pulsing",
	})
	assert.GreaterOrEqual(t, score, 0)
}
