package cellular

import (
	"time"

	"github.com/meshguard/sentinel/pkg/model"
)

// LocationStaleness is the age at which the last known location is no
// longer considered "recent" (spec.md §4.7.2, §6).
const LocationStaleness = 30 * time.Second

// AnalyzeMovement classifies the device's mobility between two fixes taken
// dt apart, per spec.md §4.7.2. hasRecentLocation gates whether an absent
// previous location still yields a Stationary classification or an
// "unknown" one that must not be used to upgrade stationary-specific
// penalties.
func AnalyzeMovement(prev, curr *model.LatLon, dt time.Duration, hasRecentLocation bool) model.MovementAnalysis {
	if prev == nil || curr == nil {
		if hasRecentLocation {
			return model.MovementAnalysis{Class: model.MovementStationary}
		}
		return model.MovementAnalysis{Class: model.MovementUnknown}
	}

	distance := model.HaversineMeters(*prev, *curr)

	if dt <= 0 {
		return model.MovementAnalysis{DistanceMeters: distance, Class: model.MovementStationary}
	}

	hours := dt.Hours()
	speedKMH := (distance / 1000.0) / hours

	class, impossible := classifySpeed(speedKMH)

	return model.MovementAnalysis{
		DistanceMeters: distance,
		SpeedKMH:       speedKMH,
		Class:          class,
		ImpossibleJump: impossible,
	}
}

func classifySpeed(kmh float64) (model.MovementClass, bool) {
	switch {
	case kmh < 1:
		return model.MovementStationary, false
	case kmh < 7:
		return model.MovementWalking, false
	case kmh < 20:
		return model.MovementRunning, false
	case kmh < 40:
		return model.MovementCycling, false
	case kmh < 150:
		return model.MovementVehicle, false
	case kmh < 350:
		return model.MovementHighSpeedVehicle, false
	default:
		return model.MovementImpossible, true
	}
}
