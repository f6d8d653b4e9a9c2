package scoring

import (
	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
)

// DefaultConfigs returns the built-in band layout for every criterion.
func DefaultConfigs() map[amenity.Category]StrategyConfig {
	return map[amenity.Category]StrategyConfig{
		amenity.HawkerCentre: {
			MaxVariety:         3,
			Thresholds:         []float64{0.3, 0.5, 1, 2},
			BandWeights:        []float64{100, 90, 75, 50},
			SameThresholdDecay: []float64{0.6, 0.2, 0.1},
		},
		amenity.TransitStation: {
			MaxVariety:         3,
			Thresholds:         []float64{0.4, 0.8, 1.2, 2},
			BandWeights:        []float64{100, 85, 65, 40},
			SameThresholdDecay: []float64{0.7, 0.2, 0.1},
		},
		amenity.Clinic: {
			MaxVariety:         2,
			Thresholds:         []float64{0.5, 1, 2},
			BandWeights:        []float64{100, 80, 50},
			SameThresholdDecay: []float64{0.8, 0.2},
		},
		amenity.School: {
			MaxVariety:         3,
			Thresholds:         []float64{1, 2},
			BandWeights:        []float64{100, 70},
			SameThresholdDecay: []float64{0.6, 0.25, 0.15},
		},
		amenity.Supermarket: {
			MaxVariety:         2,
			Thresholds:         []float64{0.5, 1, 1.5},
			BandWeights:        []float64{100, 80, 60},
			SameThresholdDecay: []float64{0.7, 0.3},
		},
	}
}
