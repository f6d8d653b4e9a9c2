package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/geo"
)

// MaxScore caps every per-criterion score.
const MaxScore = 100.0

// Strategy turns a query point and its candidate amenities into a Result.
type Strategy interface {
	Score(query geo.Point, candidates []amenity.Amenity) Result
}

// StrategyConfig parameterises DecayThresholdStrategy for one criterion.
//
// Thresholds are band upper bounds in kilometres, strictly increasing.
// BandWeights[i] is the base value of an amenity in band i. The n-th amenity
// landing in the same band is multiplied by SameThresholdDecay[n], or by 0
// once the decay list is exhausted.
type StrategyConfig struct {
	MaxVariety         int       `yaml:"max_variety" json:"max_variety"`
	Thresholds         []float64 `yaml:"thresholds_km" json:"thresholds_km"`
	BandWeights        []float64 `yaml:"band_weights" json:"band_weights"`
	SameThresholdDecay []float64 `yaml:"same_threshold_decay" json:"same_threshold_decay"`
}

// Validate checks the structural invariants of the config.
func (c StrategyConfig) Validate() error {
	if c.MaxVariety < 0 {
		return fmt.Errorf("max_variety must not be negative, got %d", c.MaxVariety)
	}
	if len(c.Thresholds) == 0 {
		return fmt.Errorf("at least one threshold is required")
	}
	if len(c.BandWeights) != len(c.Thresholds) {
		return fmt.Errorf("band_weights has %d entries, thresholds has %d", len(c.BandWeights), len(c.Thresholds))
	}
	for i, t := range c.Thresholds {
		if !finite(t) || t <= 0 {
			return fmt.Errorf("threshold %d must be positive and finite, got %v", i, t)
		}
		if i > 0 && t <= c.Thresholds[i-1] {
			return fmt.Errorf("thresholds must be strictly increasing: %v after %v", t, c.Thresholds[i-1])
		}
	}
	for i, w := range c.BandWeights {
		if !finite(w) || w < 0 {
			return fmt.Errorf("band weight %d must be finite and not negative, got %v", i, w)
		}
	}
	for i, d := range c.SameThresholdDecay {
		if !finite(d) || d < 0 {
			return fmt.Errorf("decay %d must be finite and not negative, got %v", i, d)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (c StrategyConfig) clone() StrategyConfig {
	return StrategyConfig{
		MaxVariety:         c.MaxVariety,
		Thresholds:         append([]float64(nil), c.Thresholds...),
		BandWeights:        append([]float64(nil), c.BandWeights...),
		SameThresholdDecay: append([]float64(nil), c.SameThresholdDecay...),
	}
}

// band returns the index of the first threshold covering distKm, or -1.
func (c StrategyConfig) band(distKm float64) int {
	for i, t := range c.Thresholds {
		if distKm <= t {
			return i
		}
	}
	return -1
}

func (c StrategyConfig) decay(occupancy int) float64 {
	if occupancy < len(c.SameThresholdDecay) {
		return c.SameThresholdDecay[occupancy]
	}
	return 0
}

// DecayThresholdStrategy rewards nearby variety: amenities are visited
// nearest first, each one claims the next decay slot of its distance band,
// and at most MaxVariety amenities contribute.
type DecayThresholdStrategy struct {
	cfg StrategyConfig
}

func NewDecayThresholdStrategy(cfg StrategyConfig) *DecayThresholdStrategy {
	return &DecayThresholdStrategy{cfg: cfg.clone()}
}

// Config returns a copy of the strategy's parameters.
func (s *DecayThresholdStrategy) Config() StrategyConfig {
	return s.cfg.clone()
}

type rankedAmenity struct {
	amenity amenity.Amenity
	distKm  float64
}

// Score implements Strategy. candidates is not modified.
func (s *DecayThresholdStrategy) Score(query geo.Point, candidates []amenity.Amenity) Result {
	ranked := make([]rankedAmenity, len(candidates))
	for i, a := range candidates {
		ranked[i] = rankedAmenity{amenity: a, distKm: geo.DistanceKm(query, a.Point)}
	}
	// Stable: equidistant amenities keep input order, which fixes who gets
	// the better decay slot.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].distKm < ranked[j].distKm
	})

	occupancy := make([]int, len(s.cfg.Thresholds))
	var (
		score        float64
		contributing []amenity.Amenity
	)
	for _, r := range ranked {
		if len(contributing) >= s.cfg.MaxVariety {
			break
		}
		b := s.cfg.band(r.distKm)
		if b < 0 {
			continue
		}
		score += s.cfg.BandWeights[b] * s.cfg.decay(occupancy[b])
		occupancy[b]++
		contributing = append(contributing, r.amenity)
	}

	if len(contributing) == 0 {
		return Result{}
	}
	return Result{
		Score:     math.Min(score, MaxScore),
		Amenities: contributing,
		HasData:   true,
	}
}
