package scoring

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/geo"
)

var origin = geo.NewPoint(0, 0)

// northOf returns an amenity distKm due north of origin.
func northOf(name string, distKm float64) amenity.Amenity {
	lat := distKm / geo.EarthRadiusKm * 180 / math.Pi
	return amenity.Amenity{Point: geo.NewPoint(lat, 0), Name: name, Category: amenity.HawkerCentre}
}

func hawkerConfig() StrategyConfig {
	return DefaultConfigs()[amenity.HawkerCentre]
}

func names(list []amenity.Amenity) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Name
	}
	return out
}

func TestDecayThresholdWorkedExample(t *testing.T) {
	s := NewDecayThresholdStrategy(hawkerConfig())
	r := s.Score(origin, []amenity.Amenity{
		northOf("c", 0.4),
		northOf("a", 0.1),
		northOf("b", 0.2),
	})

	// 100*0.6 + 100*0.2 + 90*0.6 = 134, clamped
	assert.Equal(t, 100.0, r.Score)
	assert.True(t, r.HasData)
	assert.Equal(t, []string{"a", "b", "c"}, names(r.Amenities))
}

func TestDecayThresholdUnclamped(t *testing.T) {
	s := NewDecayThresholdStrategy(hawkerConfig())

	tests := []struct {
		name      string
		distances []float64
		want      float64
	}{
		{"single in first band", []float64{0.1}, 60},
		{"one per band", []float64{0.7, 1.5}, 75*0.6 + 50*0.6},
		{"two in last band", []float64{1.2, 1.5}, 50*0.6 + 50*0.2},
		{"three in last band", []float64{1.1, 1.5, 1.9}, 50*0.6 + 50*0.2 + 50*0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cands []amenity.Amenity
			for i, d := range tt.distances {
				cands = append(cands, northOf(fmt.Sprintf("a%d", i), d))
			}
			r := s.Score(origin, cands)
			assert.InDelta(t, tt.want, r.Score, 1e-9)
			assert.Len(t, r.Amenities, len(tt.distances))
		})
	}
}

func TestDecayThresholdBeyondEveryThreshold(t *testing.T) {
	s := NewDecayThresholdStrategy(hawkerConfig())
	r := s.Score(origin, []amenity.Amenity{northOf("far", 2.5), northOf("farther", 10)})
	assert.Equal(t, 0.0, r.Score)
	assert.Empty(t, r.Amenities)
	assert.False(t, r.HasData)
}

func TestDecayThresholdEmptyCandidates(t *testing.T) {
	s := NewDecayThresholdStrategy(hawkerConfig())
	r := s.Score(origin, nil)
	assert.Equal(t, Result{}, r)
}

func TestDecayThresholdSkipsFarButKeepsNear(t *testing.T) {
	s := NewDecayThresholdStrategy(hawkerConfig())
	r := s.Score(origin, []amenity.Amenity{northOf("far", 5), northOf("near", 0.9)})
	assert.InDelta(t, 75*0.6, r.Score, 1e-9)
	assert.Equal(t, []string{"near"}, names(r.Amenities))
}

func TestDecayThresholdVarietyCap(t *testing.T) {
	s := NewDecayThresholdStrategy(hawkerConfig())
	r := s.Score(origin, []amenity.Amenity{
		northOf("a", 1.1),
		northOf("b", 1.2),
		northOf("c", 1.3),
		northOf("d", 0.05),
		northOf("e", 1.4),
	})
	require.Len(t, r.Amenities, 3)
	assert.Equal(t, []string{"d", "a", "b"}, names(r.Amenities))
	assert.InDelta(t, 100*0.6+50*0.6+50*0.2, r.Score, 1e-9)
}

func TestDecayThresholdExhaustedDecayStillCounts(t *testing.T) {
	s := NewDecayThresholdStrategy(StrategyConfig{
		MaxVariety:         5,
		Thresholds:         []float64{1},
		BandWeights:        []float64{40},
		SameThresholdDecay: []float64{0.5, 0.25},
	})
	r := s.Score(origin, []amenity.Amenity{northOf("a", 0.1), northOf("b", 0.2), northOf("c", 0.3)})
	assert.InDelta(t, 40*0.5+40*0.25, r.Score, 1e-9)
	assert.Len(t, r.Amenities, 3, "an amenity past the decay list still occupies a variety slot")
	assert.True(t, r.HasData)
}

func TestDecayThresholdZeroVariety(t *testing.T) {
	cfg := hawkerConfig()
	cfg.MaxVariety = 0
	r := NewDecayThresholdStrategy(cfg).Score(origin, []amenity.Amenity{northOf("a", 0.1)})
	assert.Equal(t, Result{}, r)
}

func TestDecayThresholdTiesKeepInputOrder(t *testing.T) {
	cfg := hawkerConfig()
	s := NewDecayThresholdStrategy(cfg)

	first := northOf("first", 0.25)
	second := northOf("second", 0.25)
	r := s.Score(origin, []amenity.Amenity{first, second})

	assert.Equal(t, []string{"first", "second"}, names(r.Amenities))
	want := cfg.BandWeights[0] * (cfg.SameThresholdDecay[0] + cfg.SameThresholdDecay[1])
	assert.InDelta(t, want, r.Score, 1e-9)

	r = s.Score(origin, []amenity.Amenity{second, first})
	assert.Equal(t, []string{"second", "first"}, names(r.Amenities))
}

func TestDecayThresholdDoesNotReorderInput(t *testing.T) {
	s := NewDecayThresholdStrategy(hawkerConfig())
	in := []amenity.Amenity{northOf("c", 0.4), northOf("a", 0.1), northOf("b", 0.2)}
	s.Score(origin, in)
	assert.Equal(t, []string{"c", "a", "b"}, names(in))
}

func TestDecayThresholdConfigIsCopied(t *testing.T) {
	cfg := hawkerConfig()
	s := NewDecayThresholdStrategy(cfg)
	cfg.BandWeights[0] = 0
	r := s.Score(origin, []amenity.Amenity{northOf("a", 0.1)})
	assert.InDelta(t, 60, r.Score, 1e-9)

	got := s.Config()
	got.Thresholds[0] = 99
	assert.Equal(t, 0.3, s.Config().Thresholds[0])
}

func TestDecayThresholdScoreBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for cat, cfg := range DefaultConfigs() {
		s := NewDecayThresholdStrategy(cfg)
		for trial := 0; trial < 200; trial++ {
			n := rng.Intn(25)
			cands := make([]amenity.Amenity, n)
			for i := range cands {
				cands[i] = northOf(fmt.Sprintf("%s-%d", cat, i), rng.Float64()*3)
			}
			r := s.Score(origin, cands)
			if r.Score < 0 || r.Score > MaxScore {
				t.Fatalf("%s: score %f out of range", cat, r.Score)
			}
			if len(r.Amenities) > cfg.MaxVariety {
				t.Fatalf("%s: %d contributors exceeds max variety %d", cat, len(r.Amenities), cfg.MaxVariety)
			}
			if r.HasData != (len(r.Amenities) > 0) {
				t.Fatalf("%s: HasData=%v with %d contributors", cat, r.HasData, len(r.Amenities))
			}
		}
	}
}

func TestStrategyConfigValidate(t *testing.T) {
	for cat, cfg := range DefaultConfigs() {
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config for %s invalid: %v", cat, err)
		}
	}

	tests := []struct {
		name string
		cfg  StrategyConfig
	}{
		{"negative variety", StrategyConfig{MaxVariety: -1, Thresholds: []float64{1}, BandWeights: []float64{1}}},
		{"no thresholds", StrategyConfig{MaxVariety: 1}},
		{"length mismatch", StrategyConfig{MaxVariety: 1, Thresholds: []float64{1, 2}, BandWeights: []float64{1}}},
		{"not increasing", StrategyConfig{MaxVariety: 1, Thresholds: []float64{1, 1}, BandWeights: []float64{1, 1}}},
		{"zero threshold", StrategyConfig{MaxVariety: 1, Thresholds: []float64{0}, BandWeights: []float64{1}}},
		{"negative weight", StrategyConfig{MaxVariety: 1, Thresholds: []float64{1}, BandWeights: []float64{-1}}},
		{"negative decay", StrategyConfig{MaxVariety: 1, Thresholds: []float64{1}, BandWeights: []float64{1}, SameThresholdDecay: []float64{-0.1}}},
		{"infinite threshold", StrategyConfig{MaxVariety: 1, Thresholds: []float64{1, math.Inf(1)}, BandWeights: []float64{1, 1}}},
		{"infinite weight", StrategyConfig{MaxVariety: 1, Thresholds: []float64{1}, BandWeights: []float64{math.Inf(1)}}},
		{"infinite decay", StrategyConfig{MaxVariety: 1, Thresholds: []float64{1}, BandWeights: []float64{0}, SameThresholdDecay: []float64{math.Inf(1)}}},
		{"nan decay", StrategyConfig{MaxVariety: 1, Thresholds: []float64{1}, BandWeights: []float64{1}, SameThresholdDecay: []float64{math.NaN()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRankWeights(t *testing.T) {
	var raw RankWeights
	assert.Equal(t, 3.0, raw.Weight(3))
	assert.Equal(t, 0.0, raw.Weight(0))
	assert.Equal(t, 0.0, raw.Weight(6))
	assert.NoError(t, raw.Validate())

	table := RankWeights{0.5, 1, 2, 4, 8}
	assert.NoError(t, table.Validate())
	assert.Equal(t, 0.5, table.Weight(1))
	assert.Equal(t, 8.0, table.Weight(5))

	assert.Error(t, RankWeights{1, 2}.Validate())
	assert.Error(t, RankWeights{1, 2, 3, 4, -5}.Validate())
	assert.Error(t, RankWeights{1, 2, 3, 4, math.Inf(1)}.Validate())
}
