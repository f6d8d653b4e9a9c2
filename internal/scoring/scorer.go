package scoring

import (
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/geo"
)

// ActivateResult reports what Activate did with its arguments.
type ActivateResult int

const (
	ActivateOK ActivateResult = iota
	ActivateUnknownCategory
)

func (r ActivateResult) String() string {
	switch r {
	case ActivateOK:
		return "ok"
	case ActivateUnknownCategory:
		return "unknown_category"
	default:
		return "invalid"
	}
}

type criterion struct {
	strategy   Strategy
	weight     float64
	candidates []amenity.Amenity
	enabled    bool
}

// ProximityScorer holds one strategy per criterion and combines the enabled
// ones into a weighted composite. A scorer serves one report run at a time;
// Activate may be called concurrently from that run's fetch goroutines.
type ProximityScorer struct {
	mu       sync.Mutex
	criteria map[amenity.Category]*criterion
	latest   Results
	logger   *slog.Logger
}

// NewProximityScorer registers a DecayThresholdStrategy for every category,
// taking its config from configs and falling back to DefaultConfigs.
func NewProximityScorer(configs map[amenity.Category]StrategyConfig, logger *slog.Logger) *ProximityScorer {
	s := NewEmptyScorer(logger)
	defaults := DefaultConfigs()
	for _, c := range amenity.Categories() {
		cfg, ok := configs[c]
		if !ok {
			cfg = defaults[c]
		}
		s.Register(c, NewDecayThresholdStrategy(cfg))
	}
	return s
}

// NewEmptyScorer returns a scorer with no registered criteria.
func NewEmptyScorer(logger *slog.Logger) *ProximityScorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProximityScorer{
		criteria: make(map[amenity.Category]*criterion),
		latest:   make(Results),
		logger:   logger,
	}
}

// Register installs strategy for category with weight 0, no candidates, disabled.
func (s *ProximityScorer) Register(category amenity.Category, strategy Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria[category] = &criterion{strategy: strategy}
}

// DisableAll turns every criterion off without clearing its weight or candidates.
func (s *ProximityScorer) DisableAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.criteria {
		c.enabled = false
	}
}

// Activate sets the weight and candidates of a registered criterion and
// enables it. Unregistered categories are left alone and reported.
func (s *ProximityScorer) Activate(category amenity.Category, weight float64, candidates []amenity.Amenity) ActivateResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.criteria[category]
	if !ok {
		s.logger.Warn("activate on unregistered criterion", "category", category)
		return ActivateUnknownCategory
	}
	c.weight = weight
	c.candidates = candidates
	c.enabled = true
	return ActivateOK
}

// ComputeComposite scores every enabled criterion against query, replaces
// the latest results, and returns floor(Σ score·weight / Σ weight), or 0
// when no weight is enabled.
func (s *ProximityScorer) ComputeComposite(query geo.Point) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = make(Results, len(s.criteria))
	var weightedSum, totalWeight float64
	for _, cat := range s.sortedCategories() {
		c := s.criteria[cat]
		if !c.enabled {
			continue
		}
		r := c.strategy.Score(query, c.candidates)
		s.latest[cat] = r
		weightedSum += r.Score * c.weight
		totalWeight += c.weight
		s.logger.Debug("criterion scored", "category", cat, "score", r.Score, "weight", c.weight, "contributors", len(r.Amenities))
	}

	if totalWeight <= 0 {
		return 0
	}
	composite := math.Floor(weightedSum / totalWeight)
	if math.IsNaN(composite) {
		return 0
	}
	return int(composite)
}

// LatestResults returns a deep copy of the results of the last
// ComputeComposite call. Later computations never change the returned map.
func (s *ProximityScorer) LatestResults() Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest.Clone()
}

// Enabled lists the enabled criteria in a stable order.
func (s *ProximityScorer) Enabled() []amenity.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []amenity.Category
	for _, cat := range s.sortedCategories() {
		if s.criteria[cat].enabled {
			out = append(out, cat)
		}
	}
	return out
}

// Strategy returns the strategy registered for category.
func (s *ProximityScorer) Strategy(category amenity.Category) (Strategy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.criteria[category]
	if !ok {
		return nil, false
	}
	return c.strategy, true
}

// sortedCategories orders registered criteria deterministically so the
// floating-point sum does not depend on map iteration. Callers hold mu.
func (s *ProximityScorer) sortedCategories() []amenity.Category {
	out := make([]amenity.Category, 0, len(s.criteria))
	for c := range s.criteria {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
