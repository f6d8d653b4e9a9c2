package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/geo"
	"github.com/MikeSquared-Agency/Vicinity/internal/scoring"
)

// Observer is told about every location report attempt.
type Observer interface {
	ObserveReport(role string, score int, err error)
}

// Options tune an Orchestrator.
type Options struct {
	// RankWeights maps ranks to composite weights; empty means raw rank.
	RankWeights scoring.RankWeights
	// FetchTimeout bounds the fetch barrier of each location; 0 disables it.
	FetchTimeout time.Duration
	Observer     Observer
}

// State is a copy of what an Orchestrator remembers between runs.
type State struct {
	Selection          Selection        `json:"criteria,omitempty"`
	PrimaryLocation    *geo.Point       `json:"primary_location,omitempty"`
	ComparisonLocation *geo.Point       `json:"comparison_location,omitempty"`
	Primary            *CompositeReport `json:"primary,omitempty"`
	Comparison         *CompositeReport `json:"comparison,omitempty"`
}

// Orchestrator generates composite reports for a primary location and an
// optional comparison location. It owns a single ProximityScorer, so runs
// are serialized; use one Orchestrator per concurrent client.
type Orchestrator struct {
	runMu    sync.Mutex
	scorer   *scoring.ProximityScorer
	provider amenity.Provider
	opts     Options
	logger   *slog.Logger

	stateMu            sync.RWMutex
	selection          Selection
	primaryLocation    *geo.Point
	comparisonLocation *geo.Point
	primary            *CompositeReport
	comparison         *CompositeReport
}

func NewOrchestrator(scorer *scoring.ProximityScorer, provider amenity.Provider, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		scorer:   scorer,
		provider: provider,
		opts:     opts,
		logger:   logger,
	}
}

// Generate scores req.Primary and, if set, req.Comparison. Invalid input
// fails before any work. A provider failure only loses the location it
// happened for; it is reported in that location's outcome and in Reports.Err.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Reports, error) {
	if err := req.Selection.Validate(); err != nil {
		return nil, err
	}
	if err := req.Primary.Validate(); err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	if req.Comparison != nil {
		if err := req.Comparison.Validate(); err != nil {
			return nil, fmt.Errorf("comparison: %w", err)
		}
	}

	o.runMu.Lock()
	defer o.runMu.Unlock()

	sel := req.Selection.Clone()
	primaryLoc := req.Primary
	var comparisonLoc *geo.Point
	if req.Comparison != nil {
		c := *req.Comparison
		comparisonLoc = &c
	}

	o.stateMu.Lock()
	o.selection = sel
	o.primaryLocation = &primaryLoc
	o.comparisonLocation = comparisonLoc
	o.stateMu.Unlock()

	reports := &Reports{
		ID:          uuid.New(),
		GeneratedAt: time.Now().UTC(),
	}

	reports.Primary = o.runLocation(ctx, reports.ID, RolePrimary, primaryLoc, sel)
	if comparisonLoc != nil {
		out := o.runLocation(ctx, reports.ID, RoleComparison, *comparisonLoc, sel)
		reports.Comparison = &out
	}

	o.stateMu.Lock()
	o.primary = reports.Primary.Report.clone()
	o.comparison = nil
	if reports.Comparison != nil {
		o.comparison = reports.Comparison.Report.clone()
	}
	o.stateMu.Unlock()

	return reports, nil
}

func (o *Orchestrator) runLocation(ctx context.Context, id uuid.UUID, role Role, loc geo.Point, sel Selection) LocationOutcome {
	out := LocationOutcome{Role: role, Location: loc}
	rep, err := o.scoreLocation(ctx, role, loc, sel)
	if err != nil {
		out.Err = err
		o.logger.Warn("location report failed", "report_id", id, "role", role, "location", loc.String(), "error", err)
	} else {
		out.Report = rep
		o.logger.Info("location report generated", "report_id", id, "role", role, "location", loc.String(), "score", rep.CompositeScore)
	}
	if o.opts.Observer != nil {
		score := 0
		if rep != nil {
			score = rep.CompositeScore
		}
		o.opts.Observer.ObserveReport(string(role), score, err)
	}
	return out
}

// scoreLocation runs the fetch barrier for every selected criterion, then
// computes the composite and snapshots the per-criterion results before the
// scorer is reused.
func (o *Orchestrator) scoreLocation(ctx context.Context, role Role, loc geo.Point, sel Selection) (*CompositeReport, error) {
	o.scorer.DisableAll()

	if o.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.FetchTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, cat := range sel.Categories() {
		cat := cat
		weight :=o.opts.RankWeights.Weight(sel[cat])
		g.Go(func() error {
			list, err := o.provider.FetchAmenities(gctx, cat)
			if err != nil {
				return &DataUnavailableError{Role: role, Category: cat, Err: err}
			}
			if res := o.scorer.Activate(cat, weight, list); res != scoring.ActivateOK {
				return fmt.Errorf("%w: %s (%s)", ErrUnknownCategory, cat, res)
			}
			o.logger.Debug("criterion activated", "role", role, "category", cat, "weight", weight, "candidates", len(list))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	composite := o.scorer.ComputeComposite(loc)
	return &CompositeReport{
		Location:       loc,
		CompositeScore: composite,
		PerCriterion:   o.scorer.LatestResults(),
	}, nil
}

// Clear forgets stored reports and the comparison location. The primary
// location and the criteria selection are kept.
func (o *Orchestrator) Clear() {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	o.primary = nil
	o.comparison = nil
	o.comparisonLocation = nil
}

// State returns a copy of the orchestrator's stored state.
func (o *Orchestrator) State() State {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	st := State{
		Selection:  o.selection.Clone(),
		Primary:    o.primary.clone(),
		Comparison: o.comparison.clone(),
	}
	if o.primaryLocation != nil {
		p := *o.primaryLocation
		st.PrimaryLocation = &p
	}
	if o.comparisonLocation != nil {
		c := *o.comparisonLocation
		st.ComparisonLocation = &c
	}
	return st
}

// PrimaryReport returns a copy of the last successful primary report.
func (o *Orchestrator) PrimaryReport() *CompositeReport {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.primary.clone()
}

// ComparisonReport returns a copy of the last successful comparison report.
func (o *Orchestrator) ComparisonReport() *CompositeReport {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.comparison.clone()
}

// Builder creates Orchestrators that share a provider and scoring setup but
// each own a fresh ProximityScorer.
type Builder struct {
	provider amenity.Provider
	configs  map[amenity.Category]scoring.StrategyConfig
	opts     Options
	logger   *slog.Logger
}

func NewBuilder(provider amenity.Provider, configs map[amenity.Category]scoring.StrategyConfig, opts Options, logger *slog.Logger) *Builder {
	return &Builder{provider: provider, configs: configs, opts: opts, logger: logger}
}

// New returns an Orchestrator with its own scorer.
func (b *Builder) New() *Orchestrator {
	return NewOrchestrator(scoring.NewProximityScorer(b.configs, b.logger), b.provider, b.opts, b.logger)
}

// Configs returns the strategy config in effect for every category.
func (b *Builder) Configs() map[amenity.Category]scoring.StrategyConfig {
	defaults := scoring.DefaultConfigs()
	out := make(map[amenity.Category]scoring.StrategyConfig, len(defaults))
	for c, cfg := range defaults {
		if override, ok := b.configs[c]; ok {
			cfg = override
		}
		out[c] = cfg
	}
	return out
}
