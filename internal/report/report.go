package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/geo"
	"github.com/MikeSquared-Agency/Vicinity/internal/scoring"
)

// Role distinguishes the two locations of a comparison run.
type Role string

const (
	RolePrimary    Role = "primary"
	RoleComparison Role = "comparison"
)

// CompositeReport is the scored outcome for one location.
type CompositeReport struct {
	Location       geo.Point       `json:"location"`
	CompositeScore int             `json:"composite_score"`
	PerCriterion   scoring.Results `json:"per_criterion"`
}

func (r *CompositeReport) clone() *CompositeReport {
	if r == nil {
		return nil
	}
	return &CompositeReport{
		Location:       r.Location,
		CompositeScore: r.CompositeScore,
		PerCriterion:   r.PerCriterion.Clone(),
	}
}

// DataUnavailableError means a provider failed for one criterion, so the
// location it was fetched for has no report.
type DataUnavailableError struct {
	Role     Role
	Category amenity.Category
	Err      error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s location: %s data unavailable: %v", e.Role, e.Category, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

func (e *DataUnavailableError) Is(target error) bool { return target == ErrDataUnavailable }

// LocationOutcome is either a report or the error that prevented it.
type LocationOutcome struct {
	Role     Role             `json:"role"`
	Location geo.Point        `json:"location"`
	Report   *CompositeReport `json:"report,omitempty"`
	Err      error            `json:"-"`
}

// Request is the input to Orchestrator.Generate.
type Request struct {
	Selection  Selection
	Primary    geo.Point
	Comparison *geo.Point
}

// Reports is the result of one Generate call.
type Reports struct {
	ID          uuid.UUID        `json:"report_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Primary     LocationOutcome  `json:"primary"`
	Comparison  *LocationOutcome `json:"comparison,omitempty"`
}

// Outcomes lists the primary outcome, then the comparison outcome if requested.
func (r *Reports) Outcomes() []LocationOutcome {
	out := []LocationOutcome{r.Primary}
	if r.Comparison != nil {
		out = append(out, *r.Comparison)
	}
	return out
}

// Err joins the per-location errors; nil when every location was scored.
func (r *Reports) Err() error {
	var errs []error
	for _, o := range r.Outcomes() {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// AllFailed reports whether no requested location produced a report.
func (r *Reports) AllFailed() bool {
	for _, o := range r.Outcomes() {
		if o.Report != nil {
			return false
		}
	}
	return true
}
