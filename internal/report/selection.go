package report

import (
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/scoring"
)

var (
	ErrNoCriteriaSelected = errors.New("no criteria selected")
	ErrInvalidRank        = errors.New("invalid rank")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrDataUnavailable    = errors.New("amenity data unavailable")
)

// Selection maps each active criterion to its importance rank (1–5).
// A category that is absent is inactive.
type Selection map[amenity.Category]int

// ParseSelection converts wire names into a Selection and validates it.
func ParseSelection(raw map[string]int) (Selection, error) {
	sel := make(Selection, len(raw))
	for name, rank := range raw {
		c, err := amenity.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		sel[c] = rank
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	return sel, nil
}

// Validate requires at least one criterion and ranks within bounds.
func (s Selection) Validate() error {
	if len(s) == 0 {
		return ErrNoCriteriaSelected
	}
	for c, rank := range s {
		if !c.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
		if rank < scoring.MinRank || rank > scoring.MaxRank {
			return fmt.Errorf("%w: %s has rank %d, want %d-%d", ErrInvalidRank, c, rank, scoring.MinRank, scoring.MaxRank)
		}
	}
	return nil
}

// Clone returns an independent copy of s.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	for c, r := range s {
		out[c] = r
	}
	return out
}

// Categories lists the selected criteria in canonical order.
func (s Selection) Categories() []amenity.Category {
	var out []amenity.Category
	for _, c := range amenity.Categories() {
		if _, ok := s[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
