package store

import (
	"context"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
)

// Store is a writable amenity source.
type Store interface {
	amenity.Provider
	// UpsertAmenities inserts amenities not yet stored and returns how many
	// rows were added. Existing (category, name, lat, lon) rows are kept.
	UpsertAmenities(ctx context.Context, list []amenity.Amenity) (int, error)
	CountByCategory(ctx context.Context) (map[amenity.Category]int, error)
	Close() error
}

// Validate rejects amenities that must never reach the table.
func Validate(a amenity.Amenity) error {
	if !a.Category.Valid() {
		return &InvalidAmenityError{Name: a.Name, Reason: "unknown category " + string(a.Category)}
	}
	if a.Name == "" {
		return &InvalidAmenityError{Reason: "name is required"}
	}
	if err := a.Point.Validate(); err != nil {
		return &InvalidAmenityError{Name: a.Name, Reason: err.Error()}
	}
	return nil
}

type InvalidAmenityError struct {
	Name   string
	Reason string
}

func (e *InvalidAmenityError) Error() string {
	if e.Name == "" {
		return "invalid amenity: " + e.Reason
	}
	return "invalid amenity " + e.Name + ": " + e.Reason
}
