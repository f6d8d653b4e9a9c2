package amenity

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/Vicinity/internal/geo"
)

// Category is one of the five criteria a user can weight.
type Category string

const (
	HawkerCentre   Category = "hawker_centre"
	TransitStation Category = "transit_station"
	Clinic         Category = "clinic"
	School         Category = "school"
	Supermarket    Category = "supermarket"
)

var categories = []Category{HawkerCentre, TransitStation, Clinic, School, Supermarket}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the five known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// DisplayName returns a human readable name for c.
func (c Category) DisplayName() string {
	switch c {
	case HawkerCentre:
		return "Hawker centre"
	case TransitStation:
		return "Transit station"
	case Clinic:
		return "Clinic"
	case School:
		return "School"
	case Supermarket:
		return "Supermarket"
	default:
		return string(c)
	}
}

// ParseCategory converts a wire name into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Amenity is a named point of interest belonging to one category.
type Amenity struct {
	geo.Point `yaml:",inline"`
	Name      string   `json:"name" yaml:"name"`
	Category  Category `json:"category" yaml:"category"`
}

// Provider supplies the candidate amenities for a category.
type Provider interface {
	FetchAmenities(ctx context.Context, category Category) ([]Amenity, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, category Category) ([]Amenity, error)

func (f ProviderFunc) FetchAmenities(ctx context.Context, category Category) ([]Amenity, error) {
	return f(ctx, category)
}

type coordKey struct{ lat, lon float64 }

type nameKey struct {
	category Category
	name     string
}

// Dedupe drops amenities sharing a coordinate with an earlier entry, and
// amenities repeating an earlier name within the same category. First
// occurrence wins and relative order is preserved.
func Dedupe(in []Amenity) []Amenity {
	seenCoord := make(map[coordKey]bool, len(in))
	seenName := make(map[nameKey]bool, len(in))
	out := make([]Amenity, 0, len(in))
	for _, a := range in {
		ck := coordKey{a.Lat, a.Lon}
		nk := nameKey{a.Category, strings.ToLower(strings.TrimSpace(a.Name))}
		if seenCoord[ck] {
			continue
		}
		if nk.name != "" && seenName[nk] {
			continue
		}
		seenCoord[ck] = true
		if nk.name != "" {
			seenName[nk] = true
		}
		out = append(out, a)
	}
	return out
}
