package amenity

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileProvider serves amenities loaded once from a YAML or JSON document:
//
//	amenities:
//	  - {name: Maxwell Food Centre, category: hawker_centre, lat: 1.2803, lon: 103.8448}
type FileProvider struct {
	byCategory map[Category][]Amenity
}

type amenityFile struct {
	Amenities []Amenity `yaml:"amenities"`
}

// LoadFile reads path and indexes its amenities by category.
func LoadFile(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read amenity file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile indexes an in-memory amenity document.
func ParseFile(data []byte) (*FileProvider, error) {
	var doc amenityFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse amenity file: %w", err)
	}
	return NewStaticProvider(doc.Amenities)
}

// NewStaticProvider indexes amenities by category. Every amenity must carry a
// known category and a valid coordinate.
func NewStaticProvider(amenities []Amenity) (*FileProvider, error) {
	p := &FileProvider{byCategory: make(map[Category][]Amenity)}
	for i, a := range amenities {
		if !a.Category.Valid() {
			return nil, fmt.Errorf("amenity %d (%s): unknown category %q", i, a.Name, a.Category)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("amenity %d (%s): %w", i, a.Name, err)
		}
		p.byCategory[a.Category] = append(p.byCategory[a.Category], a)
	}
	for c, list := range p.byCategory {
		p.byCategory[c] = Dedupe(list)
	}
	return p, nil
}

func (p *FileProvider) FetchAmenities(ctx context.Context, category Category) ([]Amenity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	list := p.byCategory[category]
	out := make([]Amenity, len(list))
	copy(out, list)
	return out, nil
}

// CountByCategory returns the number of amenities held per category.
func (p *FileProvider) CountByCategory(_ context.Context) (map[Category]int, error) {
	out := make(map[Category]int, len(categories))
	for _, c := range categories {
		out[c] = len(p.byCategory[c])
	}
	return out, nil
}
