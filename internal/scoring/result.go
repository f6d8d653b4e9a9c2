package scoring

import (
	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
)

// Result is one criterion's score together with the amenities that earned it,
// nearest first. The zero value means nothing contributed.
type Result struct {
	Score     float64           `json:"score"`
	Amenities []amenity.Amenity `json:"contributing_amenities"`
	// HasData separates "no amenity in range" (false) from a computed score.
	HasData bool `json:"has_data"`
}

// Clone returns a copy that shares no memory with r.
func (r Result) Clone() Result {
	out := Result{Score: r.Score, HasData: r.HasData}
	if r.Amenities != nil {
		out.Amenities = make([]amenity.Amenity, len(r.Amenities))
		copy(out.Amenities, r.Amenities)
	}
	return out
}

// Results maps each scored criterion to its result.
type Results map[amenity.Category]Result

// Clone deep-copies rs.
func (rs Results) Clone() Results {
	out := make(Results, len(rs))
	for c, r := range rs {
		out[c] = r.Clone()
	}
	return out
}
