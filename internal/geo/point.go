package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// ErrInvalidLocation is returned by Validate for coordinates that cannot be scored.
var ErrInvalidLocation = errors.New("invalid location")

// Point is an immutable WGS84 coordinate with an optional label
// (typically a postal code or address line).
type Point struct {
	Lat   float64 `json:"lat" yaml:"lat"`
	Lon   float64 `json:"lon" yaml:"lon"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// NewPoint returns an unlabelled point.
func NewPoint(lat, lon float64) Point {
	return Point{Lat: lat, Lon: lon}
}

// WithLabel returns a copy of p carrying label.
func (p Point) WithLabel(label string) Point {
	p.Label = label
	return p
}

// Equal reports whether both points carry the same non-empty label,
// or sit at exactly the same coordinate.
func (p Point) Equal(o Point) bool {
	if p.Label != "" && o.Label != "" && p.Label == o.Label {
		return true
	}
	return p.Lat == o.Lat && p.Lon == o.Lon
}

// Validate rejects NaN, infinite and out-of-range coordinates.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return fmt.Errorf("%w: non-finite coordinate (%v, %v)", ErrInvalidLocation, p.Lat, p.Lon)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidLocation, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidLocation, p.Lon)
	}
	return nil
}

func (p Point) String() string {
	if p.Label != "" {
		return fmt.Sprintf("%s (%.6f, %.6f)", p.Label, p.Lat, p.Lon)
	}
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}

// DistanceKm returns the great-circle distance between a and b in kilometres.
// Invalid coordinates are not checked and propagate as NaN.
func DistanceKm(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceM returns DistanceKm in metres.
func DistanceM(a, b Point) float64 {
	return DistanceKm(a, b) * 1000
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
