package amenity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Vicinity/internal/geo"
)

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 5)
	assert.Equal(t, []Category{HawkerCentre, TransitStation, Clinic, School, Supermarket}, cats)

	cats[0] = "mutated"
	assert.Equal(t, HawkerCentre, Categories()[0], "Categories must return a copy")
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Hawker_Centre ")
	require.NoError(t, err)
	assert.Equal(t, HawkerCentre, c)

	_, err = ParseCategory("library")
	assert.Error(t, err)
}

func TestDedupe(t *testing.T) {
	in := []Amenity{
		{Point: geo.NewPoint(1, 1), Name: "Alpha", Category: Clinic},
		{Point: geo.NewPoint(1, 1), Name: "Alpha annex", Category: Clinic},
		{Point: geo.NewPoint(2, 2), Name: "alpha", Category: Clinic},
		{Point: geo.NewPoint(3, 3), Name: "Beta", Category: Clinic},
		{Point: geo.NewPoint(4, 4), Name: "", Category: Clinic},
		{Point: geo.NewPoint(5, 5), Name: "", Category: Clinic},
	}
	out := Dedupe(in)
	names := make([]string, 0, len(out))
	for _, a := range out {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Alpha", "Beta", "", ""}, names)
}

const sampleFile = `
amenities:
  - {name: Maxwell Food Centre, category: hawker_centre, lat: 1.2803, lon: 103.8448}
  - {name: Amoy Street Food Centre, category: hawker_centre, lat: 1.2793, lon: 103.8466}
  - {name: Maxwell Food Centre, category: hawker_centre, lat: 1.2804, lon: 103.8449}
  - {name: Tanjong Pagar, category: transit_station, lat: 1.2764, lon: 103.8468, label: EW15}
`

func TestFileProvider(t *testing.T) {
	p, err := ParseFile([]byte(sampleFile))
	require.NoError(t, err)

	hawkers, err := p.FetchAmenities(context.Background(), HawkerCentre)
	require.NoError(t, err)
	require.Len(t, hawkers, 2)
	assert.Equal(t, "Maxwell Food Centre", hawkers[0].Name)

	stations, err := p.FetchAmenities(context.Background(), TransitStation)
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "EW15", stations[0].Label)

	schools, err := p.FetchAmenities(context.Background(), School)
	require.NoError(t, err)
	assert.Empty(t, schools)

	counts, err := p.CountByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts[HawkerCentre])
	assert.Equal(t, 0, counts[Supermarket])
}

func TestFileProviderReturnsCopy(t *testing.T) {
	p, err := ParseFile([]byte(sampleFile))
	require.NoError(t, err)

	first, _ := p.FetchAmenities(context.Background(), HawkerCentre)
	first[0].Name = "changed"
	second, _ := p.FetchAmenities(context.Background(), HawkerCentre)
	assert.Equal(t, "Maxwell Food Centre", second[0].Name)
}

func TestFileProviderRejectsBadEntries(t *testing.T) {
	_, err := ParseFile([]byte(`amenities: [{name: x, category: library, lat: 1, lon: 1}]`))
	assert.Error(t, err)

	_, err = ParseFile([]byte(`amenities: [{name: x, category: clinic, lat: 95, lon: 1}]`))
	assert.ErrorIs(t, err, geo.ErrInvalidLocation)
}

func TestFileProviderHonoursCancelledContext(t *testing.T) {
	p, err := NewStaticProvider(nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.FetchAmenities(ctx, Clinic)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/amenities", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.URL.Query().Get("category") {
		case "clinic":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"name":"Raffles Medical","lat":1.2839,"lon":103.8515},
				{"name":"Raffles Medical","lat":1.2839,"lon":103.8515}
			]`))
		default:
			http.Error(w, "boom", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "secret")

	list, err := p.FetchAmenities(context.Background(), Clinic)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, Clinic, list[0].Category)
	assert.InDelta(t, 1.2839, list[0].Lat, 1e-9)

	_, err = p.FetchAmenities(context.Background(), School)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

type recordingObserver struct {
	category Category
	err      error
	calls    int
}

func (r *recordingObserver) ObserveFetch(category Category, _ time.Duration, err error) {
	r.category = category
	r.err = err
	r.calls++
}

func TestInstrument(t *testing.T) {
	boom := errors.New("boom")
	obs := &recordingObserver{}
	p := Instrument(ProviderFunc(func(_ context.Context, c Category) ([]Amenity, error) {
		if c == School {
			return nil, boom
		}
		return []Amenity{{Name: "x", Category: c}}, nil
	}), obs)

	list, err := p.FetchAmenities(context.Background(), Clinic)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, Clinic, obs.category)
	assert.NoError(t, obs.err)

	_, err = p.FetchAmenities(context.Background(), School)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, obs.err, boom)
	assert.Equal(t, 2, obs.calls)

	plain := ProviderFunc(func(context.Context, Category) ([]Amenity, error) { return nil, nil })
	assert.NotNil(t, Instrument(plain, nil))
}
