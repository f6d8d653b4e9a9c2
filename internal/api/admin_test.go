package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/session"
	"github.com/MikeSquared-Agency/Vicinity/internal/store"
)

type mockWriter struct{ mock.Mock }

func (m *mockWriter) UpsertAmenities(ctx context.Context, list []amenity.Amenity) (int, error) {
	args := m.Called(ctx, list)
	return args.Int(0), args.Error(1)
}

func adminRequest(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStatsEndpoint_ReturnsStats(t *testing.T) {
	env := setupTestRouter(t)
	doRequest(env.router, "POST", "/api/v1/reports", "s1", createBody)

	w := adminRequest(env.router, "GET", "/api/v1/admin/stats", "test-token", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats StatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, 3, stats.Amenities[amenity.HawkerCentre])
	assert.Equal(t, 1, stats.Amenities[amenity.Clinic])
}

func TestAdminRequiresToken(t *testing.T) {
	env := setupTestRouter(t)

	w := adminRequest(env.router, "GET", "/api/v1/admin/stats", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = adminRequest(env.router, "GET", "/api/v1/admin/stats", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpsertAmenities_ReadOnlySource(t *testing.T) {
	env := setupTestRouter(t)

	w := adminRequest(env.router, "POST", "/api/v1/admin/amenities", "test-token", `{"amenities":[]}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestUpsertAmenities(t *testing.T) {
	writer := &mockWriter{}
	writer.On("UpsertAmenities", mock.Anything, mock.MatchedBy(func(list []amenity.Amenity) bool {
		return len(list) == 2 && list[0].Category == amenity.Clinic && list[1].Name == "Bukit Timah Plaza"
	})).Return(1, nil).Once()

	env := setupTestRouterWith(t, nil, session.Options{}, Options{AdminToken: "test-token", Writer: writer})

	body := `{"amenities":[
		{"name":"Healthway Medical","category":"Clinic","lat":1.35,"lon":103.77},
		{"name":"Bukit Timah Plaza","category":"supermarket","lat":1.34,"lon":103.77}
	]}`
	w := adminRequest(env.router, "POST", "/api/v1/admin/amenities", "test-token", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]int
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp["received"])
	assert.Equal(t, 1, resp["inserted"])
	writer.AssertExpectations(t)
}

func TestUpsertAmenities_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		storeErr error
		want     int
	}{
		{"malformed", `{"amenities":`, nil, http.StatusBadRequest},
		{"empty", `{"amenities":[]}`, nil, http.StatusBadRequest},
		{"invalid amenity", `{"amenities":[{"name":"x","category":"gym","lat":0,"lon":0}]}`,
			&store.InvalidAmenityError{Name: "x", Reason: "unknown category gym"}, http.StatusBadRequest},
		{"store failure", `{"amenities":[{"name":"x","category":"clinic","lat":0,"lon":0}]}`,
			errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &mockWriter{}
			if tt.storeErr != nil {
				writer.On("UpsertAmenities", mock.Anything, mock.Anything).Return(0, tt.storeErr)
			}
			env := setupTestRouterWith(t, nil, session.Options{}, Options{Writer: writer})

			w := adminRequest(env.router, "POST", "/api/v1/admin/amenities", "", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			writer.AssertExpectations(t)
		})
	}
}
