package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/session"
	"github.com/MikeSquared-Agency/Vicinity/internal/store"
)

// maxUpsertBatch bounds one admin upsert request.
const maxUpsertBatch = 5000

type AmenityCounter interface {
	CountByCategory(ctx context.Context) (map[amenity.Category]int, error)
}

type AmenityWriter interface {
	UpsertAmenities(ctx context.Context, list []amenity.Amenity) (int, error)
}

type AdminHandler struct {
	sessions *session.Manager
	counter  AmenityCounter
	writer   AmenityWriter
}

// NewAdminHandler returns the admin handler. counter and writer may be nil
// when the amenity source cannot count or accept writes.
func NewAdminHandler(sessions *session.Manager, counter AmenityCounter, writer AmenityWriter) *AdminHandler {
	return &AdminHandler{sessions: sessions, counter: counter, writer: writer}
}

type StatsResponse struct {
	ActiveSessions int                      `json:"active_sessions"`
	Amenities      map[amenity.Category]int `json:"amenities,omitempty"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{ActiveSessions: h.sessions.Len()}
	if h.counter != nil {
		counts, err := h.counter.CountByCategory(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Amenities = counts
	}
	writeJSON(w, http.StatusOK, resp)
}

type UpsertAmenitiesRequest struct {
	Amenities []amenity.Amenity `json:"amenities"`
}

func (h *AdminHandler) UpsertAmenities(w http.ResponseWriter, r *http.Request) {
	if h.writer == nil {
		writeError(w, http.StatusNotImplemented, "amenity source is read-only")
		return
	}

	var req UpsertAmenitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Amenities) == 0 {
		writeError(w, http.StatusBadRequest, "amenities required")
		return
	}
	if len(req.Amenities) > maxUpsertBatch {
		writeError(w, http.StatusRequestEntityTooLarge, "too many amenities in one request")
		return
	}
	for i := range req.Amenities {
		if c, err := amenity.ParseCategory(string(req.Amenities[i].Category)); err == nil {
			req.Amenities[i].Category = c
		}
	}

	inserted, err := h.writer.UpsertAmenities(r.Context(), req.Amenities)
	if err != nil {
		var invalid *store.InvalidAmenityError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"received": len(req.Amenities), "inserted": inserted})
}
