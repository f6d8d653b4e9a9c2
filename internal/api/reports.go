package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/Vicinity/internal/geo"
	"github.com/MikeSquared-Agency/Vicinity/internal/report"
	"github.com/MikeSquared-Agency/Vicinity/internal/session"
)

type ReportsHandler struct {
	service  *report.Service
	sessions *session.Manager
	logger   *slog.Logger
}

func NewReportsHandler(svc *report.Service, sessions *session.Manager, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{service: svc, sessions: sessions, logger: logger}
}

type CreateReportRequest struct {
	Criteria   map[string]int `json:"criteria"`
	Primary    *geo.Point     `json:"primary"`
	Comparison *geo.Point     `json:"comparison,omitempty"`
}

type OutcomeResponse struct {
	Role     report.Role             `json:"role"`
	Location geo.Point               `json:"location"`
	Report   *report.CompositeReport `json:"report,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

type ReportsResponse struct {
	ReportID    string           `json:"report_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Primary     OutcomeResponse  `json:"primary"`
	Comparison  *OutcomeResponse `json:"comparison,omitempty"`
}

func toOutcomeResponse(o report.LocationOutcome) OutcomeResponse {
	out := OutcomeResponse{Role: o.Role, Location: o.Location, Report: o.Report}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return out
}

func toReportsResponse(reps *report.Reports) ReportsResponse {
	resp := ReportsResponse{
		ReportID:    reps.ID.String(),
		GeneratedAt: reps.GeneratedAt,
		Primary:     toOutcomeResponse(reps.Primary),
	}
	if reps.Comparison != nil {
		c := toOutcomeResponse(*reps.Comparison)
		resp.Comparison = &c
	}
	return resp
}

// Create generates reports into the caller's session. 200 when at least one
// location was scored, 503 when every location lost its amenity data.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Primary == nil {
		writeError(w, http.StatusBadRequest, "primary location required")
		return
	}

	sel, err := report.ParseSelection(req.Criteria)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, release, err := h.sessions.Acquire(SessionIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, session.ErrTooManySessions) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer release()

	reps, err := h.service.Generate(r.Context(), o, report.Request{
		Selection:  sel,
		Primary:    *req.Primary,
		Comparison: req.Comparison,
	}, chiMiddleware.GetReqID(r.Context()))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	status := http.StatusOK
	if reps.AllFailed() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, toReportsResponse(reps))
}

// Get returns the session's stored locations, criteria and latest reports.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, ok := h.sessions.Lookup(SessionIDFromContext(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "no reports for session")
		return
	}
	st := o.State()
	if st.Primary == nil && st.Comparison == nil {
		writeError(w, http.StatusNotFound, "no reports for session")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Clear drops stored reports and the comparison location, keeping the
// primary location and criteria.
func (h *ReportsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if o, ok := h.sessions.Lookup(SessionIDFromContext(r.Context())); ok {
		o.Clear()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// EndSession forgets the session entirely.
func (h *ReportsHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	id := SessionIDFromContext(r.Context())
	if !h.sessions.Delete(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended", "session_id": id})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, report.ErrNoCriteriaSelected),
		errors.Is(err, report.ErrInvalidRank),
		errors.Is(err, report.ErrUnknownCategory),
		errors.Is(err, geo.ErrInvalidLocation):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
