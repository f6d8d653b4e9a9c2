package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Vicinity/internal/geo"
	"github.com/MikeSquared-Agency/Vicinity/internal/hermes"
)

// requestTimeout bounds a report run triggered from the event bus.
const requestTimeout = 30 * time.Second

// Service runs reports on behalf of API sessions and event-bus requests and
// publishes the outcome of each location.
type Service struct {
	builder *Builder
	hermes  hermes.Client
	logger  *slog.Logger
}

// NewService returns a Service. h may be nil, in which case nothing is published.
func NewService(b *Builder, h hermes.Client, logger *slog.Logger) *Service {
	return &Service{builder: b, hermes: h, logger: logger}
}

// Builder returns the builder used for event-bus requests.
func (s *Service) Builder() *Builder { return s.builder }

// Generate runs req on o and publishes one event per location.
func (s *Service) Generate(ctx context.Context, o *Orchestrator, req Request, requestID string) (*Reports, error) {
	reps, err := o.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.publish(reps, requestID)
	return reps, nil
}

// SetupSubscriptions consumes report requests from the event bus. Each
// request runs on its own Orchestrator.
func (s *Service) SetupSubscriptions() error {
	if s.hermes == nil {
		return nil
	}
	return s.hermes.Subscribe(hermes.SubjectReportRequest, hermes.QueueReportWorkers, func(_ string, data []byte) {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		s.HandleRequest(ctx, data)
	})
}

// HandleRequest decodes a ReportRequestEvent and runs it.
func (s *Service) HandleRequest(ctx context.Context, data []byte) {
	var evt hermes.ReportRequestEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.Warn("invalid report request event", "error", err)
		s.publishFailure(evt.RequestID, fmt.Errorf("decode request: %w", err))
		return
	}

	sel, err := ParseSelection(evt.Criteria)
	if err != nil {
		s.logger.Warn("rejected report request", "request_id", evt.RequestID, "error", err)
		s.publishFailure(evt.RequestID, err)
		return
	}
	req := Request{Selection: sel, Primary: toPoint(evt.Primary)}
	if evt.Comparison != nil {
		p := toPoint(*evt.Comparison)
		req.Comparison = &p
	}

	if _, err := s.Generate(ctx, s.builder.New(), req, evt.RequestID); err != nil {
		s.logger.Warn("rejected report request", "request_id", evt.RequestID, "error", err)
		s.publishFailure(evt.RequestID, err)
	}
}

func (s *Service) publish(reps *Reports, requestID string) {
	if s.hermes == nil {
		return
	}
	id := reps.ID.String()
	for _, o := range reps.Outcomes() {
		loc := fromPoint(o.Location)
		if o.Err != nil {
			s.send(hermes.SubjectReportFailed(id), hermes.ReportFailedEvent{
				ReportID:  id,
				RequestID: requestID,
				Role:      string(o.Role),
				Location:  &loc,
				Error:     o.Err.Error(),
				Timestamp: reps.GeneratedAt,
			})
			continue
		}
		criteria := make(map[string]hermes.CriterionScore, len(o.Report.PerCriterion))
		for c, r := range o.Report.PerCriterion {
			criteria[string(c)] = hermes.CriterionScore{Score: r.Score, Contributors: len(r.Amenities), HasData: r.HasData}
		}
		s.send(hermes.SubjectReportGenerated(id), hermes.ReportGeneratedEvent{
			ReportID:       id,
			RequestID:      requestID,
			Role:           string(o.Role),
			Location:       loc,
			CompositeScore: o.Report.CompositeScore,
			Criteria:       criteria,
			Timestamp:      reps.GeneratedAt,
		})
	}
}

func (s *Service) publishFailure(requestID string, err error) {
	if s.hermes == nil {
		return
	}
	key := requestID
	if key == "" {
		key = uuid.NewString()
	}
	s.send(hermes.SubjectReportFailed(key), hermes.ReportFailedEvent{
		RequestID: requestID,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	})
}

func (s *Service) send(subject string, evt any) {
	if err := s.hermes.Publish(subject, evt); err != nil {
		s.logger.Warn("failed to publish report event", "subject", subject, "error", err)
	}
}

func toPoint(l hermes.Location) geo.Point {
	return geo.Point{Lat: l.Lat, Lon: l.Lon, Label: l.Label}
}

func fromPoint(p geo.Point) hermes.Location {
	return hermes.Location{Lat: p.Lat, Lon: p.Lon, Label: p.Label}
}
