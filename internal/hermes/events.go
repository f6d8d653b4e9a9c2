package hermes

import "time"

// Location is the wire form of a coordinate.
type Location struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label,omitempty"`
}

// ReportRequestEvent asks the service to score one or two locations.
type ReportRequestEvent struct {
	RequestID  string         `json:"request_id,omitempty"`
	Criteria   map[string]int `json:"criteria"`
	Primary    Location       `json:"primary"`
	Comparison *Location      `json:"comparison,omitempty"`
}

// CriterionScore summarises one criterion of a generated report.
type CriterionScore struct {
	Score        float64 `json:"score"`
	Contributors int     `json:"contributors"`
	HasData      bool    `json:"has_data"`
}

type ReportGeneratedEvent struct {
	ReportID       string                    `json:"report_id"`
	RequestID      string                    `json:"request_id,omitempty"`
	Role           string                    `json:"role"`
	Location       Location                  `json:"location"`
	CompositeScore int                       `json:"composite_score"`
	Criteria       map[string]CriterionScore `json:"criteria"`
	Timestamp      time.Time                 `json:"timestamp"`
}

type ReportFailedEvent struct {
	ReportID  string    `json:"report_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
