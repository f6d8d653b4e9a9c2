package hermes

import "time"

const (
	SubjectReportRequest = "vicinity.request.report"
	QueueReportWorkers   = "vicinity-report-workers"

	StreamName     = "VICINITY_EVENTS"
	StreamSubjects = "vicinity.report.>"
	StreamMaxAge   = 7 * 24 * time.Hour
)

func SubjectReportGenerated(reportID string) string { return "vicinity.report." + reportID + ".generated" }
func SubjectReportFailed(reportID string) string    { return "vicinity.report." + reportID + ".failed" }
