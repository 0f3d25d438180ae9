package report

import "context"

// ReportService is the read side consumed by reporting and export features.
type ReportService interface {
	Daily(ctx context.Context, organizationID string, req DailyReportRequest) (DailyReport, error)
	Weekly(ctx context.Context, organizationID string, req WeeklyReportRequest) (WeeklyReport, error)
}
