package timesheet

import "context"

type TimesheetRepository interface {
	// GetForDay returns the sheet of (userID, organizationID, workDate) or ErrTimesheetNotFound.
	GetForDay(ctx context.Context, userID, organizationID, workDate string) (DailyTimesheet, error)

	// Upsert inserts or replaces the sheet keyed by (user, organization, work date).
	Upsert(ctx context.Context, sheet DailyTimesheet) (DailyTimesheet, error)

	// ListByOrganization returns every sheet of the organization with fromDate <= work date <= toDate.
	ListByOrganization(ctx context.Context, organizationID, fromDate, toDate string) ([]DailyTimesheet, error)

	DeleteBefore(ctx context.Context, cutoffDate string) (int64, error)
}
