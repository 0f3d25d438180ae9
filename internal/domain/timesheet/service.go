package timesheet

import (
	"context"
	"time"
)

type TimesheetService interface {
	// Apply loads or creates the sheet for the mark's organization-local day, folds the mark
	// in and persists it.
	Apply(ctx context.Context, userID, organizationID string, loc *time.Location, requiredMinutes int, m Mark) (DailyTimesheet, error)

	// Today returns the current sheet, or an empty absent sheet when none exists yet.
	Today(ctx context.Context, userID, organizationID string, loc *time.Location, requiredMinutes int) (DailyTimesheet, error)

	// ForDay is Today for an explicit YYYY-MM-DD work date. Nothing is persisted.
	ForDay(ctx context.Context, userID, organizationID, workDate string, requiredMinutes int) (DailyTimesheet, error)
}
