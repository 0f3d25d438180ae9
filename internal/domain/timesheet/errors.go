package timesheet

import "errors"

var (
	ErrTimesheetNotFound = errors.New("timesheet not found")
	ErrInvalidWorkDate   = errors.New("date must be in YYYY-MM-DD format")
)
