package attendance

import (
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
)

// SessionState is derived from a user's events for one organization-local day.
type SessionState struct {
	HasOpenSession bool       `json:"hasOpenSession"`
	LastCheckIn    *time.Time `json:"lastCheckIn"`
	LastCheckOut   *time.Time `json:"lastCheckOut"`
}

// ResolveSession folds the day's events into the current session state. Events may be in
// any order. A session is open when the latest check-in is strictly after the latest check-out.
func ResolveSession(events []Event) SessionState {
	var state SessionState
	for i := range events {
		ts := events[i].Timestamp
		switch events[i].Type {
		case qrcode.TypeCheckIn:
			if state.LastCheckIn == nil || ts.After(*state.LastCheckIn) {
				state.LastCheckIn = &ts
			}
		case qrcode.TypeCheckOut:
			if state.LastCheckOut == nil || ts.After(*state.LastCheckOut) {
				state.LastCheckOut = &ts
			}
		}
	}

	state.HasOpenSession = state.LastCheckIn != nil &&
		(state.LastCheckOut == nil || state.LastCheckIn.After(*state.LastCheckOut))
	return state
}

// DayBounds returns [start, end) of the calendar day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// WorkDate formats the organization-local calendar day of t as YYYY-MM-DD.
func WorkDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(timesheet.WorkDateLayout)
}
