package timesheet

import "github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"

// Apply folds one event into the sheet and recomputes the derived fields.
// A check-in appends a session. A check-out closes the last open session; with
// no open session it leaves the sessions untouched.
func Apply(sheet DailyTimesheet, m Mark) DailyTimesheet {
	sessions := make([]Session, len(sheet.Sessions), len(sheet.Sessions)+1)
	copy(sessions, sheet.Sessions)

	switch m.Type {
	case qrcode.TypeCheckIn:
		sessions = append(sessions, Session{
			CheckIn: Stamp{Time: m.Time, EventID: m.EventID},
		})
	case qrcode.TypeCheckOut:
		for i := len(sessions) - 1; i >= 0; i-- {
			if !sessions[i].IsOpen() {
				continue
			}
			sessions[i].CheckOut = &Stamp{Time: m.Time, EventID: m.EventID}
			sessions[i].Duration = durationMinutes(sessions[i].CheckIn, *sessions[i].CheckOut)
			break
		}
	}

	sheet.Sessions = sessions
	sheet.TotalWorkingMinutes = TotalMinutes(sessions)
	sheet.Status = Classify(sheet.TotalWorkingMinutes, sheet.RequiredWorkingMinutes)
	return sheet
}

// TotalMinutes sums closed sessions. Open sessions count as zero.
func TotalMinutes(sessions []Session) int {
	total := 0
	for _, s := range sessions {
		if !s.IsOpen() {
			total += s.Duration
		}
	}
	return total
}

// Classify maps worked minutes to a day status against the required minutes.
func Classify(totalMinutes, requiredMinutes int) Status {
	switch {
	case totalMinutes <= 0:
		return StatusAbsent
	case totalMinutes*2 < requiredMinutes:
		return StatusHalfDay
	default:
		return StatusFullDay
	}
}

func durationMinutes(in, out Stamp) int {
	d := out.Time.Sub(in.Time)
	if d < 0 {
		return 0
	}
	return int(d.Minutes())
}
