package timesheet

import (
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
)

type Status string

const (
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
	StatusFullDay Status = "full-day"
)

const WorkDateLayout = "2006-01-02"

type Stamp struct {
	Time    time.Time `json:"time"`
	EventID string    `json:"eventId"`
}

// Session is one check-in, optionally closed by a check-out. Duration is whole minutes.
type Session struct {
	CheckIn  Stamp  `json:"checkIn"`
	CheckOut *Stamp `json:"checkOut"`
	Duration int    `json:"duration"`
}

func (s Session) IsOpen() bool {
	return s.CheckOut == nil
}

// DailyTimesheet aggregates one user's sessions for one organization-local calendar day.
type DailyTimesheet struct {
	ID                     string
	UserID                 string
	OrganizationID         string
	WorkDate               string // YYYY-MM-DD in the organization's timezone
	Sessions               []Session
	TotalWorkingMinutes    int
	Status                 Status
	RequiredWorkingMinutes int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Mark is the part of an attendance event the aggregator needs.
type Mark struct {
	EventID string
	Type    qrcode.Type
	Time    time.Time
}
