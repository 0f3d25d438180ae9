package report

import (
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/validator"
)

// ========================================
// DAILY REPORT
// ========================================

type DailyReportRequest struct {
	// Date is YYYY-MM-DD in the organization's timezone. Empty means today.
	Date string `json:"date"`
}

func (r *DailyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Date != "" {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

type EmployeeDay struct {
	UserID              string              `json:"userId"`
	Name                string              `json:"name"`
	Email               string              `json:"email"`
	DeviceRegistered    bool                `json:"deviceRegistered"`
	TotalWorkingMinutes int                 `json:"totalWorkingMinutes"`
	Status              timesheet.Status    `json:"status"`
	SessionCount        int                 `json:"sessionCount"`
	Sessions            []timesheet.Session `json:"sessions"`
}

type DailyReport struct {
	Date           string        `json:"date"`
	Timezone       string        `json:"timezone"`
	TotalEmployees int           `json:"totalEmployees"`
	Present        int           `json:"present"`
	Absent         int           `json:"absent"`
	FullDay        int           `json:"fullDay"`
	HalfDay        int           `json:"halfDay"`
	Employees      []EmployeeDay `json:"employees"`
}

// ========================================
// WEEKLY REPORT
// ========================================

type WeeklyReportRequest struct {
	// WeekStart is the first of seven days, YYYY-MM-DD. Empty means the Sunday of the current week.
	WeekStart string `json:"weekStart"`
}

func (r *WeeklyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.WeekStart != "" {
		if _, ok := validator.IsValidDate(r.WeekStart); !ok {
			errs.Add("weekStart", "weekStart must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

type DayCell struct {
	Status         timesheet.Status `json:"status"`
	WorkingMinutes int              `json:"workingMinutes"`
	Sessions       int              `json:"sessions"`
}

type EmployeeWeek struct {
	UserID       string             `json:"userId"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Days         map[string]DayCell `json:"days"`
	TotalMinutes int                `json:"totalMinutes"`
	PresentDays  int                `json:"presentDays"`
	AbsentDays   int                `json:"absentDays"`
	HalfDays     int                `json:"halfDays"`
	FullDays     int                `json:"fullDays"`
}

type WeeklyReport struct {
	WeekStart string         `json:"weekStart"`
	WeekEnd   string         `json:"weekEnd"`
	Timezone  string         `json:"timezone"`
	Dates     []string       `json:"dates"`
	Employees []EmployeeWeek `json:"employees"`
}
