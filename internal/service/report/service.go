package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
)

type ReportServiceImpl struct {
	organization.OrganizationRepository
	user.UserRepository
	timesheet.TimesheetRepository
	now func() time.Time
}

func NewReportService(organizationRepository organization.OrganizationRepository, userRepository user.UserRepository, timesheetRepository timesheet.TimesheetRepository) report.ReportService {
	return &ReportServiceImpl{
		OrganizationRepository: organizationRepository,
		UserRepository:         userRepository,
		TimesheetRepository:    timesheetRepository,
		now:                    time.Now,
	}
}

// loadRoster returns the organization's timezone and its members. Admins do not record attendance.
func (s *ReportServiceImpl) loadRoster(ctx context.Context, organizationID string) (*time.Location, []user.User, error) {
	org, err := s.OrganizationRepository.GetByID(ctx, organizationID)
	if err != nil {
		return nil, nil, err
	}
	loc, err := org.TimeLocation()
	if err != nil {
		return nil, nil, err
	}
	members, err := s.UserRepository.ListByOrganization(ctx, organizationID, user.RoleUser)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list members: %w", err)
	}
	return loc, members, nil
}

func sheetKey(userID, workDate string) string {
	return userID + "|" + workDate
}

func indexSheets(sheets []timesheet.DailyTimesheet) map[string]timesheet.DailyTimesheet {
	index := make(map[string]timesheet.DailyTimesheet, len(sheets))
	for _, sheet := range sheets {
		index[sheetKey(sheet.UserID, sheet.WorkDate)] = sheet
	}
	return index
}

// Daily implements report.ReportService. Members without a timesheet are reported absent.
func (s *ReportServiceImpl) Daily(ctx context.Context, organizationID string, req report.DailyReportRequest) (report.DailyReport, error) {
	if err := req.Validate(); err != nil {
		return report.DailyReport{}, err
	}

	loc, members, err := s.loadRoster(ctx, organizationID)
	if err != nil {
		return report.DailyReport{}, err
	}

	date := req.Date
	if date == "" {
		date = s.now().In(loc).Format(timesheet.WorkDateLayout)
	}

	sheets, err := s.TimesheetRepository.ListByOrganization(ctx, organizationID, date, date)
	if err != nil {
		return report.DailyReport{}, fmt.Errorf("failed to list timesheets: %w", err)
	}
	index := indexSheets(sheets)

	result := report.DailyReport{
		Date:           date,
		Timezone:       loc.String(),
		TotalEmployees: len(members),
		Employees:      make([]report.EmployeeDay, 0, len(members)),
	}
	for _, m := range members {
		day := report.EmployeeDay{
			UserID:           m.ID,
			Name:             m.Name,
			Email:            m.Email,
			DeviceRegistered: m.Device.IsRegistered,
			Status:           timesheet.StatusAbsent,
			Sessions:         []timesheet.Session{},
		}
		if sheet, ok := index[sheetKey(m.ID, date)]; ok {
			day.TotalWorkingMinutes = sheet.TotalWorkingMinutes
			day.Status = sheet.Status
			day.SessionCount = len(sheet.Sessions)
			day.Sessions = sheet.Sessions
		}

		switch day.Status {
		case timesheet.StatusFullDay:
			result.Present++
			result.FullDay++
		case timesheet.StatusHalfDay:
			result.Present++
			result.HalfDay++
		default:
			result.Absent++
		}
		result.Employees = append(result.Employees, day)
	}

	return result, nil
}

// weekStartOf returns the Sunday on or before t in loc.
func weekStartOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// Weekly implements report.ReportService.
func (s *ReportServiceImpl) Weekly(ctx context.Context, organizationID string, req report.WeeklyReportRequest) (report.WeeklyReport, error) {
	if err := req.Validate(); err != nil {
		return report.WeeklyReport{}, err
	}

	loc, members, err := s.loadRoster(ctx, organizationID)
	if err != nil {
		return report.WeeklyReport{}, err
	}

	var start time.Time
	if req.WeekStart == "" {
		start = weekStartOf(s.now(), loc)
	} else {
		start, err = time.ParseInLocation(timesheet.WorkDateLayout, req.WeekStart, loc)
		if err != nil {
			return report.WeeklyReport{}, timesheet.ErrInvalidWorkDate
		}
	}

	dates := make([]string, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i).Format(timesheet.WorkDateLayout)
	}

	sheets, err := s.TimesheetRepository.ListByOrganization(ctx, organizationID, dates[0], dates[6])
	if err != nil {
		return report.WeeklyReport{}, fmt.Errorf("failed to list timesheets: %w", err)
	}
	index := indexSheets(sheets)

	result := report.WeeklyReport{
		WeekStart: dates[0],
		WeekEnd:   dates[6],
		Timezone:  loc.String(),
		Dates:     dates,
		Employees: make([]report.EmployeeWeek, 0, len(members)),
	}
	for _, m := range members {
		week := report.EmployeeWeek{
			UserID: m.ID,
			Name:   m.Name,
			Email:  m.Email,
			Days:   make(map[string]report.DayCell, len(dates)),
		}
		for _, date := range dates {
			cell := report.DayCell{Status: timesheet.StatusAbsent}
			if sheet, ok := index[sheetKey(m.ID, date)]; ok {
				cell = report.DayCell{
					Status:         sheet.Status,
					WorkingMinutes: sheet.TotalWorkingMinutes,
					Sessions:       len(sheet.Sessions),
				}
			}
			week.Days[date] = cell
			week.TotalMinutes += cell.WorkingMinutes

			switch cell.Status {
			case timesheet.StatusFullDay:
				week.PresentDays++
				week.FullDays++
			case timesheet.StatusHalfDay:
				week.PresentDays++
				week.HalfDays++
			default:
				week.AbsentDays++
			}
		}
		result.Employees = append(result.Employees, week)
	}

	return result, nil
}
