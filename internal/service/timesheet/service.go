package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
)

type TimesheetServiceImpl struct {
	timesheet.TimesheetRepository
	now func() time.Time
}

func NewTimesheetService(timesheetRepository timesheet.TimesheetRepository) timesheet.TimesheetService {
	return &TimesheetServiceImpl{
		TimesheetRepository: timesheetRepository,
		now:                 time.Now,
	}
}

func (s *TimesheetServiceImpl) load(ctx context.Context, userID, organizationID, workDate string, requiredMinutes int) (timesheet.DailyTimesheet, error) {
	sheet, err := s.TimesheetRepository.GetForDay(ctx, userID, organizationID, workDate)
	if err != nil {
		if !errors.Is(err, timesheet.ErrTimesheetNotFound) {
			return timesheet.DailyTimesheet{}, fmt.Errorf("failed to get timesheet: %w", err)
		}
		sheet = timesheet.DailyTimesheet{
			UserID:                 userID,
			OrganizationID:         organizationID,
			WorkDate:               workDate,
			Sessions:               []timesheet.Session{},
			Status:                 timesheet.StatusAbsent,
			RequiredWorkingMinutes: requiredMinutes,
		}
	}
	if sheet.RequiredWorkingMinutes <= 0 {
		sheet.RequiredWorkingMinutes = requiredMinutes
	}
	return sheet, nil
}

// Apply implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) Apply(ctx context.Context, userID, organizationID string, loc *time.Location, requiredMinutes int, m timesheet.Mark) (timesheet.DailyTimesheet, error) {
	workDate := m.Time.In(loc).Format(timesheet.WorkDateLayout)

	sheet, err := s.load(ctx, userID, organizationID, workDate, requiredMinutes)
	if err != nil {
		return timesheet.DailyTimesheet{}, err
	}

	sheet = timesheet.Apply(sheet, m)

	saved, err := s.TimesheetRepository.Upsert(ctx, sheet)
	if err != nil {
		return timesheet.DailyTimesheet{}, fmt.Errorf("failed to save timesheet: %w", err)
	}
	return saved, nil
}

// Today implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) Today(ctx context.Context, userID, organizationID string, loc *time.Location, requiredMinutes int) (timesheet.DailyTimesheet, error) {
	return s.ForDay(ctx, userID, organizationID, s.now().In(loc).Format(timesheet.WorkDateLayout), requiredMinutes)
}

// ForDay implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) ForDay(ctx context.Context, userID, organizationID, workDate string, requiredMinutes int) (timesheet.DailyTimesheet, error) {
	return s.load(ctx, userID, organizationID, workDate, requiredMinutes)
}
