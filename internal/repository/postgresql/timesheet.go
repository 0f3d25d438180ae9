package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// work_date is rendered as text so it round-trips as YYYY-MM-DD without a timezone shift.
const timesheetColumns = `
	id, user_id, organization_id, to_char(work_date, 'YYYY-MM-DD'), sessions,
	total_working_minutes, status, required_working_minutes, created_at, updated_at`

type timesheetRepositoryImpl struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepositoryImpl{db: db}
}

func scanTimesheet(row pgx.Row) (timesheet.DailyTimesheet, error) {
	var s timesheet.DailyTimesheet
	err := row.Scan(
		&s.ID, &s.UserID, &s.OrganizationID, &s.WorkDate, &s.Sessions,
		&s.TotalWorkingMinutes, &s.Status, &s.RequiredWorkingMinutes, &s.CreatedAt, &s.UpdatedAt,
	)
	if s.Sessions == nil {
		s.Sessions = []timesheet.Session{}
	}
	return s, err
}

// GetForDay implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) GetForDay(ctx context.Context, userID, organizationID, workDate string) (timesheet.DailyTimesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timesheetColumns + `
		FROM daily_timesheets
		WHERE user_id = $1 AND organization_id = $2 AND work_date = $3::date
	`
	sheet, err := scanTimesheet(q.QueryRow(ctx, query, userID, organizationID, workDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.DailyTimesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.DailyTimesheet{}, err
	}
	return sheet, nil
}

// Upsert implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) Upsert(ctx context.Context, sheet timesheet.DailyTimesheet) (timesheet.DailyTimesheet, error) {
	q := GetQuerier(ctx, r.db)

	if sheet.ID == "" {
		id, err := newID()
		if err != nil {
			return timesheet.DailyTimesheet{}, err
		}
		sheet.ID = id
	}
	sessions := sheet.Sessions
	if sessions == nil {
		sessions = []timesheet.Session{}
	}

	query := `
		INSERT INTO daily_timesheets (
			id, user_id, organization_id, work_date, sessions,
			total_working_minutes, status, required_working_minutes
		) VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8)
		ON CONFLICT (user_id, organization_id, work_date) DO UPDATE
		SET sessions = EXCLUDED.sessions,
		    total_working_minutes = EXCLUDED.total_working_minutes,
		    status = EXCLUDED.status,
		    required_working_minutes = EXCLUDED.required_working_minutes,
		    updated_at = NOW()
		RETURNING ` + timesheetColumns

	saved, err := scanTimesheet(q.QueryRow(ctx, query,
		sheet.ID, sheet.UserID, sheet.OrganizationID, sheet.WorkDate, sessions,
		sheet.TotalWorkingMinutes, sheet.Status, sheet.RequiredWorkingMinutes,
	))
	if err != nil {
		return timesheet.DailyTimesheet{}, fmt.Errorf("failed to upsert timesheet: %w", err)
	}
	return saved, nil
}

// ListByOrganization implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) ListByOrganization(ctx context.Context, organizationID, fromDate, toDate string) ([]timesheet.DailyTimesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timesheetColumns + `
		FROM daily_timesheets
		WHERE organization_id = $1 AND work_date BETWEEN $2::date AND $3::date
		ORDER BY work_date, user_id
	`
	rows, err := q.Query(ctx, query, organizationID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheets := make([]timesheet.DailyTimesheet, 0)
	for rows.Next() {
		s, err := scanTimesheet(rows)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, s)
	}
	return sheets, rows.Err()
}

// DeleteBefore implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) DeleteBefore(ctx context.Context, cutoffDate string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM daily_timesheets WHERE work_date < $1::date`, cutoffDate)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
