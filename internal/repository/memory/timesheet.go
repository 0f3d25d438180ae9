package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
)

type timesheetRepositoryImpl struct {
	store *Store
}

func NewTimesheetRepository(store *Store) timesheet.TimesheetRepository {
	return &timesheetRepositoryImpl{store: store}
}

func (r *timesheetRepositoryImpl) GetForDay(ctx context.Context, userID, organizationID, workDate string) (timesheet.DailyTimesheet, error) {
	var (
		sheet timesheet.DailyTimesheet
		ok    bool
	)
	r.store.read(func(t *tables) {
		sheet, ok = t.timesheets[timesheetKey(userID, organizationID, workDate)]
	})
	if !ok {
		return timesheet.DailyTimesheet{}, timesheet.ErrTimesheetNotFound
	}
	return sheet, nil
}

func (r *timesheetRepositoryImpl) Upsert(ctx context.Context, sheet timesheet.DailyTimesheet) (timesheet.DailyTimesheet, error) {
	key := timesheetKey(sheet.UserID, sheet.OrganizationID, sheet.WorkDate)
	sheet.Sessions = append([]timesheet.Session(nil), sheet.Sessions...)

	err := r.store.write(ctx, func(t *tables) error {
		now := r.store.now()
		if existing, ok := t.timesheets[key]; ok {
			sheet.ID = existing.ID
			sheet.CreatedAt = existing.CreatedAt
		} else {
			if sheet.ID == "" {
				id, err := newID()
				if err != nil {
					return err
				}
				sheet.ID = id
			}
			sheet.CreatedAt = now
		}
		sheet.UpdatedAt = now
		t.timesheets[key] = sheet
		return nil
	})
	return sheet, err
}

func (r *timesheetRepositoryImpl) ListByOrganization(ctx context.Context, organizationID, fromDate, toDate string) ([]timesheet.DailyTimesheet, error) {
	var sheets []timesheet.DailyTimesheet
	r.store.read(func(t *tables) {
		for _, s := range t.timesheets {
			// YYYY-MM-DD compares lexically in date order
			if s.OrganizationID == organizationID && s.WorkDate >= fromDate && s.WorkDate <= toDate {
				sheets = append(sheets, s)
			}
		}
	})
	sort.Slice(sheets, func(i, j int) bool {
		if sheets[i].WorkDate != sheets[j].WorkDate {
			return sheets[i].WorkDate < sheets[j].WorkDate
		}
		return sheets[i].UserID < sheets[j].UserID
	})
	return sheets, nil
}

func (r *timesheetRepositoryImpl) DeleteBefore(ctx context.Context, cutoffDate string) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(t *tables) error {
		for key, s := range t.timesheets {
			if s.WorkDate < cutoffDate {
				delete(t.timesheets, key)
				n++
			}
		}
		return nil
	})
	return n, err
}
