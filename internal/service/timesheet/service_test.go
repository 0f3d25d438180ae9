package timesheet

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/qr-attendance-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserID = "0199a1b2-c3d4-7e5f-8a9b-000000000001"
	testOrgID  = "0199a1b2-c3d4-7e5f-8a9b-000000000002"
)

func newTimesheetTestService() *TimesheetServiceImpl {
	return NewTimesheetService(memory.NewTimesheetRepository(memory.NewStore())).(*TimesheetServiceImpl)
}

func TestApply_PersistsPerOrganizationDay(t *testing.T) {
	ctx := context.Background()
	svc := newTimesheetTestService()
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 03:30 UTC is 09:00 in Kolkata
	in := time.Date(2026, 3, 10, 3, 30, 0, 0, time.UTC)
	sheet, err := svc.Apply(ctx, testUserID, testOrgID, kolkata, 480, timesheet.Mark{EventID: "e1", Type: qrcode.TypeCheckIn, Time: in})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", sheet.WorkDate)
	assert.NotEmpty(t, sheet.ID)

	sheet2, err := svc.Apply(ctx, testUserID, testOrgID, kolkata, 480, timesheet.Mark{EventID: "e2", Type: qrcode.TypeCheckOut, Time: in.Add(8*time.Hour + 30*time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, sheet.ID, sheet2.ID)
	assert.Equal(t, 510, sheet2.TotalWorkingMinutes)
	assert.Equal(t, timesheet.StatusFullDay, sheet2.Status)
	assert.Equal(t, 480, sheet2.RequiredWorkingMinutes)

	// 19:00 UTC is already March 11 in Kolkata
	late, err := svc.Apply(ctx, testUserID, testOrgID, kolkata, 480, timesheet.Mark{EventID: "e3", Type: qrcode.TypeCheckIn, Time: time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", late.WorkDate)
	assert.NotEqual(t, sheet.ID, late.ID)
	assert.Len(t, late.Sessions, 1)
}

func TestToday(t *testing.T) {
	ctx := context.Background()
	svc := newTimesheetTestService()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	empty, err := svc.Today(ctx, testUserID, testOrgID, time.UTC, 420)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", empty.WorkDate)
	assert.Equal(t, timesheet.StatusAbsent, empty.Status)
	assert.Equal(t, 420, empty.RequiredWorkingMinutes)
	assert.Empty(t, empty.Sessions)

	_, err = svc.Apply(ctx, testUserID, testOrgID, time.UTC, 420, timesheet.Mark{EventID: "e1", Type: qrcode.TypeCheckIn, Time: now.Add(-time.Hour)})
	require.NoError(t, err)

	today, err := svc.Today(ctx, testUserID, testOrgID, time.UTC, 420)
	require.NoError(t, err)
	assert.Len(t, today.Sessions, 1)
}

func TestForDay(t *testing.T) {
	ctx := context.Background()
	svc := newTimesheetTestService()

	_, err := svc.Apply(ctx, testUserID, testOrgID, time.UTC, 480, timesheet.Mark{
		EventID: "e1", Type: qrcode.TypeCheckIn, Time: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	sheet, err := svc.ForDay(ctx, testUserID, testOrgID, "2026-03-09", 480)
	require.NoError(t, err)
	assert.Len(t, sheet.Sessions, 1)

	other, err := svc.ForDay(ctx, testUserID, testOrgID, "2026-03-10", 480)
	require.NoError(t, err)
	assert.Empty(t, other.Sessions)
	assert.Empty(t, other.ID, "a missing day is not persisted")
}
