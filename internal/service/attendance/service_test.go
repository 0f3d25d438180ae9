package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/qr-attendance-go/internal/repository/memory"
	deviceservice "github.com/cmlabs-hris/qr-attendance-go/internal/service/device"
	qrcodeservice "github.com/cmlabs-hris/qr-attendance-go/internal/service/qrcode"
	timesheetservice "github.com/cmlabs-hris/qr-attendance-go/internal/service/timesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	officeLat = 12.9716
	officeLon = 77.5946
	deviceID  = "device-1"
)

type scanFixture struct {
	svc      *AttendanceServiceImpl
	hub      *sse.Hub
	orgs     organization.OrganizationRepository
	users    user.UserRepository
	qrcodes  qrcode.QRCodeRepository
	events   attendance.AttendanceRepository
	org      organization.Organization
	member   user.User
	checkIn  qrcode.QRCode
	checkOut qrcode.QRCode
	now      time.Time
}

func newScanFixture(t *testing.T, settings organization.Settings) *scanFixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	tx := memory.NewTransactor(store)
	f := &scanFixture{
		hub:     sse.NewHub(16),
		orgs:    memory.NewOrganizationRepository(store),
		users:   memory.NewUserRepository(store),
		qrcodes: memory.NewQRCodeRepository(store),
		events:  memory.NewAttendanceRepository(store),
		now:     time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	org, err := f.orgs.Create(ctx, organization.Organization{
		Name:     "Acme",
		Location: organization.Location{Latitude: officeLat, Longitude: officeLon, Radius: 100},
		Settings: settings,
	})
	require.NoError(t, err)
	f.org = org

	f.member = f.createMember(t, "member@acme.test", org.ID, deviceID)
	f.checkIn = f.createQRCode(t, org.ID, qrcode.TypeCheckIn, "in-code", 1440)
	f.checkOut = f.createQRCode(t, org.ID, qrcode.TypeCheckOut, "out-code", 1440)

	f.svc = NewAttendanceService(
		tx,
		keylock.New(),
		f.events,
		f.orgs,
		f.users,
		qrcodeservice.NewQRCodeService(tx, f.qrcodes, f.orgs),
		deviceservice.NewDeviceService(tx, f.users, f.orgs),
		timesheetservice.NewTimesheetService(memory.NewTimesheetRepository(store)),
		f.hub,
	).(*AttendanceServiceImpl)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func utcSettings() organization.Settings {
	s := organization.DefaultSettings()
	s.Timezone = "UTC"
	return s
}

func (f *scanFixture) createMember(t *testing.T, email, orgID, boundDevice string) user.User {
	t.Helper()
	u := user.User{
		OrganizationID: &orgID,
		Email:          email,
		Name:           email,
		Role:           user.RoleUser,
	}
	if boundDevice != "" {
		registeredAt := f.now
		u.Device = user.Device{DeviceID: &boundDevice, IsRegistered: true, RegisteredAt: &registeredAt}
	}
	created, err := f.users.Create(context.Background(), u)
	require.NoError(t, err)
	return created
}

func (f *scanFixture) createQRCode(t *testing.T, orgID string, qrType qrcode.Type, code string, validity int) qrcode.QRCode {
	t.Helper()
	qr, err := f.qrcodes.Create(context.Background(), qrcode.QRCode{
		OrganizationID:  orgID,
		Type:            qrType,
		Code:            code,
		Latitude:        officeLat,
		Longitude:       officeLon,
		Radius:          100,
		IssuedAt:        f.now,
		ValidityMinutes: validity,
		Active:          true,
	})
	require.NoError(t, err)
	return qr
}

func (f *scanFixture) request(u user.User, qr qrcode.QRCode, lat, lon float64) attendance.ScanRequest {
	return attendance.ScanRequest{
		UserID:         u.ID,
		OrganizationID: *u.OrganizationID,
		UserAgent:      "Mozilla/5.0 (Linux; Android 14)",
		Code:           qr.Code,
		Type:           qr.Type,
		Location:       &attendance.ScanLocation{Latitude: &lat, Longitude: &lon},
		DeviceInfo:     attendance.ScanDeviceInfo{DeviceID: deviceID, Platform: "android"},
	}
}

func (f *scanFixture) scanAt(t *testing.T, at time.Time, qr qrcode.QRCode) (attendance.ScanResponse, error) {
	t.Helper()
	f.now = at
	return f.svc.Scan(context.Background(), f.request(f.member, qr, officeLat, officeLon))
}

func requireScanError(t *testing.T, err error, code attendance.Code) *attendance.ScanError {
	t.Helper()
	var scanErr *attendance.ScanError
	require.True(t, errors.As(err, &scanErr), "expected *ScanError, got %v", err)
	assert.Equal(t, code, scanErr.Code)
	return scanErr
}

func TestScan_CheckInAccepted(t *testing.T) {
	f := newScanFixture(t, utcSettings())
	events, cancel := f.hub.Subscribe(f.org.ID)
	defer cancel()

	resp, err := f.scanAt(t, f.now, f.checkIn)
	require.NoError(t, err)

	assert.True(t, resp.Accepted)
	assert.Equal(t, "Checked in successfully", resp.Message)
	assert.Equal(t, qrcode.TypeCheckIn, resp.Type)
	require.NotNil(t, resp.Verified)
	assert.True(t, *resp.Verified)
	require.NotNil(t, resp.DistanceMeters)
	assert.Equal(t, 0.0, *resp.DistanceMeters)
	require.NotNil(t, resp.DailySummary)
	assert.Equal(t, 1, resp.DailySummary.SessionCount)
	assert.Equal(t, timesheet.StatusAbsent, resp.DailySummary.Status)

	qr, err := f.qrcodes.GetActive(context.Background(), f.org.ID, qrcode.TypeCheckIn)
	require.NoError(t, err)
	assert.Equal(t, int64(1), qr.UsageCount)

	u, err := f.users.GetByID(context.Background(), f.member.ID)
	require.NoError(t, err)
	require.NotNil(t, u.Device.LastKnownLocation)
	assert.Equal(t, officeLat, u.Device.LastKnownLocation.Latitude)

	select {
	case ev := <-events:
		assert.Equal(t, EventAttendance, ev.Event)
		assert.Equal(t, f.org.ID, ev.Topic)
	default:
		t.Fatal("expected a live event after an accepted scan")
	}
}

func TestScan_AlreadyCheckedIn(t *testing.T) {
	f := newScanFixture(t, utcSettings())

	_, err := f.scanAt(t, f.now, f.checkIn)
	require.NoError(t, err)

	_, err = f.scanAt(t, f.now.Add(time.Minute), f.checkIn)
	scanErr := requireScanError(t, err, attendance.CodeAlreadyCheckedIn)
	assert.NotNil(t, scanErr.Details["last_check_in"])
}

func TestScan_CheckOutWithoutOpenSession(t *testing.T) {
	f := newScanFixture(t, utcSettings())

	_, err := f.scanAt(t, f.now, f.checkOut)
	requireScanError(t, err, attendance.CodeNoOpenSession)
}

func TestScan_OutOfRange(t *testing.T) {
	f := newScanFixture(t, utcSettings())

	_, err := f.svc.Scan(context.Background(), f.request(f.member, f.checkIn, officeLat+0.01, officeLon))
	scanErr := requireScanError(t, err, attendance.CodeOutOfRange)

	distance, ok := scanErr.Details["distance_meters"].(float64)
	require.True(t, ok)
	assert.Greater(t, distance, 1000.0)
	assert.Equal(t, 100.0, scanErr.Details["allowed_radius"])

	rejected := attendance.NewRejectedScanResponse(scanErr)
	assert.False(t, rejected.Accepted)
	require.NotNil(t, rejected.DistanceMeters)
	assert.Equal(t, distance, *rejected.DistanceMeters)

	_, total, err := f.events.ListByUser(context.Background(), f.member.ID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestScan_ExpiredToken(t *testing.T) {
	f := newScanFixture(t, utcSettings())
	short := f.createQRCode(t, f.org.ID, qrcode.TypeCheckIn, "short-code", 30)

	_, err := f.scanAt(t, f.now.Add(30*time.Minute), short)
	require.NoError(t, err, "a token is still valid at the end of its window")

	_, err = f.scanAt(t, f.now.Add(10*time.Minute), f.checkOut)
	require.NoError(t, err)

	_, err = f.scanAt(t, f.now.Add(time.Minute), short)
	requireScanError(t, err, attendance.CodeTokenExpired)
}

func TestScan_TokenLookupFailures(t *testing.T) {
	f := newScanFixture(t, utcSettings())

	unknown := f.checkIn
	unknown.Code = "no-such-code"
	_, err := f.scanAt(t, f.now, unknown)
	requireScanError(t, err, attendance.CodeTokenNotFound)

	other, err := f.orgs.Create(context.Background(), organization.Organization{
		Name:     "Other",
		Location: organization.Location{Latitude: officeLat, Longitude: officeLon, Radius: 100},
		Settings: utcSettings(),
	})
	require.NoError(t, err)
	foreign := f.createQRCode(t, other.ID, qrcode.TypeCheckIn, "foreign-code", 1440)

	_, err = f.scanAt(t, f.now, foreign)
	requireScanError(t, err, attendance.CodeTokenForeignOrg)
}

func TestScan_TypeFallsBackToToken(t *testing.T) {
	f := newScanFixture(t, utcSettings())

	req := f.request(f.member, f.checkIn, officeLat, officeLon)
	req.Type = "bogus"
	resp, err := f.svc.Scan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, qrcode.TypeCheckIn, resp.Type)
}

func TestScan_DeviceBinding(t *testing.T) {
	f := newScanFixture(t, utcSettings())

	req := f.request(f.member, f.checkIn, officeLat, officeLon)
	req.DeviceInfo.DeviceID = "someone-elses-phone"
	_, err := f.svc.Scan(context.Background(), req)
	requireScanError(t, err, attendance.CodeDeviceMismatch)

	unbound := f.createMember(t, "unbound@acme.test", f.org.ID, "")
	_, err = f.svc.Scan(context.Background(), f.request(unbound, f.checkIn, officeLat, officeLon))
	requireScanError(t, err, attendance.CodeDeviceNotRegistered)
}

func TestScan_Spoofing(t *testing.T) {
	t.Run("strict rejects", func(t *testing.T) {
		f := newScanFixture(t, utcSettings())

		req := f.request(f.member, f.checkIn, officeLat, officeLon)
		req.DeviceInfo.DeveloperSettingsEnabled = true
		_, err := f.svc.Scan(context.Background(), req)
		scanErr := requireScanError(t, err, attendance.CodeSpoofingSuspected)
		assert.Contains(t, scanErr.Details["reasons"], "Developer options enabled")
	})

	t.Run("lenient records unverified", func(t *testing.T) {
		settings := utcSettings()
		settings.StrictLocationVerification = false
		f := newScanFixture(t, settings)

		req := f.request(f.member, f.checkIn, officeLat, officeLon)
		req.UserAgent = "FakeGPS/2.0"
		resp, err := f.svc.Scan(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, resp.Accepted)
		require.NotNil(t, resp.Verified)
		assert.False(t, *resp.Verified)

		events, _, err := f.events.ListByUser(context.Background(), f.member.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.True(t, events[0].Verification.SpoofingSuspected)
		assert.Equal(t, []string{"Mock location app detected"}, events[0].Verification.SpoofingReasons)
	})
}

func TestScan_InvalidRequest(t *testing.T) {
	f := newScanFixture(t, utcSettings())

	req := f.request(f.member, f.checkIn, officeLat, officeLon)
	req.Location = nil
	_, err := f.svc.Scan(context.Background(), req)
	scanErr := requireScanError(t, err, attendance.CodeBadRequest)

	fields, ok := scanErr.Details["fields"].(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "location")
}

func TestScan_SessionsAggregateIntoTimesheet(t *testing.T) {
	f := newScanFixture(t, utcSettings())
	day := f.now

	_, err := f.scanAt(t, day, f.checkIn)
	require.NoError(t, err)
	resp, err := f.scanAt(t, day.Add(3*time.Hour), f.checkOut)
	require.NoError(t, err)
	assert.Equal(t, "Checked out successfully", resp.Message)
	assert.Equal(t, 180, resp.DailySummary.TotalMinutes)
	assert.Equal(t, timesheet.StatusHalfDay, resp.DailySummary.Status)

	_, err = f.scanAt(t, day.Add(4*time.Hour), f.checkIn)
	require.NoError(t, err)
	resp, err = f.scanAt(t, day.Add(9*time.Hour+30*time.Second), f.checkOut)
	require.NoError(t, err)
	assert.Equal(t, 480, resp.DailySummary.TotalMinutes)
	assert.Equal(t, 2, resp.DailySummary.SessionCount)
	assert.Equal(t, timesheet.StatusFullDay, resp.DailySummary.Status)
}

func TestScan_NewDayStartsClosed(t *testing.T) {
	settings := utcSettings()
	settings.Timezone = "Asia/Kolkata"
	f := newScanFixture(t, settings)

	// 23:00 IST on March 10
	late := time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)
	_, err := f.scanAt(t, late, f.checkIn)
	require.NoError(t, err)

	// 00:30 IST on March 11: yesterday's open session does not carry over
	_, err = f.scanAt(t, late.Add(90*time.Minute), f.checkOut)
	requireScanError(t, err, attendance.CodeNoOpenSession)

	_, err = f.scanAt(t, late.Add(90*time.Minute), f.checkIn)
	require.NoError(t, err)
}

func TestScan_ConcurrentDuplicateTaps(t *testing.T) {
	f := newScanFixture(t, utcSettings())
	const taps = 10

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < taps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Scan(context.Background(), f.request(f.member, f.checkIn, officeLat, officeLon))
			mu.Lock()
			defer mu.Unlock()
			var scanErr *attendance.ScanError
			switch {
			case err == nil:
				accepted++
			case errors.As(err, &scanErr) && scanErr.Code == attendance.CodeAlreadyCheckedIn:
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, taps-1, rejected)

	_, total, err := f.events.ListByUser(context.Background(), f.member.ID, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestHistory(t *testing.T) {
	f := newScanFixture(t, utcSettings())

	_, err := f.scanAt(t, f.now, f.checkIn)
	require.NoError(t, err)
	_, err = f.scanAt(t, f.now.Add(time.Hour), f.checkOut)
	require.NoError(t, err)

	page, err := f.svc.History(context.Background(), f.member.ID, attendance.HistoryFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext)
	require.Len(t, page.Events, 1)
	assert.Equal(t, qrcode.TypeCheckOut, page.Events[0].Type)

	page, err = f.svc.History(context.Background(), f.member.ID, attendance.HistoryFilter{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.False(t, page.HasNext)
	require.Len(t, page.Events, 1)
	assert.Equal(t, qrcode.TypeCheckIn, page.Events[0].Type)

	_, err = f.svc.History(context.Background(), "0199a1b2-c3d4-7e5f-8a9b-999999999999", attendance.HistoryFilter{})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	orphanOrg := "0199a1b2-c3d4-7e5f-8a9b-888888888888"
	orphan, err := f.users.Create(context.Background(), user.User{OrganizationID: &orphanOrg, Email: "orphan@acme.test", Name: "orphan", Role: user.RoleUser})
	require.NoError(t, err)
	_, err = f.svc.History(context.Background(), orphan.ID, attendance.HistoryFilter{})
	assert.ErrorIs(t, err, organization.ErrOrganizationNotFound)
}

func TestStatus(t *testing.T) {
	f := newScanFixture(t, utcSettings())
	f.now = time.Now()
	f.checkIn = f.createQRCode(t, f.org.ID, qrcode.TypeCheckIn, "fresh-in", 30)

	status, err := f.svc.Status(context.Background(), f.member.ID, f.org.ID)
	require.NoError(t, err)
	assert.True(t, status.CanCheckIn)
	assert.False(t, status.CanCheckOut)
	assert.Equal(t, "UTC", status.Timezone)

	_, err = f.svc.Scan(context.Background(), f.request(f.member, f.checkIn, officeLat, officeLon))
	require.NoError(t, err)

	status, err = f.svc.Status(context.Background(), f.member.ID, f.org.ID)
	require.NoError(t, err)
	assert.False(t, status.CanCheckIn)
	assert.True(t, status.CanCheckOut)
	assert.Equal(t, 1, status.DailySummary.SessionCount)
}

// failingTimesheetService fails the last write of an accepted scan.
type failingTimesheetService struct {
	timesheet.TimesheetService
}

var errTimesheetUnavailable = errors.New("timesheet store unavailable")

func (failingTimesheetService) Apply(ctx context.Context, userID, organizationID string, loc *time.Location, requiredMinutes int, m timesheet.Mark) (timesheet.DailyTimesheet, error) {
	return timesheet.DailyTimesheet{}, errTimesheetUnavailable
}

func TestScan_FailureLeavesNoPartialWrites(t *testing.T) {
	f := newScanFixture(t, utcSettings())
	f.svc.timesheetService = failingTimesheetService{TimesheetService: f.svc.timesheetService}
	events, cancel := f.hub.Subscribe(f.org.ID)
	defer cancel()

	_, err := f.scanAt(t, f.now, f.checkIn)
	require.ErrorIs(t, err, errTimesheetUnavailable)

	ctx := context.Background()
	_, total, err := f.events.ListByUser(ctx, f.member.ID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	qr, err := f.qrcodes.GetActive(ctx, f.org.ID, qrcode.TypeCheckIn)
	require.NoError(t, err)
	assert.Zero(t, qr.UsageCount)

	u, err := f.users.GetByID(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Nil(t, u.Device.LastKnownLocation)

	select {
	case ev := <-events:
		t.Fatalf("failed scan must not be published, got %v", ev.Event)
	default:
	}
}

func TestScan_DeviceRegistrationOptional(t *testing.T) {
	settings := utcSettings()
	settings.RequireDeviceRegistration = false
	f := newScanFixture(t, settings)
	unbound := f.createMember(t, "unbound@acme.test", f.org.ID, "")

	resp, err := f.svc.Scan(context.Background(), f.request(unbound, f.checkIn, officeLat, officeLon))
	require.NoError(t, err)
	assert.True(t, resp.Accepted)

	events, _, err := f.events.ListByUser(context.Background(), unbound.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Verification.DeviceTrusted)

	_, err = f.scanAt(t, f.now, f.checkIn)
	require.NoError(t, err)
	bound, _, err := f.events.ListByUser(context.Background(), f.member.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, bound, 1)
	assert.True(t, bound[0].Verification.DeviceTrusted)
}

func TestScan_RejectionsCarryDailySummary(t *testing.T) {
	f := newScanFixture(t, utcSettings())

	_, err := f.scanAt(t, f.now, f.checkIn)
	require.NoError(t, err)

	_, err = f.scanAt(t, f.now.Add(time.Minute), f.checkIn)
	scanErr := requireScanError(t, err, attendance.CodeAlreadyCheckedIn)
	require.NotNil(t, scanErr.DailySummary)
	assert.Equal(t, 1, scanErr.DailySummary.SessionCount)

	rejected := attendance.NewRejectedScanResponse(scanErr)
	require.NotNil(t, rejected.DailySummary)
	assert.Equal(t, 1, rejected.DailySummary.SessionCount)

	req := f.request(f.member, f.checkOut, officeLat, officeLon)
	req.DeviceInfo.DeviceID = "someone-elses-phone"
	_, err = f.svc.Scan(context.Background(), req)
	scanErr = requireScanError(t, err, attendance.CodeDeviceMismatch)
	require.NotNil(t, scanErr.DailySummary)

	req = f.request(f.member, f.checkIn, officeLat, officeLon)
	req.Location = nil
	_, err = f.svc.Scan(context.Background(), req)
	scanErr = requireScanError(t, err, attendance.CodeBadRequest)
	assert.Nil(t, scanErr.DailySummary)
}
