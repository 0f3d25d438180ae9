package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/device"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/spoofing"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/sse"
)

// EventAttendance is the SSE event name of an accepted scan.
const EventAttendance = "attendance"

// EventPublisher receives accepted scans after commit. *sse.Hub satisfies it.
type EventPublisher interface {
	Publish(topic string, event sse.Event)
}

type AttendanceServiceImpl struct {
	tx    database.Transactor
	locks *keylock.KeyLock
	attendance.AttendanceRepository
	organization.OrganizationRepository
	user.UserRepository
	qrcodeService    qrcode.QRCodeService
	deviceService    device.DeviceService
	timesheetService timesheet.TimesheetService
	publisher        EventPublisher
	now              func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	locks *keylock.KeyLock,
	attendanceRepository attendance.AttendanceRepository,
	organizationRepository organization.OrganizationRepository,
	userRepository user.UserRepository,
	qrcodeService qrcode.QRCodeService,
	deviceService device.DeviceService,
	timesheetService timesheet.TimesheetService,
	publisher EventPublisher,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                     tx,
		locks:                  locks,
		AttendanceRepository:   attendanceRepository,
		OrganizationRepository: organizationRepository,
		UserRepository:         userRepository,
		qrcodeService:          qrcodeService,
		deviceService:          deviceService,
		timesheetService:       timesheetService,
		publisher:              publisher,
		now:                    time.Now,
	}
}

// round2 keeps two decimals for display.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func sessionDetails(state attendance.SessionState) map[string]any {
	return map[string]any{
		"last_check_in":  state.LastCheckIn,
		"last_check_out": state.LastCheckOut,
	}
}

// Scan implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Scan(ctx context.Context, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	// 1. Required fields
	if err := req.Validate(); err != nil {
		details := map[string]any{}
		var vErrs interface{ ToMap() map[string]string }
		if errors.As(err, &vErrs) {
			details["fields"] = vErrs.ToMap()
		}
		return attendance.ScanResponse{}, attendance.NewScanError(attendance.CodeBadRequest, attendance.ErrInvalidScanRequest, details)
	}

	org, err := a.OrganizationRepository.GetByID(ctx, req.OrganizationID)
	if err != nil {
		return attendance.ScanResponse{}, err
	}
	loc, err := org.TimeLocation()
	if err != nil {
		return attendance.ScanResponse{}, err
	}

	u, err := a.UserRepository.GetByID(ctx, req.UserID)
	if err != nil {
		return attendance.ScanResponse{}, err
	}
	if !u.BelongsTo(org.ID) {
		return attendance.ScanResponse{}, user.ErrUserOrganizationMismatch
	}

	// 2. Device binding
	if err := a.deviceService.Verify(u, req.DeviceInfo.DeviceID, org.Settings.RequireDeviceRegistration); err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotRegistered):
			return attendance.ScanResponse{}, a.rejected(ctx, attendance.NewScanError(attendance.CodeDeviceNotRegistered, err, nil), u.ID, org, loc)
		case errors.Is(err, device.ErrDeviceMismatch):
			return attendance.ScanResponse{}, a.rejected(ctx, attendance.NewScanError(attendance.CodeDeviceMismatch, err, nil), u.ID, org, loc)
		}
		return attendance.ScanResponse{}, err
	}
	deviceTrusted := a.deviceService.Verify(u, req.DeviceInfo.DeviceID, true) == nil

	// 3. Token resolution
	qr, err := a.qrcodeService.Resolve(ctx, org.ID, req.Type, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, qrcode.ErrQRCodeNotFound):
			return attendance.ScanResponse{}, a.rejected(ctx, attendance.NewScanError(attendance.CodeTokenNotFound, err, nil), u.ID, org, loc)
		case errors.Is(err, qrcode.ErrForeignOrganization):
			return attendance.ScanResponse{}, a.rejected(ctx, attendance.NewScanError(attendance.CodeTokenForeignOrg, err, nil), u.ID, org, loc)
		}
		return attendance.ScanResponse{}, err
	}

	// Session state is read and written under one lock per (user, organization) so
	// duplicate taps cannot both pass the open-session check.
	unlock, err := a.locks.Lock(ctx, u.ID+"|"+org.ID)
	if err != nil {
		return attendance.ScanResponse{}, fmt.Errorf("failed to acquire attendance lock: %w", err)
	}
	defer unlock()

	var (
		event attendance.Event
		sheet timesheet.DailyTimesheet
	)
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := a.now()
		workDate := attendance.WorkDate(now, loc)

		if err := a.AttendanceRepository.LockUserDay(ctx, u.ID, org.ID, workDate); err != nil {
			return fmt.Errorf("failed to lock attendance day: %w", err)
		}

		// 4. Session-state precondition
		dayStart, dayEnd := attendance.DayBounds(now, loc)
		todays, err := a.AttendanceRepository.ListBetween(ctx, u.ID, org.ID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("failed to list today's attendance: %w", err)
		}
		state := attendance.ResolveSession(todays)

		if qr.Type == qrcode.TypeCheckIn && state.HasOpenSession {
			return attendance.NewScanError(attendance.CodeAlreadyCheckedIn, attendance.ErrAlreadyCheckedIn, sessionDetails(state))
		}
		if qr.Type == qrcode.TypeCheckOut && !state.HasOpenSession {
			return attendance.NewScanError(attendance.CodeNoOpenSession, attendance.ErrNoOpenSession, sessionDetails(state))
		}

		// 5. Token validity
		tokenValid := a.qrcodeService.IsValid(qr, now)
		if !tokenValid {
			return attendance.NewScanError(attendance.CodeTokenExpired, attendance.ErrQRCodeExpired, map[string]any{
				"valid_until": qr.ValidUntil(),
			})
		}

		// 6. Geofence
		fence := geo.WithinFence(org.Center(), org.FenceRadius(), req.Point())
		if !fence.WithinRange {
			return attendance.NewScanError(attendance.CodeOutOfRange, attendance.ErrOutOfRange, map[string]any{
				"distance_meters": round2(fence.Distance),
				"allowed_radius":  fence.Radius,
			})
		}

		// 7. Anti-spoofing
		verdict := spoofing.Detect(spoofing.Signals{
			Accuracy:                 req.Location.Accuracy,
			UserAgent:                req.UserAgent,
			MockLocationEnabled:      req.DeviceInfo.MockLocationEnabled,
			DeveloperSettingsEnabled: req.DeviceInfo.DeveloperSettingsEnabled,
			IsFromMockProvider:       req.DeviceInfo.IsFromMockProvider,
		})
		if verdict.Suspicious && org.Settings.StrictLocationVerification {
			return attendance.NewScanError(attendance.CodeSpoofingSuspected, attendance.ErrSpoofingSuspected, map[string]any{
				"reasons": verdict.Reasons,
			})
		}

		point := req.Point()
		event, err = a.AttendanceRepository.Create(ctx, attendance.Event{
			UserID:         u.ID,
			OrganizationID: org.ID,
			QRCodeID:       qr.ID,
			Type:           qr.Type,
			Timestamp:      now,
			Location: attendance.Location{
				Latitude:  point.Latitude,
				Longitude: point.Longitude,
				Accuracy:  req.Location.Accuracy,
			},
			Device: attendance.DeviceMetadata{
				DeviceID:    req.DeviceInfo.DeviceID,
				Platform:    req.DeviceInfo.Platform,
				Fingerprint: req.DeviceInfo.Fingerprint,
				UserAgent:   req.UserAgent,
				IPAddress:   req.IPAddress,
			},
			Verified: tokenValid && fence.WithinRange && !verdict.Suspicious,
			Verification: attendance.VerificationDetails{
				DistanceMeters:    round2(fence.Distance),
				AllowedRadius:     fence.Radius,
				WithinRange:       fence.WithinRange,
				TokenValid:        tokenValid,
				DeviceTrusted:     deviceTrusted,
				SpoofingSuspected: verdict.Suspicious,
				SpoofingReasons:   verdict.Reasons,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create attendance event: %w", err)
		}

		if err := a.qrcodeService.RecordUsage(ctx, qr.ID); err != nil {
			return err
		}

		if u.RequiresDeviceBinding() {
			accuracy := 0.0
			if req.Location.Accuracy != nil {
				accuracy = *req.Location.Accuracy
			}
			if err := a.UserRepository.UpdateLastKnownLocation(ctx, u.ID, user.KnownLocation{
				Latitude:  point.Latitude,
				Longitude: point.Longitude,
				Accuracy:  accuracy,
				Timestamp: now,
			}); err != nil {
				return fmt.Errorf("failed to update last known location: %w", err)
			}
		}

		sheet, err = a.timesheetService.Apply(ctx, u.ID, org.ID, loc, org.RequiredWorkingMinutes(), timesheet.Mark{
			EventID: event.ID,
			Type:    event.Type,
			Time:    event.Timestamp,
		})
		return err
	})
	if err != nil {
		var scanErr *attendance.ScanError
		if errors.As(err, &scanErr) {
			slog.Warn("Scan rejected", "user_id", u.ID, "organization_id", org.ID, "code", scanErr.Code)
			return attendance.ScanResponse{}, a.rejected(ctx, scanErr, u.ID, org, loc)
		}
		return attendance.ScanResponse{}, err
	}

	if a.publisher != nil {
		a.publisher.Publish(org.ID, sse.Event{
			Event: EventAttendance,
			Data: map[string]any{
				"event":       attendance.NewEventResponse(event, loc),
				"userName":    u.Name,
				"userEmail":   u.Email,
				"dailyStatus": sheet.Status,
			},
		})
	}

	slog.Info("Attendance recorded",
		"user_id", u.ID,
		"organization_id", org.ID,
		"event_id", event.ID,
		"type", event.Type,
		"verified", event.Verified,
		"distance_meters", event.Verification.DistanceMeters,
	)

	message := "Checked in successfully"
	if event.Type == qrcode.TypeCheckOut {
		message = "Checked out successfully"
	}
	summary := attendance.NewDailySummary(sheet)
	distance := event.Verification.DistanceMeters
	radius := event.Verification.AllowedRadius
	return attendance.ScanResponse{
		Accepted:          true,
		Message:           message,
		AttendanceEventID: &event.ID,
		Type:              event.Type,
		Timestamp:         &event.Timestamp,
		Verified:          &event.Verified,
		DistanceMeters:    &distance,
		AllowedRadius:     &radius,
		DailySummary:      &summary,
	}, nil
}

// rejected attaches the user's summary for today to a scan rejection. A failed lookup
// leaves the rejection without one.
func (a *AttendanceServiceImpl) rejected(ctx context.Context, scanErr *attendance.ScanError, userID string, org organization.Organization, loc *time.Location) error {
	sheet, err := a.timesheetService.ForDay(ctx, userID, org.ID, attendance.WorkDate(a.now(), loc), org.RequiredWorkingMinutes())
	if err != nil {
		slog.Warn("Failed to load daily summary for rejected scan", "user_id", userID, "error", err)
		return scanErr
	}
	summary := attendance.NewDailySummary(sheet)
	scanErr.DailySummary = &summary
	return scanErr
}

// History implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) History(ctx context.Context, userID string, filter attendance.HistoryFilter) (attendance.HistoryResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.HistoryResponse{}, err
	}

	u, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return attendance.HistoryResponse{}, err
	}
	loc := time.UTC
	if u.OrganizationID != nil {
		org, err := a.OrganizationRepository.GetByID(ctx, *u.OrganizationID)
		if err != nil {
			return attendance.HistoryResponse{}, err
		}
		if loc, err = org.TimeLocation(); err != nil {
			return attendance.HistoryResponse{}, err
		}
	}

	offset := (filter.Page - 1) * filter.Limit
	events, total, err := a.AttendanceRepository.ListByUser(ctx, userID, filter.Limit, offset)
	if err != nil {
		return attendance.HistoryResponse{}, fmt.Errorf("failed to list attendance history: %w", err)
	}

	responses := make([]attendance.EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, attendance.NewEventResponse(e, loc))
	}

	return attendance.HistoryResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		HasNext:    int64(offset+len(events)) < total,
		Events:     responses,
	}, nil
}

// Status implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Status(ctx context.Context, userID, organizationID string) (attendance.StatusResponse, error) {
	org, err := a.OrganizationRepository.GetByID(ctx, organizationID)
	if err != nil {
		return attendance.StatusResponse{}, err
	}
	loc, err := org.TimeLocation()
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	now := a.now()
	dayStart, dayEnd := attendance.DayBounds(now, loc)
	todays, err := a.AttendanceRepository.ListBetween(ctx, userID, organizationID, dayStart, dayEnd)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to list today's attendance: %w", err)
	}
	state := attendance.ResolveSession(todays)

	sheet, err := a.timesheetService.ForDay(ctx, userID, organizationID, attendance.WorkDate(now, loc), org.RequiredWorkingMinutes())
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	return attendance.StatusResponse{
		WorkDate:     attendance.WorkDate(now, loc),
		Timezone:     loc.String(),
		Session:      state,
		CanCheckIn:   !state.HasOpenSession,
		CanCheckOut:  state.HasOpenSession,
		DailySummary: attendance.NewDailySummary(sheet),
	}, nil
}
