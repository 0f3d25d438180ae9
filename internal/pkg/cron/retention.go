package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
)

const DefaultRetentionMonths = 6

type RetentionJobs struct {
	attendanceRepo   attendance.AttendanceRepository
	timesheetRepo    timesheet.TimesheetRepository
	qrcodeRepo       qrcode.QRCodeRepository
	refreshTokenRepo auth.RefreshTokenRepository
	months           int
	now              func() time.Time
}

func NewRetentionJobs(
	attendanceRepo attendance.AttendanceRepository,
	timesheetRepo timesheet.TimesheetRepository,
	qrcodeRepo qrcode.QRCodeRepository,
	refreshTokenRepo auth.RefreshTokenRepository,
	months int,
) *RetentionJobs {
	if months <= 0 {
		months = DefaultRetentionMonths
	}
	return &RetentionJobs{
		attendanceRepo:   attendanceRepo,
		timesheetRepo:    timesheetRepo,
		qrcodeRepo:       qrcodeRepo,
		refreshTokenRepo: refreshTokenRepo,
		months:           months,
		now:              time.Now,
	}
}

func (j *RetentionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("prune_attendance_history", 1*time.Hour, j.PruneAttendanceHistory)
	scheduler.AddJob("prune_expired_refresh_tokens", 1*time.Hour, j.PruneExpiredRefreshTokens)
}

// PruneAttendanceHistory deletes events, timesheets and unreferenced inactive tokens older
// than the retention window.
func (j *RetentionJobs) PruneAttendanceHistory(ctx context.Context) error {
	now := j.now().UTC()
	// Only run on Sunday 02:00-02:59 UTC
	if now.Weekday() != time.Sunday || now.Hour() != 2 {
		return nil
	}

	cutoff := now.AddDate(0, -j.months, 0)
	slog.Info("Cron: Starting attendance retention job", "cutoff", cutoff.Format(time.RFC3339))

	events, err := j.attendanceRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune attendance events: %w", err)
	}

	sheets, err := j.timesheetRepo.DeleteBefore(ctx, cutoff.Format(timesheet.WorkDateLayout))
	if err != nil {
		return fmt.Errorf("failed to prune timesheets: %w", err)
	}

	tokens, err := j.qrcodeRepo.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune qr codes: %w", err)
	}

	slog.Info("Cron: Attendance retention job completed",
		"events_deleted", events,
		"timesheets_deleted", sheets,
		"qr_codes_deleted", tokens,
	)
	return nil
}

func (j *RetentionJobs) PruneExpiredRefreshTokens(ctx context.Context) error {
	// Only run at midnight (00:00-00:59 UTC)
	if j.now().UTC().Hour() != 0 {
		return nil
	}

	deleted, err := j.refreshTokenRepo.DeleteExpiredBefore(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to prune refresh tokens: %w", err)
	}
	if deleted > 0 {
		slog.Info("Cron: Expired refresh tokens pruned", "count", deleted)
	}
	return nil
}
