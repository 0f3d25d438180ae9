package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, user_id, organization_id, qr_code_id, event_type, event_time,
	latitude, longitude, accuracy,
	device_id, platform, fingerprint, user_agent, ip_address,
	verified, distance_meters, allowed_radius, within_range, token_valid,
	device_trusted, spoofing_suspected, spoofing_reasons, created_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanEvent(row pgx.Row) (attendance.Event, error) {
	var e attendance.Event
	err := row.Scan(
		&e.ID, &e.UserID, &e.OrganizationID, &e.QRCodeID, &e.Type, &e.Timestamp,
		&e.Location.Latitude, &e.Location.Longitude, &e.Location.Accuracy,
		&e.Device.DeviceID, &e.Device.Platform, &e.Device.Fingerprint, &e.Device.UserAgent, &e.Device.IPAddress,
		&e.Verified, &e.Verification.DistanceMeters, &e.Verification.AllowedRadius,
		&e.Verification.WithinRange, &e.Verification.TokenValid,
		&e.Verification.DeviceTrusted, &e.Verification.SpoofingSuspected, &e.Verification.SpoofingReasons,
		&e.CreatedAt,
	)
	return e, err
}

func collectEvents(rows pgx.Rows) ([]attendance.Event, error) {
	defer rows.Close()

	events := make([]attendance.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, event attendance.Event) (attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	if event.ID == "" {
		id, err := newID()
		if err != nil {
			return attendance.Event{}, err
		}
		event.ID = id
	}
	reasons := event.Verification.SpoofingReasons
	if reasons == nil {
		reasons = []string{}
	}

	query := `
		INSERT INTO attendance_events (
			id, user_id, organization_id, qr_code_id, event_type, event_time,
			latitude, longitude, accuracy,
			device_id, platform, fingerprint, user_agent, ip_address,
			verified, distance_meters, allowed_radius, within_range, token_valid,
			device_trusted, spoofing_suspected, spoofing_reasons
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		) RETURNING ` + attendanceColumns

	created, err := scanEvent(q.QueryRow(ctx, query,
		event.ID, event.UserID, event.OrganizationID, event.QRCodeID, event.Type, event.Timestamp,
		event.Location.Latitude, event.Location.Longitude, event.Location.Accuracy,
		event.Device.DeviceID, event.Device.Platform, event.Device.Fingerprint, event.Device.UserAgent, event.Device.IPAddress,
		event.Verified, event.Verification.DistanceMeters, event.Verification.AllowedRadius,
		event.Verification.WithinRange, event.Verification.TokenValid,
		event.Verification.DeviceTrusted, event.Verification.SpoofingSuspected, reasons,
	))
	if err != nil {
		return attendance.Event{}, fmt.Errorf("failed to create attendance event: %w", err)
	}
	return created, nil
}

// ListBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListBetween(ctx context.Context, userID, organizationID string, from, to time.Time) ([]attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_events
		WHERE user_id = $1 AND organization_id = $2
		  AND event_time >= $3 AND event_time < $4
		ORDER BY event_time ASC, id ASC
	`
	rows, err := q.Query(ctx, query, userID, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]attendance.Event, int64, error) {
	q := GetQuerier(ctx, a.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_events WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance events: %w", err)
	}

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_events
		WHERE user_id = $1
		ORDER BY event_time DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// LockUserDay implements attendance.AttendanceRepository with a transaction-scoped
// advisory lock, so scans for the same user and day serialize across API instances.
func (a *attendanceRepository) LockUserDay(ctx context.Context, userID, organizationID, workDate string) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); !ok {
		return fmt.Errorf("lock attendance day: no transaction in context")
	}
	q := GetQuerier(ctx, a.db)

	key := userID + "|" + organizationID + "|" + workDate
	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	return err
}

// DeleteBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_events WHERE event_time < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
