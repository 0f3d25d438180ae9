package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
	id, organization_id, email, name, password_hash, role,
	device_id, device_type, device_fingerprint, device_registered, device_registered_at, last_known_location,
	change_new_device_id, change_new_device_type, change_new_fingerprint, change_requested_at,
	change_status, change_admin_id, change_responded_at, change_reason,
	created_at, updated_at`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u           user.User
		adminID     *string
		respondedAt *time.Time
		reason      *string
	)
	err := row.Scan(
		&u.ID, &u.OrganizationID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&u.Device.DeviceID, &u.Device.DeviceType, &u.Device.Fingerprint, &u.Device.IsRegistered,
		&u.Device.RegisteredAt, &u.Device.LastKnownLocation,
		&u.DeviceChangeRequest.NewDeviceID, &u.DeviceChangeRequest.NewDeviceType,
		&u.DeviceChangeRequest.NewFingerprint, &u.DeviceChangeRequest.RequestedAt,
		&u.DeviceChangeRequest.Status, &adminID, &respondedAt, &reason,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return user.User{}, err
	}
	if adminID != nil && respondedAt != nil {
		u.DeviceChangeRequest.AdminResponse = &user.AdminResponse{
			AdminID:     *adminID,
			RespondedAt: *respondedAt,
			Reason:      reason,
		}
	}
	return u, nil
}

func (r *userRepositoryImpl) getOne(ctx context.Context, where string, arg any) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, `LOWER(email) = LOWER($1)`, email)
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByIDForUpdate implements user.UserRepository. Outside a transaction the lock is
// released as soon as the statement ends.
func (r *userRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, `id = $1 FOR UPDATE`, id)
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		id, err := newID()
		if err != nil {
			return user.User{}, err
		}
		newUser.ID = id
	}

	query := `
		INSERT INTO users (
			id, organization_id, email, name, password_hash, role,
			device_id, device_type, device_fingerprint, device_registered, device_registered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.ID, newUser.OrganizationID, newUser.Email, newUser.Name, newUser.PasswordHash, newUser.Role,
		newUser.Device.DeviceID, newUser.Device.DeviceType, newUser.Device.Fingerprint,
		newUser.Device.IsRegistered, newUser.Device.RegisteredAt,
	))
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (r *userRepositoryImpl) list(ctx context.Context, where string, args ...any) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` ORDER BY name, id`
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListByOrganization implements user.UserRepository.
func (r *userRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string, role user.Role) ([]user.User, error) {
	return r.list(ctx, `organization_id = $1 AND role = $2`, organizationID, role)
}

// ListPendingChangeRequests implements user.UserRepository.
func (r *userRepositoryImpl) ListPendingChangeRequests(ctx context.Context, organizationID string) ([]user.User, error) {
	return r.list(ctx, `organization_id = $1 AND change_status = $2`, organizationID, user.ChangeRequestPending)
}

func (r *userRepositoryImpl) exec(ctx context.Context, query string, args ...any) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdateDevice implements user.UserRepository.
func (r *userRepositoryImpl) UpdateDevice(ctx context.Context, userID string, device user.Device) error {
	query := `
		UPDATE users
		SET device_id = $2, device_type = $3, device_fingerprint = $4,
		    device_registered = $5, device_registered_at = $6, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, userID, device.DeviceID, device.DeviceType, device.Fingerprint, device.IsRegistered, device.RegisteredAt)
}

// UpdateDeviceChangeRequest implements user.UserRepository.
func (r *userRepositoryImpl) UpdateDeviceChangeRequest(ctx context.Context, userID string, req user.DeviceChangeRequest) error {
	var (
		adminID     *string
		respondedAt *time.Time
		reason      *string
	)
	if req.AdminResponse != nil {
		adminID = &req.AdminResponse.AdminID
		respondedAt = &req.AdminResponse.RespondedAt
		reason = req.AdminResponse.Reason
	}

	query := `
		UPDATE users
		SET change_new_device_id = $2, change_new_device_type = $3, change_new_fingerprint = $4,
		    change_requested_at = $5, change_status = $6,
		    change_admin_id = $7, change_responded_at = $8, change_reason = $9,
		    updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, userID,
		req.NewDeviceID, req.NewDeviceType, req.NewFingerprint,
		req.RequestedAt, req.Status,
		adminID, respondedAt, reason,
	)
}

// UpdateLastKnownLocation implements user.UserRepository.
func (r *userRepositoryImpl) UpdateLastKnownLocation(ctx context.Context, userID string, loc user.KnownLocation) error {
	return r.exec(ctx, `UPDATE users SET last_known_location = $2, updated_at = NOW() WHERE id = $1`, userID, loc)
}
