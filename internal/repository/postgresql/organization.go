package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const organizationColumns = `
	id, name, latitude, longitude, radius, address,
	timezone, qr_code_validity_minutes, require_device_registration,
	strict_location_verification, required_working_minutes,
	check_in_qr_code_id, check_out_qr_code_id, created_at, updated_at`

type organizationRepositoryImpl struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) organization.OrganizationRepository {
	return &organizationRepositoryImpl{db: db}
}

func scanOrganization(row pgx.Row) (organization.Organization, error) {
	var o organization.Organization
	err := row.Scan(
		&o.ID, &o.Name, &o.Location.Latitude, &o.Location.Longitude, &o.Location.Radius, &o.Location.Address,
		&o.Settings.Timezone, &o.Settings.QRCodeValidityMinutes, &o.Settings.RequireDeviceRegistration,
		&o.Settings.StrictLocationVerification, &o.Settings.RequiredWorkingMinutes,
		&o.CheckInQRCodeID, &o.CheckOutQRCodeID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrOrganizationNotFound
		}
		return organization.Organization{}, err
	}
	return o, nil
}

// Create implements organization.OrganizationRepository.
func (r *organizationRepositoryImpl) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	if org.ID == "" {
		id, err := newID()
		if err != nil {
			return organization.Organization{}, err
		}
		org.ID = id
	}

	query := `
		INSERT INTO organizations (
			id, name, latitude, longitude, radius, address,
			timezone, qr_code_validity_minutes, require_device_registration,
			strict_location_verification, required_working_minutes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + organizationColumns

	created, err := scanOrganization(q.QueryRow(ctx, query,
		org.ID, org.Name, org.Location.Latitude, org.Location.Longitude, org.Location.Radius, org.Location.Address,
		org.Settings.Timezone, org.Settings.QRCodeValidityMinutes, org.Settings.RequireDeviceRegistration,
		org.Settings.StrictLocationVerification, org.Settings.RequiredWorkingMinutes,
	))
	if err != nil {
		return organization.Organization{}, fmt.Errorf("failed to create organization: %w", err)
	}
	return created, nil
}

// GetByID implements organization.OrganizationRepository.
func (r *organizationRepositoryImpl) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	return scanOrganization(q.QueryRow(ctx, query, id))
}

// UpdateLocation implements organization.OrganizationRepository.
func (r *organizationRepositoryImpl) UpdateLocation(ctx context.Context, id string, location organization.Location) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE organizations
		SET latitude = $2, longitude = $3, radius = $4, address = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + organizationColumns

	return scanOrganization(q.QueryRow(ctx, query, id, location.Latitude, location.Longitude, location.Radius, location.Address))
}

// UpdateSettings implements organization.OrganizationRepository.
func (r *organizationRepositoryImpl) UpdateSettings(ctx context.Context, id string, settings organization.Settings) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE organizations
		SET timezone = $2,
		    qr_code_validity_minutes = $3,
		    require_device_registration = $4,
		    strict_location_verification = $5,
		    required_working_minutes = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + organizationColumns

	return scanOrganization(q.QueryRow(ctx, query, id,
		settings.Timezone, settings.QRCodeValidityMinutes, settings.RequireDeviceRegistration,
		settings.StrictLocationVerification, settings.RequiredWorkingMinutes,
	))
}

// SetCurrentQRCode implements organization.OrganizationRepository.
func (r *organizationRepositoryImpl) SetCurrentQRCode(ctx context.Context, id string, qrType qrcode.Type, qrCodeID string) error {
	q := GetQuerier(ctx, r.db)

	var query string
	switch qrType {
	case qrcode.TypeCheckIn:
		query = `UPDATE organizations SET check_in_qr_code_id = $2, updated_at = NOW() WHERE id = $1`
	case qrcode.TypeCheckOut:
		query = `UPDATE organizations SET check_out_qr_code_id = $2, updated_at = NOW() WHERE id = $1`
	default:
		return qrcode.ErrInvalidQRCodeType
	}

	tag, err := q.Exec(ctx, query, id, qrCodeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrOrganizationNotFound
	}
	return nil
}
