package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const qrcodeColumns = `
	id, organization_id, qr_type, code, latitude, longitude, radius,
	issued_at, validity_minutes, active, usage_count, created_at, updated_at`

type qrcodeRepositoryImpl struct {
	db *database.DB
}

func NewQRCodeRepository(db *database.DB) qrcode.QRCodeRepository {
	return &qrcodeRepositoryImpl{db: db}
}

func scanQRCode(row pgx.Row) (qrcode.QRCode, error) {
	var qr qrcode.QRCode
	err := row.Scan(
		&qr.ID, &qr.OrganizationID, &qr.Type, &qr.Code, &qr.Latitude, &qr.Longitude, &qr.Radius,
		&qr.IssuedAt, &qr.ValidityMinutes, &qr.Active, &qr.UsageCount, &qr.CreatedAt, &qr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return qrcode.QRCode{}, qrcode.ErrQRCodeNotFound
		}
		return qrcode.QRCode{}, err
	}
	return qr, nil
}

// Create implements qrcode.QRCodeRepository.
func (r *qrcodeRepositoryImpl) Create(ctx context.Context, qr qrcode.QRCode) (qrcode.QRCode, error) {
	q := GetQuerier(ctx, r.db)

	if qr.ID == "" {
		id, err := newID()
		if err != nil {
			return qrcode.QRCode{}, err
		}
		qr.ID = id
	}

	query := `
		INSERT INTO qr_codes (
			id, organization_id, qr_type, code, latitude, longitude, radius,
			issued_at, validity_minutes, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + qrcodeColumns

	created, err := scanQRCode(q.QueryRow(ctx, query,
		qr.ID, qr.OrganizationID, qr.Type, qr.Code, qr.Latitude, qr.Longitude, qr.Radius,
		qr.IssuedAt, qr.ValidityMinutes, qr.Active,
	))
	if err != nil {
		if isUniqueViolation(err, "qr_codes_one_active_idx") {
			return qrcode.QRCode{}, fmt.Errorf("another active %s token exists: %w", qr.Type, err)
		}
		return qrcode.QRCode{}, err
	}
	return created, nil
}

// DeactivateActive implements qrcode.QRCodeRepository.
func (r *qrcodeRepositoryImpl) DeactivateActive(ctx context.Context, organizationID string, qrType qrcode.Type) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE qr_codes
		SET active = FALSE, updated_at = NOW()
		WHERE organization_id = $1 AND qr_type = $2 AND active
	`
	tag, err := q.Exec(ctx, query, organizationID, qrType)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetActive implements qrcode.QRCodeRepository.
func (r *qrcodeRepositoryImpl) GetActive(ctx context.Context, organizationID string, qrType qrcode.Type) (qrcode.QRCode, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + qrcodeColumns + ` FROM qr_codes WHERE organization_id = $1 AND qr_type = $2 AND active`
	return scanQRCode(q.QueryRow(ctx, query, organizationID, qrType))
}

// GetActiveByCode implements qrcode.QRCodeRepository.
func (r *qrcodeRepositoryImpl) GetActiveByCode(ctx context.Context, organizationID string, qrType qrcode.Type, code string) (qrcode.QRCode, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + qrcodeColumns + `
		FROM qr_codes
		WHERE organization_id = $1 AND qr_type = $2 AND code = $3 AND active
	`
	return scanQRCode(q.QueryRow(ctx, query, organizationID, qrType, code))
}

// FindActiveByCode implements qrcode.QRCodeRepository.
func (r *qrcodeRepositoryImpl) FindActiveByCode(ctx context.Context, code string) (qrcode.QRCode, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + qrcodeColumns + ` FROM qr_codes WHERE code = $1 AND active`
	return scanQRCode(q.QueryRow(ctx, query, code))
}

// IncrementUsage implements qrcode.QRCodeRepository.
func (r *qrcodeRepositoryImpl) IncrementUsage(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE qr_codes SET usage_count = usage_count + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return qrcode.ErrQRCodeNotFound
	}
	return nil
}

// DeleteInactiveBefore implements qrcode.QRCodeRepository. Tokens still referenced by an
// attendance event are kept.
func (r *qrcodeRepositoryImpl) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM qr_codes qc
		WHERE NOT qc.active
		  AND qc.issued_at < $1
		  AND NOT EXISTS (SELECT 1 FROM attendance_events ae WHERE ae.qr_code_id = qc.id)
	`
	tag, err := q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
