package qrcode

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
)

// codeBytes is the amount of randomness in a token code (256 bits).
const codeBytes = 32

type QRCodeServiceImpl struct {
	tx database.Transactor
	qrcode.QRCodeRepository
	organization.OrganizationRepository
	now func() time.Time
}

func NewQRCodeService(tx database.Transactor, qrcodeRepository qrcode.QRCodeRepository, organizationRepository organization.OrganizationRepository) qrcode.QRCodeService {
	return &QRCodeServiceImpl{
		tx:                     tx,
		QRCodeRepository:       qrcodeRepository,
		OrganizationRepository: organizationRepository,
		now:                    time.Now,
	}
}

func generateCode() (string, error) {
	b := make([]byte, codeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Issue implements qrcode.QRCodeService.
func (q *QRCodeServiceImpl) Issue(ctx context.Context, organizationID string, req qrcode.IssueRequest) (qrcode.IssueResponse, error) {
	if err := req.Validate(); err != nil {
		return qrcode.IssueResponse{}, err
	}
	if organizationID == "" {
		return qrcode.IssueResponse{}, qrcode.ErrOrganizationIDRequired
	}

	org, err := q.OrganizationRepository.GetByID(ctx, organizationID)
	if err != nil {
		return qrcode.IssueResponse{}, err
	}

	validity := req.ValidityMinutes
	if validity <= 0 {
		validity = org.ValidityMinutes()
	}

	code, err := generateCode()
	if err != nil {
		return qrcode.IssueResponse{}, fmt.Errorf("%w: %v", qrcode.ErrCodeGenerationFailed, err)
	}

	var created qrcode.QRCode
	err = q.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		deactivated, err := q.QRCodeRepository.DeactivateActive(ctx, organizationID, req.Type)
		if err != nil {
			return fmt.Errorf("failed to deactivate previous qr codes: %w", err)
		}

		created, err = q.QRCodeRepository.Create(ctx, qrcode.QRCode{
			OrganizationID:  organizationID,
			Type:            req.Type,
			Code:            code,
			Latitude:        org.Location.Latitude,
			Longitude:       org.Location.Longitude,
			Radius:          org.FenceRadius(),
			IssuedAt:        q.now(),
			ValidityMinutes: validity,
			Active:          true,
		})
		if err != nil {
			return fmt.Errorf("failed to create qr code: %w", err)
		}

		if err := q.OrganizationRepository.SetCurrentQRCode(ctx, organizationID, req.Type, created.ID); err != nil {
			return fmt.Errorf("failed to update current qr code: %w", err)
		}

		slog.Info("QR code issued",
			"organization_id", organizationID,
			"type", req.Type,
			"qr_code_id", created.ID,
			"validity_minutes", validity,
			"deactivated", deactivated,
		)
		return nil
	})
	if err != nil {
		return qrcode.IssueResponse{}, err
	}

	return qrcode.IssueResponse{
		ID:         created.ID,
		Code:       created.Code,
		Type:       created.Type,
		IssuedAt:   created.IssuedAt,
		ValidUntil: created.ValidUntil(),
	}, nil
}

// Resolve implements qrcode.QRCodeService.
func (q *QRCodeServiceImpl) Resolve(ctx context.Context, organizationID string, qrType qrcode.Type, code string) (qrcode.QRCode, error) {
	if qrType.IsValid() {
		qr, err := q.QRCodeRepository.GetActiveByCode(ctx, organizationID, qrType, code)
		if err == nil {
			return qr, nil
		}
		if !errors.Is(err, qrcode.ErrQRCodeNotFound) {
			return qrcode.QRCode{}, fmt.Errorf("failed to get qr code: %w", err)
		}
	}

	// Unknown, omitted or mismatched type: fall back to the code alone.
	qr, err := q.QRCodeRepository.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, qrcode.ErrQRCodeNotFound) {
			return qrcode.QRCode{}, qrcode.ErrQRCodeNotFound
		}
		return qrcode.QRCode{}, fmt.Errorf("failed to find qr code: %w", err)
	}

	if qr.OrganizationID != organizationID {
		return qrcode.QRCode{}, qrcode.ErrForeignOrganization
	}
	return qr, nil
}

// IsValid implements qrcode.QRCodeService.
func (q *QRCodeServiceImpl) IsValid(qr qrcode.QRCode, now time.Time) bool {
	return qr.IsValid(now)
}

// RecordUsage implements qrcode.QRCodeService.
func (q *QRCodeServiceImpl) RecordUsage(ctx context.Context, id string) error {
	if err := q.QRCodeRepository.IncrementUsage(ctx, id); err != nil {
		return fmt.Errorf("failed to record qr code usage: %w", err)
	}
	return nil
}

// GetActive implements qrcode.QRCodeService.
func (q *QRCodeServiceImpl) GetActive(ctx context.Context, organizationID string, qrType qrcode.Type) (qrcode.ActiveResponse, error) {
	if !qrType.IsValid() {
		return qrcode.ActiveResponse{}, qrcode.ErrInvalidQRCodeType
	}

	qr, err := q.QRCodeRepository.GetActive(ctx, organizationID, qrType)
	if err != nil {
		if errors.Is(err, qrcode.ErrQRCodeNotFound) {
			return qrcode.ActiveResponse{}, qrcode.ErrNoActiveQRCode
		}
		return qrcode.ActiveResponse{}, fmt.Errorf("failed to get active qr code: %w", err)
	}

	return qrcode.ActiveResponse{
		ID:         qr.ID,
		Code:       qr.Code,
		Type:       qr.Type,
		IssuedAt:   qr.IssuedAt,
		ValidUntil: qr.ValidUntil(),
		IsValid:    qr.IsValid(q.now()),
		UsageCount: qr.UsageCount,
	}, nil
}
