package qrcode

import (
	"context"
	"time"
)

type QRCodeRepository interface {
	Create(ctx context.Context, qr QRCode) (QRCode, error)

	// DeactivateActive turns off every active token of (organizationID, qrType) and
	// returns how many were deactivated.
	DeactivateActive(ctx context.Context, organizationID string, qrType Type) (int64, error)

	// GetActive returns the active token of (organizationID, qrType).
	GetActive(ctx context.Context, organizationID string, qrType Type) (QRCode, error)

	// GetActiveByCode looks up an active token by (organizationID, qrType, code).
	GetActiveByCode(ctx context.Context, organizationID string, qrType Type, code string) (QRCode, error)

	// FindActiveByCode looks up an active token by code alone, across organizations.
	FindActiveByCode(ctx context.Context, code string) (QRCode, error)

	IncrementUsage(ctx context.Context, id string) error

	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
