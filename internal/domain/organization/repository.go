package organization

import (
	"context"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org Organization) (Organization, error)
	GetByID(ctx context.Context, id string) (Organization, error)
	UpdateLocation(ctx context.Context, id string, location Location) (Organization, error)
	UpdateSettings(ctx context.Context, id string, settings Settings) (Organization, error)

	// SetCurrentQRCode moves the organization's pointer for the given token type.
	SetCurrentQRCode(ctx context.Context, id string, qrType qrcode.Type, qrCodeID string) error
}
