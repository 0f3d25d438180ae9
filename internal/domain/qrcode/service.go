package qrcode

import (
	"context"
	"time"
)

type QRCodeService interface {
	// Issue rotates the active token of (organizationID, req.Type) in one transaction.
	Issue(ctx context.Context, organizationID string, req IssueRequest) (IssueResponse, error)

	// Resolve finds the active token a scan refers to and checks it belongs to organizationID.
	// qrType may be empty.
	Resolve(ctx context.Context, organizationID string, qrType Type, code string) (QRCode, error)

	IsValid(qr QRCode, now time.Time) bool

	// RecordUsage increments the usage counter. It is observational and never rejects.
	RecordUsage(ctx context.Context, id string) error

	GetActive(ctx context.Context, organizationID string, qrType Type) (ActiveResponse, error)
}
