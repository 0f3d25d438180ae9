package qrcode

import "errors"

var (
	ErrQRCodeNotFound         = errors.New("qr code not found or inactive")
	ErrForeignOrganization    = errors.New("qr code belongs to another organization")
	ErrInvalidQRCodeType      = errors.New("qr code type must be check-in or check-out")
	ErrNoActiveQRCode         = errors.New("no active qr code for this type")
	ErrCodeGenerationFailed   = errors.New("failed to generate qr code")
	ErrOrganizationIDRequired = errors.New("organization id is required")
)
