package attendance

import (
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
)

type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

type DeviceMetadata struct {
	DeviceID    string `json:"deviceId"`
	Platform    string `json:"platform,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	UserAgent   string `json:"userAgent,omitempty"`
	IPAddress   string `json:"ipAddress,omitempty"`
}

type VerificationDetails struct {
	DistanceMeters    float64  `json:"distanceMeters"`
	AllowedRadius     float64  `json:"allowedRadius"`
	WithinRange       bool     `json:"withinRange"`
	TokenValid        bool     `json:"tokenValid"`
	DeviceTrusted     bool     `json:"deviceTrusted"`
	SpoofingSuspected bool     `json:"spoofingSuspected"`
	SpoofingReasons   []string `json:"spoofingReasons"`
}

// Event is the immutable record of one accepted scan.
type Event struct {
	ID             string
	UserID         string
	OrganizationID string
	QRCodeID       string
	Type           qrcode.Type
	Timestamp      time.Time
	Location       Location
	Device         DeviceMetadata
	Verified       bool
	Verification   VerificationDetails
	CreatedAt      time.Time
}
