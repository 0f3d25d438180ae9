package qrcode

import "time"

type Type string

const (
	TypeCheckIn  Type = "check-in"
	TypeCheckOut Type = "check-out"
)

func (t Type) IsValid() bool {
	return t == TypeCheckIn || t == TypeCheckOut
}

// QRCode is an opaque, time-bounded credential scoped to one organization and one direction.
// At most one QRCode per (OrganizationID, Type) is Active.
type QRCode struct {
	ID             string
	OrganizationID string
	Type           Type
	Code           string

	// Snapshot of the organization's premises at issuance.
	Latitude  float64
	Longitude float64
	Radius    float64

	IssuedAt        time.Time
	ValidityMinutes int
	Active          bool
	UsageCount      int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (q *QRCode) ValidUntil() time.Time {
	return q.IssuedAt.Add(time.Duration(q.ValidityMinutes) * time.Minute)
}

// IsValid reports whether the token may still be scanned at now. A deactivated
// token is never valid regardless of age.
func (q *QRCode) IsValid(now time.Time) bool {
	if !q.Active {
		return false
	}
	return now.Sub(q.IssuedAt) <= time.Duration(q.ValidityMinutes)*time.Minute
}
