package user

import "time"

type Role string

const (
	RoleOrganization Role = "organization" // Organization admin, exempt from device binding
	RoleUser         Role = "user"         // Member who records attendance
)

func (r Role) IsValid() bool {
	return r == RoleOrganization || r == RoleUser
}

type ChangeRequestStatus string

const (
	ChangeRequestNone     ChangeRequestStatus = ""
	ChangeRequestPending  ChangeRequestStatus = "pending"
	ChangeRequestApproved ChangeRequestStatus = "approved"
	ChangeRequestRejected ChangeRequestStatus = "rejected"
)

type KnownLocation struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// Device is the trust-on-first-use binding between a user and the phone used for scans.
type Device struct {
	DeviceID          *string
	DeviceType        *string
	Fingerprint       *string
	IsRegistered      bool
	RegisteredAt      *time.Time
	LastKnownLocation *KnownLocation
}

type AdminResponse struct {
	AdminID     string    `json:"adminId"`
	RespondedAt time.Time `json:"respondedAt"`
	Reason      *string   `json:"reason,omitempty"`
}

type DeviceChangeRequest struct {
	NewDeviceID    *string
	NewDeviceType  *string
	NewFingerprint *string
	RequestedAt    *time.Time
	Status         ChangeRequestStatus
	AdminResponse  *AdminResponse
}

type User struct {
	ID                  string
	OrganizationID      *string
	Email               string
	Name                string
	PasswordHash        *string
	Role                Role
	Device              Device
	DeviceChangeRequest DeviceChangeRequest
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsOrganizationAdmin checks if user administers an organization
func (u *User) IsOrganizationAdmin() bool {
	return u.Role == RoleOrganization
}

// RequiresDeviceBinding reports whether scans and logins must present the bound device.
func (u *User) RequiresDeviceBinding() bool {
	return u.Role == RoleUser
}

func (u *User) HasPendingChangeRequest() bool {
	return u.DeviceChangeRequest.Status == ChangeRequestPending
}

func (u *User) BelongsTo(organizationID string) bool {
	return u.OrganizationID != nil && *u.OrganizationID == organizationID
}
