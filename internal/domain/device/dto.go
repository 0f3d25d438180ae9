package device

import (
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/validator"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Info is what a client reports about the device it runs on.
type Info struct {
	DeviceID    string `json:"deviceId"`
	DeviceType  string `json:"deviceType,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

type SubmitChangeRequest struct {
	NewDeviceID    string `json:"newDeviceId"`
	NewDeviceType  string `json:"newDeviceType,omitempty"`
	NewFingerprint string `json:"newFingerprint,omitempty"`
}

func (r *SubmitChangeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.NewDeviceID) {
		errs.Add("newDeviceId", "newDeviceId is required")
	} else if len(r.NewDeviceID) > 255 {
		errs.Add("newDeviceId", "newDeviceId must not exceed 255 characters")
	}
	if len(r.NewDeviceType) > 50 {
		errs.Add("newDeviceType", "newDeviceType must not exceed 50 characters")
	}
	if len(r.NewFingerprint) > 512 {
		errs.Add("newFingerprint", "newFingerprint must not exceed 512 characters")
	}

	return errs.Err()
}

type ResolveChangeRequest struct {
	UserID string `json:"userId"`
	Action Action `json:"action"`
	Reason string `json:"reason,omitempty"`
}

func (r *ResolveChangeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("userId", "userId is required")
	} else if !validator.IsValidUUID(r.UserID) {
		errs.Add("userId", "userId must be a valid UUID")
	}
	if r.Action != ActionApprove && r.Action != ActionReject {
		errs.Add("action", "action must be one of: approve, reject")
	}
	if len(r.Reason) > 500 {
		errs.Add("reason", "reason must not exceed 500 characters")
	}

	return errs.Err()
}

type ChangeRequestStatusResponse struct {
	UserID      string                   `json:"userId"`
	Status      user.ChangeRequestStatus `json:"status"`
	NewDeviceID *string                  `json:"newDeviceId,omitempty"`
	RequestedAt *time.Time               `json:"requestedAt,omitempty"`
	RespondedAt *time.Time               `json:"respondedAt,omitempty"`
}

type PendingChangeRequest struct {
	UserID        string     `json:"userId"`
	UserName      string     `json:"userName"`
	UserEmail     string     `json:"userEmail"`
	CurrentDevice *string    `json:"currentDevice"`
	NewDeviceID   *string    `json:"newDeviceId"`
	NewDeviceType *string    `json:"newDeviceType,omitempty"`
	RequestedAt   *time.Time `json:"requestedAt"`
}
