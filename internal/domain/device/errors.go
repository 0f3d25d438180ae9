package device

import "errors"

var (
	ErrDeviceIDRequired       = errors.New("device id is required for users")
	ErrDeviceNotRegistered    = errors.New("device not registered, please contact your admin")
	ErrDeviceMismatch         = errors.New("unauthorized device, use your registered device or request a device change")
	ErrChangeRequestPending   = errors.New("a device change request is already pending")
	ErrNoPendingChangeRequest = errors.New("no pending device change request found for this user")
	ErrInvalidAction          = errors.New("action must be approve or reject")
	ErrNotApplicable          = errors.New("device binding does not apply to organization admins")
)
