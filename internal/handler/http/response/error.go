package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/device"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Rejected scans keep their own code and the scan response shape
	var scanErr *attendance.ScanError
	if errors.As(err, &scanErr) {
		ScanRejected(w, scanErr)
		return
	}

	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// User domain errors
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Organization admin privilege required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrOrganizationIDRequired), errors.Is(err, organization.ErrOrganizationRequired):
		Forbidden(w, "User is not assigned to an organization")
	case errors.Is(err, user.ErrUserOrganizationMismatch):
		Forbidden(w, "User belongs to another organization")

	// Device domain errors
	case errors.Is(err, device.ErrDeviceIDRequired):
		BadRequest(w, "Device ID is required", nil)
	case errors.Is(err, device.ErrDeviceNotRegistered):
		ErrorWithCode(w, http.StatusForbidden, string(attendance.CodeDeviceNotRegistered), err.Error(), nil)
	case errors.Is(err, device.ErrDeviceMismatch):
		ErrorWithCode(w, http.StatusForbidden, string(attendance.CodeDeviceMismatch), err.Error(), nil)
	case errors.Is(err, device.ErrChangeRequestPending):
		Conflict(w, "A device change request is already pending")
	case errors.Is(err, device.ErrNoPendingChangeRequest):
		NotFound(w, "No pending device change request found")
	case errors.Is(err, device.ErrInvalidAction):
		BadRequest(w, "Action must be approve or reject", nil)
	case errors.Is(err, device.ErrNotApplicable):
		BadRequest(w, "Device binding does not apply to organization admins", nil)

	// Organization domain errors
	case errors.Is(err, organization.ErrOrganizationNotFound):
		NotFound(w, "Organization not found")
	case errors.Is(err, organization.ErrInvalidTimezone):
		BadRequest(w, "Invalid organization timezone", nil)
	case errors.Is(err, organization.ErrLocationNotConfigured):
		Conflict(w, "Organization location is not configured")

	// QR code domain errors
	case errors.Is(err, qrcode.ErrQRCodeNotFound):
		ErrorWithCode(w, http.StatusNotFound, string(attendance.CodeTokenNotFound), err.Error(), nil)
	case errors.Is(err, qrcode.ErrNoActiveQRCode):
		NotFound(w, "No active QR code for this type")
	case errors.Is(err, qrcode.ErrForeignOrganization):
		ErrorWithCode(w, http.StatusForbidden, string(attendance.CodeTokenForeignOrg), err.Error(), nil)
	case errors.Is(err, qrcode.ErrInvalidQRCodeType):
		BadRequest(w, "QR code type must be check-in or check-out", nil)

	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrInvalidWorkDate):
		BadRequest(w, "Date must be in YYYY-MM-DD format", nil)
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

// ScanStatus is the HTTP status of a rejected scan.
func ScanStatus(code attendance.Code) int {
	switch code {
	case attendance.CodeBadRequest, attendance.CodeTokenExpired:
		return http.StatusBadRequest
	case attendance.CodeTokenNotFound:
		return http.StatusNotFound
	case attendance.CodeAlreadyCheckedIn, attendance.CodeNoOpenSession:
		return http.StatusConflict
	case attendance.CodeDeviceNotRegistered, attendance.CodeDeviceMismatch, attendance.CodeTokenForeignOrg,
		attendance.CodeOutOfRange, attendance.CodeSpoofingSuspected:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// ScanRejected writes a rejection with the scan response in data and the reason in error.
func ScanRejected(w http.ResponseWriter, e *attendance.ScanError) {
	writeJSON(w, ScanStatus(e.Code), Response{
		Success: false,
		Message: e.Err.Error(),
		Data:    attendance.NewRejectedScanResponse(e),
		Error: &ErrorDetail{
			Code:    string(e.Code),
			Message: e.Err.Error(),
			Details: e.Details,
		},
	})
}
