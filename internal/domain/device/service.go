package device

import (
	"context"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
)

// DeviceService enforces the one-device-per-user binding for non-admin roles.
type DeviceService interface {
	// BindOnLogin registers the device on first login and rejects a different device afterwards.
	// When the organization does not require registration a device is still recorded on first
	// login, but a missing or different device is let through. u must be read inside the
	// caller's transaction with GetByIDForUpdate.
	BindOnLogin(ctx context.Context, u user.User, info Info) (user.User, error)

	// Verify checks a scan's device against the binding. Admins always pass, and so does
	// everyone when requireRegistration is false.
	Verify(u user.User, deviceID string, requireRegistration bool) error

	SubmitRequest(ctx context.Context, userID string, req SubmitChangeRequest) (ChangeRequestStatusResponse, error)
	ResolveRequest(ctx context.Context, adminID, organizationID string, req ResolveChangeRequest) (ChangeRequestStatusResponse, error)
	ListPending(ctx context.Context, organizationID string) ([]PendingChangeRequest, error)
}
