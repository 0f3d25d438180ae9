package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)

	// GetByIDForUpdate reads the user and holds its row lock until the surrounding
	// transaction ends, so device and change-request updates do not act on a stale copy.
	GetByIDForUpdate(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)

	// ListByOrganization returns members with the given role, ordered by name.
	ListByOrganization(ctx context.Context, organizationID string, role Role) ([]User, error)

	// ListPendingChangeRequests returns users of the organization with a pending device change.
	ListPendingChangeRequests(ctx context.Context, organizationID string) ([]User, error)

	UpdateDevice(ctx context.Context, userID string, device Device) error
	UpdateDeviceChangeRequest(ctx context.Context, userID string, req DeviceChangeRequest) error
	UpdateLastKnownLocation(ctx context.Context, userID string, loc KnownLocation) error
}
