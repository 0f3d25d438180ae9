package organization

import "context"

type OrganizationService interface {
	GetMy(ctx context.Context, organizationID string) (OrganizationResponse, error)
	UpdateLocation(ctx context.Context, organizationID string, req UpdateLocationRequest) (OrganizationResponse, error)
	UpdateSettings(ctx context.Context, organizationID string, req UpdateSettingsRequest) (OrganizationResponse, error)
}
