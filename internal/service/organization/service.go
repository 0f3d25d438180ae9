package organization

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/geo"
)

type OrganizationServiceImpl struct {
	organization.OrganizationRepository
}

func NewOrganizationService(organizationRepository organization.OrganizationRepository) organization.OrganizationService {
	return &OrganizationServiceImpl{OrganizationRepository: organizationRepository}
}

// GetMy implements organization.OrganizationService.
func (o *OrganizationServiceImpl) GetMy(ctx context.Context, organizationID string) (organization.OrganizationResponse, error) {
	if organizationID == "" {
		return organization.OrganizationResponse{}, organization.ErrOrganizationRequired
	}
	org, err := o.OrganizationRepository.GetByID(ctx, organizationID)
	if err != nil {
		return organization.OrganizationResponse{}, err
	}
	return organization.NewOrganizationResponse(org), nil
}

// UpdateLocation implements organization.OrganizationService.
func (o *OrganizationServiceImpl) UpdateLocation(ctx context.Context, organizationID string, req organization.UpdateLocationRequest) (organization.OrganizationResponse, error) {
	if err := req.Validate(); err != nil {
		return organization.OrganizationResponse{}, err
	}

	org, err := o.OrganizationRepository.GetByID(ctx, organizationID)
	if err != nil {
		return organization.OrganizationResponse{}, err
	}

	location := organization.Location{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Radius:    org.FenceRadius(),
		Address:   req.Address,
	}
	if req.Radius != nil {
		location.Radius = *req.Radius
	}
	if location.Radius <= 0 {
		location.Radius = geo.DefaultRadiusMeters
	}

	updated, err := o.OrganizationRepository.UpdateLocation(ctx, organizationID, location)
	if err != nil {
		return organization.OrganizationResponse{}, fmt.Errorf("failed to update organization location: %w", err)
	}

	slog.Info("Organization location updated", "organization_id", organizationID, "radius", location.Radius)
	return organization.NewOrganizationResponse(updated), nil
}

// UpdateSettings implements organization.OrganizationService.
func (o *OrganizationServiceImpl) UpdateSettings(ctx context.Context, organizationID string, req organization.UpdateSettingsRequest) (organization.OrganizationResponse, error) {
	if err := req.Validate(); err != nil {
		return organization.OrganizationResponse{}, err
	}

	org, err := o.OrganizationRepository.GetByID(ctx, organizationID)
	if err != nil {
		return organization.OrganizationResponse{}, err
	}

	updated, err := o.OrganizationRepository.UpdateSettings(ctx, organizationID, req.Apply(org.Settings))
	if err != nil {
		return organization.OrganizationResponse{}, fmt.Errorf("failed to update organization settings: %w", err)
	}

	slog.Info("Organization settings updated", "organization_id", organizationID)
	return organization.NewOrganizationResponse(updated), nil
}
