package memory

import (
	"context"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
)

type organizationRepositoryImpl struct {
	store *Store
}

func NewOrganizationRepository(store *Store) organization.OrganizationRepository {
	return &organizationRepositoryImpl{store: store}
}

func (r *organizationRepositoryImpl) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	if org.ID == "" {
		id, err := newID()
		if err != nil {
			return organization.Organization{}, err
		}
		org.ID = id
	}
	now := r.store.now()
	org.CreatedAt, org.UpdatedAt = now, now

	err := r.store.write(ctx, func(t *tables) error {
		t.organizations[org.ID] = org
		return nil
	})
	return org, err
}

func (r *organizationRepositoryImpl) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	var (
		org   organization.Organization
		found bool
	)
	r.store.read(func(t *tables) {
		org, found = t.organizations[id]
	})
	if !found {
		return organization.Organization{}, organization.ErrOrganizationNotFound
	}
	return org, nil
}

func (r *organizationRepositoryImpl) update(ctx context.Context, id string, fn func(o *organization.Organization)) (organization.Organization, error) {
	var org organization.Organization
	err := r.store.write(ctx, func(t *tables) error {
		existing, ok := t.organizations[id]
		if !ok {
			return organization.ErrOrganizationNotFound
		}
		fn(&existing)
		existing.UpdatedAt = r.store.now()
		t.organizations[id] = existing
		org = existing
		return nil
	})
	return org, err
}

func (r *organizationRepositoryImpl) UpdateLocation(ctx context.Context, id string, location organization.Location) (organization.Organization, error) {
	return r.update(ctx, id, func(o *organization.Organization) {
		o.Location = location
	})
}

func (r *organizationRepositoryImpl) UpdateSettings(ctx context.Context, id string, settings organization.Settings) (organization.Organization, error) {
	return r.update(ctx, id, func(o *organization.Organization) {
		o.Settings = settings
	})
}

func (r *organizationRepositoryImpl) SetCurrentQRCode(ctx context.Context, id string, qrType qrcode.Type, qrCodeID string) error {
	_, err := r.update(ctx, id, func(o *organization.Organization) {
		if qrType == qrcode.TypeCheckIn {
			o.CheckInQRCodeID = &qrCodeID
		} else {
			o.CheckOutQRCodeID = &qrCodeID
		}
	})
	return err
}
