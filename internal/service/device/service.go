package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/device"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
)

type DeviceServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	organization.OrganizationRepository
	now func() time.Time
}

func NewDeviceService(tx database.Transactor, userRepository user.UserRepository, organizationRepository organization.OrganizationRepository) device.DeviceService {
	return &DeviceServiceImpl{
		tx:                     tx,
		UserRepository:         userRepository,
		OrganizationRepository: organizationRepository,
		now:                    time.Now,
	}
}

// registrationRequired reads the organization's RequireDeviceRegistration setting.
// Members without an organization fall back to the default.
func (d *DeviceServiceImpl) registrationRequired(ctx context.Context, u user.User) (bool, error) {
	if u.OrganizationID == nil {
		return organization.DefaultSettings().RequireDeviceRegistration, nil
	}
	org, err := d.OrganizationRepository.GetByID(ctx, *u.OrganizationID)
	if err != nil {
		return false, fmt.Errorf("failed to load device policy: %w", err)
	}
	return org.Settings.RequireDeviceRegistration, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// BindOnLogin implements device.DeviceService.
func (d *DeviceServiceImpl) BindOnLogin(ctx context.Context, u user.User, info device.Info) (user.User, error) {
	if !u.RequiresDeviceBinding() {
		return u, nil
	}
	required, err := d.registrationRequired(ctx, u)
	if err != nil {
		return user.User{}, err
	}
	if info.DeviceID == "" {
		if !required {
			return u, nil
		}
		return user.User{}, device.ErrDeviceIDRequired
	}

	if u.Device.IsRegistered {
		if u.Device.DeviceID == nil || *u.Device.DeviceID != info.DeviceID {
			if !required {
				return u, nil
			}
			slog.Warn("Login from unbound device rejected", "user_id", u.ID)
			return user.User{}, device.ErrDeviceMismatch
		}
		return u, nil
	}

	// First login: trust this device from now on.
	deviceType := info.DeviceType
	if deviceType == "" {
		deviceType = info.Platform
	}
	if deviceType == "" {
		deviceType = "unknown"
	}
	registeredAt := d.now()
	bound := user.Device{
		DeviceID:          &info.DeviceID,
		DeviceType:        &deviceType,
		Fingerprint:       optional(info.Fingerprint),
		IsRegistered:      true,
		RegisteredAt:      &registeredAt,
		LastKnownLocation: u.Device.LastKnownLocation,
	}
	if err := d.UserRepository.UpdateDevice(ctx, u.ID, bound); err != nil {
		return user.User{}, fmt.Errorf("failed to register device: %w", err)
	}

	slog.Info("Device registered on first login", "user_id", u.ID, "device_type", deviceType)
	u.Device = bound
	return u, nil
}

// Verify implements device.DeviceService.
func (d *DeviceServiceImpl) Verify(u user.User, deviceID string, requireRegistration bool) error {
	if !u.RequiresDeviceBinding() || !requireRegistration {
		return nil
	}
	if !u.Device.IsRegistered {
		return device.ErrDeviceNotRegistered
	}
	if deviceID == "" || u.Device.DeviceID == nil || *u.Device.DeviceID != deviceID {
		return device.ErrDeviceMismatch
	}
	return nil
}

// SubmitRequest implements device.DeviceService.
func (d *DeviceServiceImpl) SubmitRequest(ctx context.Context, userID string, req device.SubmitChangeRequest) (device.ChangeRequestStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return device.ChangeRequestStatusResponse{}, err
	}

	var resp device.ChangeRequestStatusResponse
	err := d.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := d.UserRepository.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if !u.RequiresDeviceBinding() {
			return device.ErrNotApplicable
		}
		if u.HasPendingChangeRequest() {
			return device.ErrChangeRequestPending
		}

		requestedAt := d.now()
		deviceType := req.NewDeviceType
		if deviceType == "" {
			deviceType = "unknown"
		}
		changeReq := user.DeviceChangeRequest{
			NewDeviceID:    &req.NewDeviceID,
			NewDeviceType:  &deviceType,
			NewFingerprint: optional(req.NewFingerprint),
			RequestedAt:    &requestedAt,
			Status:         user.ChangeRequestPending,
		}
		if err := d.UserRepository.UpdateDeviceChangeRequest(ctx, u.ID, changeReq); err != nil {
			return fmt.Errorf("failed to save device change request: %w", err)
		}

		resp = device.ChangeRequestStatusResponse{
			UserID:      u.ID,
			Status:      user.ChangeRequestPending,
			NewDeviceID: changeReq.NewDeviceID,
			RequestedAt: changeReq.RequestedAt,
		}
		return nil
	})
	if err != nil {
		return device.ChangeRequestStatusResponse{}, err
	}

	slog.Info("Device change requested", "user_id", userID)
	return resp, nil
}

// ResolveRequest implements device.DeviceService.
func (d *DeviceServiceImpl) ResolveRequest(ctx context.Context, adminID, organizationID string, req device.ResolveChangeRequest) (device.ChangeRequestStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return device.ChangeRequestStatusResponse{}, err
	}

	var resp device.ChangeRequestStatusResponse
	err := d.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := d.UserRepository.GetByIDForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}
		if !u.BelongsTo(organizationID) {
			return user.ErrUserOrganizationMismatch
		}
		if !u.HasPendingChangeRequest() {
			return device.ErrNoPendingChangeRequest
		}

		respondedAt := d.now()
		changeReq := u.DeviceChangeRequest
		changeReq.AdminResponse = &user.AdminResponse{
			AdminID:     adminID,
			RespondedAt: respondedAt,
			Reason:      optional(req.Reason),
		}

		switch req.Action {
		case device.ActionApprove:
			changeReq.Status = user.ChangeRequestApproved
			bound := user.Device{
				DeviceID:          changeReq.NewDeviceID,
				DeviceType:        changeReq.NewDeviceType,
				Fingerprint:       changeReq.NewFingerprint,
				IsRegistered:      true,
				RegisteredAt:      &respondedAt,
				LastKnownLocation: u.Device.LastKnownLocation,
			}
			if err := d.UserRepository.UpdateDevice(ctx, u.ID, bound); err != nil {
				return fmt.Errorf("failed to swap bound device: %w", err)
			}
		case device.ActionReject:
			changeReq.Status = user.ChangeRequestRejected
		default:
			return device.ErrInvalidAction
		}

		if err := d.UserRepository.UpdateDeviceChangeRequest(ctx, u.ID, changeReq); err != nil {
			return fmt.Errorf("failed to update device change request: %w", err)
		}

		resp = device.ChangeRequestStatusResponse{
			UserID:      u.ID,
			Status:      changeReq.Status,
			RequestedAt: changeReq.RequestedAt,
			RespondedAt: &respondedAt,
		}
		if changeReq.Status == user.ChangeRequestApproved {
			resp.NewDeviceID = changeReq.NewDeviceID
		}
		return nil
	})
	if err != nil {
		return device.ChangeRequestStatusResponse{}, err
	}

	slog.Info("Device change request resolved", "user_id", req.UserID, "admin_id", adminID, "status", resp.Status)
	return resp, nil
}

// ListPending implements device.DeviceService.
func (d *DeviceServiceImpl) ListPending(ctx context.Context, organizationID string) ([]device.PendingChangeRequest, error) {
	users, err := d.UserRepository.ListPendingChangeRequests(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending device change requests: %w", err)
	}

	requests := make([]device.PendingChangeRequest, 0, len(users))
	for _, u := range users {
		requests = append(requests, device.PendingChangeRequest{
			UserID:        u.ID,
			UserName:      u.Name,
			UserEmail:     u.Email,
			CurrentDevice: u.Device.DeviceID,
			NewDeviceID:   u.DeviceChangeRequest.NewDeviceID,
			NewDeviceType: u.DeviceChangeRequest.NewDeviceType,
			RequestedAt:   u.DeviceChangeRequest.RequestedAt,
		})
	}
	return requests, nil
}
