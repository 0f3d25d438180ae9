package organization

import (
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/validator"
)

type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    *float64 `json:"radius,omitempty"`
	Address   string   `json:"address"`
}

func (r *UpdateLocationRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude == nil {
		errs.Add("latitude", "latitude is required")
	}
	if r.Longitude == nil {
		errs.Add("longitude", "longitude is required")
	}
	if r.Latitude != nil && r.Longitude != nil && !geo.IsValidCoordinate(geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}) {
		errs.Add("latitude", "coordinates must be within -90..90 latitude and -180..180 longitude")
	}
	if r.Radius != nil && (*r.Radius <= 0 || *r.Radius > 10000) {
		errs.Add("radius", "radius must be between 1 and 10000 meters")
	}
	if len(r.Address) > 500 {
		errs.Add("address", "address must not exceed 500 characters")
	}

	return errs.Err()
}

type UpdateSettingsRequest struct {
	Timezone                   *string `json:"timezone,omitempty"`
	QRCodeValidityMinutes      *int    `json:"qrCodeValidityMinutes,omitempty"`
	RequireDeviceRegistration  *bool   `json:"requireDeviceRegistration,omitempty"`
	StrictLocationVerification *bool   `json:"strictLocationVerification,omitempty"`
	RequiredWorkingMinutes     *int    `json:"requiredWorkingMinutes,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Timezone != nil && !validator.IsValidTimezone(*r.Timezone) {
		errs.Add("timezone", "timezone must be a valid IANA timezone, e.g. Asia/Kolkata")
	}
	if r.QRCodeValidityMinutes != nil && (*r.QRCodeValidityMinutes < 1 || *r.QRCodeValidityMinutes > 1440) {
		errs.Add("qrCodeValidityMinutes", "qrCodeValidityMinutes must be between 1 and 1440")
	}
	if r.RequiredWorkingMinutes != nil && (*r.RequiredWorkingMinutes < 1 || *r.RequiredWorkingMinutes > 1440) {
		errs.Add("requiredWorkingMinutes", "requiredWorkingMinutes must be between 1 and 1440")
	}

	return errs.Err()
}

// Apply overlays the non-nil fields of the request onto s.
func (r *UpdateSettingsRequest) Apply(s Settings) Settings {
	if r.Timezone != nil {
		s.Timezone = *r.Timezone
	}
	if r.QRCodeValidityMinutes != nil {
		s.QRCodeValidityMinutes = *r.QRCodeValidityMinutes
	}
	if r.RequireDeviceRegistration != nil {
		s.RequireDeviceRegistration = *r.RequireDeviceRegistration
	}
	if r.StrictLocationVerification != nil {
		s.StrictLocationVerification = *r.StrictLocationVerification
	}
	if r.RequiredWorkingMinutes != nil {
		s.RequiredWorkingMinutes = *r.RequiredWorkingMinutes
	}
	return s
}

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
	Address   string  `json:"address"`
}

type SettingsResponse struct {
	Timezone                   string `json:"timezone"`
	QRCodeValidityMinutes      int    `json:"qrCodeValidityMinutes"`
	RequireDeviceRegistration  bool   `json:"requireDeviceRegistration"`
	StrictLocationVerification bool   `json:"strictLocationVerification"`
	RequiredWorkingMinutes     int    `json:"requiredWorkingMinutes"`
}

type OrganizationResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Location         LocationResponse `json:"location"`
	Settings         SettingsResponse `json:"settings"`
	CheckInQRCodeID  *string          `json:"checkInQrCodeId"`
	CheckOutQRCodeID *string          `json:"checkOutQrCodeId"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func NewOrganizationResponse(o Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:   o.ID,
		Name: o.Name,
		Location: LocationResponse{
			Latitude:  o.Location.Latitude,
			Longitude: o.Location.Longitude,
			Radius:    o.FenceRadius(),
			Address:   o.Location.Address,
		},
		Settings: SettingsResponse{
			Timezone:                   o.Settings.Timezone,
			QRCodeValidityMinutes:      o.ValidityMinutes(),
			RequireDeviceRegistration:  o.Settings.RequireDeviceRegistration,
			StrictLocationVerification: o.Settings.StrictLocationVerification,
			RequiredWorkingMinutes:     o.RequiredWorkingMinutes(),
		},
		CheckInQRCodeID:  o.CheckInQRCodeID,
		CheckOutQRCodeID: o.CheckOutQRCodeID,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
