package organization

import (
	"time"
	_ "time/tzdata" // embedded zoneinfo

	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/geo"
)

const (
	DefaultTimezone               = "Asia/Kolkata"
	DefaultQRCodeValidityMinutes  = 30
	DefaultRequiredWorkingMinutes = 480
)

type Location struct {
	Latitude  float64
	Longitude float64
	Radius    float64 // meters
	Address   string
}

type Settings struct {
	Timezone                   string
	QRCodeValidityMinutes      int
	RequireDeviceRegistration  bool
	StrictLocationVerification bool
	RequiredWorkingMinutes     int
}

type Organization struct {
	ID               string
	Name             string
	Location         Location
	Settings         Settings
	CheckInQRCodeID  *string
	CheckOutQRCodeID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func DefaultSettings() Settings {
	return Settings{
		Timezone:                   DefaultTimezone,
		QRCodeValidityMinutes:      DefaultQRCodeValidityMinutes,
		RequireDeviceRegistration:  true,
		StrictLocationVerification: true,
		RequiredWorkingMinutes:     DefaultRequiredWorkingMinutes,
	}
}

// Center returns the registered premises coordinate.
func (o *Organization) Center() geo.Point {
	return geo.Point{Latitude: o.Location.Latitude, Longitude: o.Location.Longitude}
}

// FenceRadius returns the geofence radius, falling back to the default when unset.
func (o *Organization) FenceRadius() float64 {
	if o.Location.Radius <= 0 {
		return geo.DefaultRadiusMeters
	}
	return o.Location.Radius
}

func (o *Organization) ValidityMinutes() int {
	if o.Settings.QRCodeValidityMinutes <= 0 {
		return DefaultQRCodeValidityMinutes
	}
	return o.Settings.QRCodeValidityMinutes
}

func (o *Organization) RequiredWorkingMinutes() int {
	if o.Settings.RequiredWorkingMinutes <= 0 {
		return DefaultRequiredWorkingMinutes
	}
	return o.Settings.RequiredWorkingMinutes
}

// TimeLocation loads the organization's timezone. Calendar days for sessions and
// timesheets are computed in this zone.
func (o *Organization) TimeLocation() (*time.Location, error) {
	tz := o.Settings.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, ErrInvalidTimezone
	}
	return loc, nil
}
