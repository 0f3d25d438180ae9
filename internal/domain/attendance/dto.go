package attendance

import (
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/validator"
)

type ScanLocation struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

type ScanDeviceInfo struct {
	DeviceID                 string `json:"deviceId"`
	Platform                 string `json:"platform,omitempty"`
	Fingerprint              string `json:"fingerprint,omitempty"`
	MockLocationEnabled      bool   `json:"mockLocationEnabled,omitempty"`
	DeveloperSettingsEnabled bool   `json:"developmentSettingsEnabled,omitempty"`
	IsFromMockProvider       bool   `json:"isFromMockProvider,omitempty"`
}

type ScanRequest struct {
	UserID         string `json:"-"`
	OrganizationID string `json:"-"`
	UserAgent      string `json:"-"`
	IPAddress      string `json:"-"`

	Code       string         `json:"code"`
	Type       qrcode.Type    `json:"type,omitempty"`
	Location   *ScanLocation  `json:"location"`
	DeviceInfo ScanDeviceInfo `json:"deviceInfo"`
}

// Validate checks presence and ranges only. An unknown type is not an error: the token
// lookup falls back to the code alone.
func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Code) {
		errs.Add("code", "code is required")
	} else if len(r.Code) > 255 {
		errs.Add("code", "code must not exceed 255 characters")
	}

	if r.Location == nil || r.Location.Latitude == nil || r.Location.Longitude == nil {
		errs.Add("location", "current location with latitude and longitude is required")
	} else if !geo.IsValidCoordinate(r.Point()) {
		errs.Add("location", "latitude must be between -90 and 90 and longitude between -180 and 180")
	}

	if validator.IsEmpty(r.UserID) {
		errs.Add("userId", "userId is required")
	}
	if validator.IsEmpty(r.OrganizationID) {
		errs.Add("organizationId", "organizationId is required")
	}

	return errs.Err()
}

// Point returns the reported coordinate. Call only after Validate.
func (r *ScanRequest) Point() geo.Point {
	return geo.Point{Latitude: *r.Location.Latitude, Longitude: *r.Location.Longitude}
}

type DailySummary struct {
	TotalMinutes int              `json:"totalMinutes"`
	Status       timesheet.Status `json:"status"`
	SessionCount int              `json:"sessionCount"`
}

func NewDailySummary(sheet timesheet.DailyTimesheet) DailySummary {
	status := sheet.Status
	if status == "" {
		status = timesheet.StatusAbsent
	}
	return DailySummary{
		TotalMinutes: sheet.TotalWorkingMinutes,
		Status:       status,
		SessionCount: len(sheet.Sessions),
	}
}

type ScanResponse struct {
	Accepted          bool          `json:"accepted"`
	ErrorCode         Code          `json:"errorCode,omitempty"`
	Message           string        `json:"message"`
	AttendanceEventID *string       `json:"attendanceEventId,omitempty"`
	Type              qrcode.Type   `json:"type,omitempty"`
	Timestamp         *time.Time    `json:"timestamp,omitempty"`
	Verified          *bool         `json:"verified,omitempty"`
	DistanceMeters    *float64      `json:"distanceMeters,omitempty"`
	AllowedRadius     *float64      `json:"allowedRadius,omitempty"`
	DailySummary      *DailySummary `json:"dailySummary,omitempty"`
}

// NewRejectedScanResponse renders a rejection in the same shape as an accepted scan.
func NewRejectedScanResponse(e *ScanError) ScanResponse {
	resp := ScanResponse{
		Accepted:     false,
		ErrorCode:    e.Code,
		Message:      e.Err.Error(),
		DailySummary: e.DailySummary,
	}
	if d, ok := e.Details["distance_meters"].(float64); ok {
		resp.DistanceMeters = &d
	}
	if r, ok := e.Details["allowed_radius"].(float64); ok {
		resp.AllowedRadius = &r
	}
	return resp
}

type HistoryFilter struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 50 // Default limit
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	return errs.Err()
}

type EventResponse struct {
	ID             string              `json:"id"`
	OrganizationID string              `json:"organizationId"`
	QRCodeID       string              `json:"qrCodeId"`
	Type           qrcode.Type         `json:"type"`
	Timestamp      time.Time           `json:"timestamp"`
	LocalTime      string              `json:"localTime"`
	Location       Location            `json:"location"`
	Device         DeviceMetadata      `json:"device"`
	Verified       bool                `json:"verified"`
	Verification   VerificationDetails `json:"verification"`
}

func NewEventResponse(e Event, loc *time.Location) EventResponse {
	return EventResponse{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		QRCodeID:       e.QRCodeID,
		Type:           e.Type,
		Timestamp:      e.Timestamp,
		LocalTime:      e.Timestamp.In(loc).Format("2006-01-02 15:04:05"),
		Location:       e.Location,
		Device:         e.Device,
		Verified:       e.Verified,
		Verification:   e.Verification,
	}
}

type HistoryResponse struct {
	TotalCount int64           `json:"totalCount"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
	HasNext    bool            `json:"hasNext"`
	Events     []EventResponse `json:"events"`
}

type StatusResponse struct {
	WorkDate     string       `json:"workDate"`
	Timezone     string       `json:"timezone"`
	Session      SessionState `json:"session"`
	CanCheckIn   bool         `json:"canCheckIn"`
	CanCheckOut  bool         `json:"canCheckOut"`
	DailySummary DailySummary `json:"dailySummary"`
}
