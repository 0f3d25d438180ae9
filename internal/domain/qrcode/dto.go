package qrcode

import (
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/validator"
)

type IssueRequest struct {
	Type Type `json:"type"`
	// ValidityMinutes overrides the organization's setting when positive.
	ValidityMinutes int `json:"validityMinutes,omitempty"`
}

func (r *IssueRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(string(r.Type)) {
		errs.Add("type", "type is required")
	} else if !r.Type.IsValid() {
		errs.Add("type", "type must be one of: check-in, check-out")
	}
	if r.ValidityMinutes < 0 || r.ValidityMinutes > 1440 {
		errs.Add("validityMinutes", "validityMinutes must be between 0 (organization default) and 1440")
	}

	return errs.Err()
}

type IssueResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Type       Type      `json:"type"`
	IssuedAt   time.Time `json:"issuedAt"`
	ValidUntil time.Time `json:"validUntil"`
}

type ActiveResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Type       Type      `json:"type"`
	IssuedAt   time.Time `json:"issuedAt"`
	ValidUntil time.Time `json:"validUntil"`
	IsValid    bool      `json:"isValid"`
	UsageCount int64     `json:"usageCount"`
}
