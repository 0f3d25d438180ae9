package organization

import "errors"

var (
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrOrganizationRequired  = errors.New("user is not assigned to an organization")
	ErrInvalidTimezone       = errors.New("invalid organization timezone")
	ErrLocationNotConfigured = errors.New("organization location is not configured")
)
