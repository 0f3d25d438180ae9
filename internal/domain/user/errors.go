package user

import "errors"

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrUserEmailExists          = errors.New("email already registered")
	ErrAdminPrivilegeRequired   = errors.New("organization admin privilege required")
	ErrInsufficientPermissions  = errors.New("insufficient permissions")
	ErrOrganizationIDRequired   = errors.New("organization ID is required")
	ErrUserOrganizationMismatch = errors.New("user belongs to another organization")
	ErrUpdatedAtBeforeCreatedAt = errors.New("updated_at cannot be before created_at")
)
