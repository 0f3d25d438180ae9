package user

import "time"

// UserResponse represents user data in API responses
type UserResponse struct {
	ID               string    `json:"id"`
	OrganizationID   *string   `json:"organizationId,omitempty"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Role             Role      `json:"role"`
	DeviceRegistered bool      `json:"deviceRegistered"`
	CreatedAt        time.Time `json:"createdAt"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		OrganizationID:   u.OrganizationID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		DeviceRegistered: u.Device.IsRegistered || u.IsOrganizationAdmin(),
		CreatedAt:        u.CreatedAt,
	}
}
