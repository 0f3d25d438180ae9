package auth

import (
	"context"
)

type AuthService interface {
	// Login checks credentials and binds the device for members on first login.
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}
