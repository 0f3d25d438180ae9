package auth

import (
	"context"
	"time"
)

// RefreshTokenRepository persists issued refresh tokens by hash so they can be revoked.
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, sessionReq SessionTrackingRequest) error

	// IsRefreshTokenRevoked reports the owner of the token and whether it is revoked or expired.
	IsRefreshTokenRevoked(ctx context.Context, token string) (userID string, revoked bool, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
