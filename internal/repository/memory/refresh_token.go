package memory

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/auth"
)

type refreshTokenRepositoryImpl struct {
	store *Store
}

func NewRefreshTokenRepository(store *Store) auth.RefreshTokenRepository {
	return &refreshTokenRepositoryImpl{store: store}
}

func hashToken(input string) string {
	hash := sha256.Sum256([]byte(input))
	return base64.StdEncoding.EncodeToString(hash[:])
}

func (r *refreshTokenRepositoryImpl) CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, sessionReq auth.SessionTrackingRequest) error {
	return r.store.write(ctx, func(t *tables) error {
		t.refreshTokens[hashToken(token)] = refreshToken{
			userID:    userID,
			expiresAt: time.Unix(expiresAt, 0).UTC(),
		}
		return nil
	})
}

func (r *refreshTokenRepositoryImpl) IsRefreshTokenRevoked(ctx context.Context, token string) (string, bool, error) {
	var (
		rt refreshToken
		ok bool
	)
	r.store.read(func(t *tables) {
		rt, ok = t.refreshTokens[hashToken(token)]
	})
	if !ok {
		return "", false, auth.ErrInvalidToken
	}
	revoked := rt.revokedAt != nil || !rt.expiresAt.After(r.store.now())
	return rt.userID, revoked, nil
}

func (r *refreshTokenRepositoryImpl) RevokeRefreshToken(ctx context.Context, token string) error {
	return r.store.write(ctx, func(t *tables) error {
		key := hashToken(token)
		rt, ok := t.refreshTokens[key]
		if !ok || rt.revokedAt != nil {
			return nil
		}
		now := r.store.now()
		rt.revokedAt = &now
		t.refreshTokens[key] = rt
		return nil
	})
}

func (r *refreshTokenRepositoryImpl) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(t *tables) error {
		for key, rt := range t.refreshTokens {
			if rt.expiresAt.Before(cutoff) {
				delete(t.refreshTokens, key)
				n++
			}
		}
		return nil
	})
	return n, err
}
