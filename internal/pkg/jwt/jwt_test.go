package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() Service {
	return NewJWTService("test-secret-key-with-enough-length", "15m", "720h", false)
}

func TestGenerateAccessToken_CarriesIdentity(t *testing.T) {
	svc := newTestService()
	orgID := "0192f5a4-7c1e-7b4a-8a2b-6b8b8b8b8b8b"

	token, expiresAt, err := svc.GenerateAccessToken(Identity{
		UserID:         "0192f5a4-7c1e-7b4a-8a2b-000000000001",
		Email:          "member@example.com",
		OrganizationID: &orgID,
		Role:           user.RoleUser,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Positive(t, expiresAt)

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := parsed.AsMap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, TokenTypeAccess, claims["type"])
	id, ok := IdentityFromClaims(claims)
	require.True(t, ok)
	assert.Equal(t, "member@example.com", id.Email)
	assert.Equal(t, user.RoleUser, id.Role)
	require.NotNil(t, id.OrganizationID)
	assert.Equal(t, orgID, *id.OrganizationID)
}

func TestGenerateAccessToken_InvalidDuration(t *testing.T) {
	svc := NewJWTService("secret", "not-a-duration", "720h", false)
	_, _, err := svc.GenerateAccessToken(Identity{UserID: "u", Role: user.RoleUser})
	assert.Error(t, err)
}

func TestSSEToken_RoundTrip(t *testing.T) {
	svc := newTestService()
	orgID := "org-1"

	token, expiresIn, err := svc.GenerateSSEToken(Identity{UserID: "admin-1", OrganizationID: &orgID, Role: user.RoleOrganization})
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	id, err := svc.ValidateSSEToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", id.UserID)
	assert.Equal(t, user.RoleOrganization, id.Role)
	require.NotNil(t, id.OrganizationID)
	assert.Equal(t, "org-1", *id.OrganizationID)
}

func TestValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc := newTestService()
	token, _, err := svc.GenerateAccessToken(Identity{UserID: "u", Role: user.RoleUser})
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(context.Background(), token)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc := newTestService()
	assert.False(t, svc.IsTokenRevoked("abc"))
	svc.RevokeToken("abc")
	assert.True(t, svc.IsTokenRevoked("abc"))
}

func TestIdentityFromClaims_MissingUser(t *testing.T) {
	_, ok := IdentityFromClaims(map[string]interface{}{"role": "user"})
	assert.False(t, ok)
}
