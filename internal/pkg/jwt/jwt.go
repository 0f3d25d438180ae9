package jwt

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeSSE     = "sse"

	sseTokenLifetime = 5 * time.Minute
)

// Identity is the caller identity carried in access and SSE tokens.
type Identity struct {
	UserID         string
	Email          string
	OrganizationID *string
	Role           user.Role
}

type Service interface {
	GenerateAccessToken(id Identity) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	GenerateSSEToken(id Identity) (token string, expiresIn int, err error)
	ValidateSSEToken(ctx context.Context, tokenString string) (Identity, error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	secretKey                  string
	accessTokenExpirationTime  string
	refreshTokenExpirationTime string
	secureCookie               bool
	tokenAuth                  *jwtauth.JWTAuth
	revokedTokens              map[string]int64
	mu                         sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string, refreshTokenExpirationTime string, secureCookie bool) Service {
	return &JWTService{
		secretKey:                  secretKey,
		accessTokenExpirationTime:  accessTokenExpirationTime,
		refreshTokenExpirationTime: refreshTokenExpirationTime,
		secureCookie:               secureCookie,
		tokenAuth:                  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:              make(map[string]int64),
	}
}

func (j *JWTService) GenerateAccessToken(id Identity) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := identityClaims(id)
	claims["type"] = TokenTypeAccess
	claims["exp"] = expiresAt

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateRefreshToken(userID string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.refreshTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"exp":     expiresAt,
		"type":    TokenTypeRefresh,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// GenerateSSEToken generates a short-lived token for EventSource clients, which cannot set headers.
func (j *JWTService) GenerateSSEToken(id Identity) (token string, expiresIn int, err error) {
	claims := identityClaims(id)
	claims["type"] = TokenTypeSSE
	claims["exp"] = time.Now().Add(sseTokenLifetime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenLifetime.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the identity it carries
func (j *JWTService) ValidateSSEToken(ctx context.Context, tokenString string) (Identity, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Identity{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return Identity{}, jwt.ErrInvalidJWT()
	}

	claims, err := token.AsMap(ctx)
	if err != nil {
		return Identity{}, jwt.ErrInvalidJWT()
	}

	id, ok := IdentityFromClaims(claims)
	if !ok {
		return Identity{}, jwt.ErrInvalidJWT()
	}
	return id, nil
}

// IdentityFromClaims reads the identity claims written by GenerateAccessToken.
func IdentityFromClaims(claims map[string]interface{}) (Identity, bool) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Identity{}, false
	}
	role, ok := claims["role"].(string)
	if !ok {
		return Identity{}, false
	}

	id := Identity{UserID: userID, Role: user.Role(role)}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if orgID, ok := claims["organization_id"].(string); ok && orgID != "" {
		id.OrganizationID = &orgID
	}
	return id, true
}

func identityClaims(id Identity) map[string]interface{} {
	claims := map[string]interface{}{
		"user_id": id.UserID,
		"email":   id.Email,
		"role":    string(id.Role),
	}
	if id.OrganizationID != nil {
		claims["organization_id"] = *id.OrganizationID
	} else {
		claims["organization_id"] = nil
	}
	return claims
}
