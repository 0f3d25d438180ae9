package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// HeaderDeviceID is read when a request body omits the device identifier.
const HeaderDeviceID = "X-Device-ID"

// identityFromRequest reads the caller from the verified access token.
func identityFromRequest(r *http.Request) (jwt.Identity, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return jwt.Identity{}, false
	}
	return jwt.IdentityFromClaims(claims)
}

// organizationOf returns the caller's organization ID, or "" when none is set.
func organizationOf(id jwt.Identity) string {
	if id.OrganizationID == nil {
		return ""
	}
	return *id.OrganizationID
}

// getIntQueryParam gets an integer query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
