package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"bookingform/internal/pkg/response"
)

// InternalTokenAuth protects operator endpoints using a static bearer token.
// An empty expected token closes the endpoints entirely.
func InternalTokenAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			logAuthFailure(c, http.StatusForbidden, "token_not_configured")
			response.Abort(c, http.StatusForbidden, "AUTH_INVALID", "Internal endpoints are disabled")
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logAuthFailure(c, http.StatusUnauthorized, "missing_auth")
			response.Abort(c, http.StatusUnauthorized, "AUTH_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logAuthFailure(c, http.StatusUnauthorized, "invalid_auth_format")
			response.Abort(c, http.StatusUnauthorized, "AUTH_INVALID", "Authorization header must be 'Bearer <token>'")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expected)) != 1 {
			logAuthFailure(c, http.StatusForbidden, "invalid_token")
			response.Abort(c, http.StatusForbidden, "AUTH_INVALID", "Invalid internal token")
			return
		}

		c.Next()
	}
}

func logAuthFailure(c *gin.Context, status int, reason string) {
	log.WithFields(log.Fields{
		"status":     status,
		"request_id": c.GetString(requestIDKey),
		"reason":     reason,
	}).Warn("internal_auth")
}
