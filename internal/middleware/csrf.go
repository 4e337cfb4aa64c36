package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/helpify/marketplace-api/internal/constants"
	apierrors "github.com/helpify/marketplace-api/internal/errors"
	"github.com/helpify/marketplace-api/internal/utils"
)

// CSRFHeader is the request header carrying the per-session CSRF token.
const CSRFHeader = "X-CSRF-Token"

// EnsureCSRFToken returns the session's CSRF token, minting one if the
// session does not hold one yet. Handlers call this when establishing a
// session so the client can echo the token on mutating requests.
func EnsureCSRFToken(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if token, ok := session.Get(constants.SessionKeyCSRF).(string); ok && token != "" {
		return token, nil
	}

	token, err := utils.GenerateToken(32)
	if err != nil {
		return "", err
	}
	session.Set(constants.SessionKeyCSRF, token)
	return token, nil
}

// RequireCSRF validates the CSRF header on state-changing requests using
// a constant-time comparison against the session token.
func RequireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		session := sessions.Default(c)
		expected, _ := session.Get(constants.SessionKeyCSRF).(string)
		provided := c.GetHeader(CSRFHeader)

		if expected == "" || provided == "" ||
			subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
			apierrors.Forbidden(c, "CSRF token missing or invalid")
			c.Abort()
			return
		}

		c.Next()
	}
}
