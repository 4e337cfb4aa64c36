package middleware

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/helpify/marketplace-api/internal/constants"
	"github.com/helpify/marketplace-api/internal/services"
)

// RememberCookieName is the cookie carrying the long-lived remember-me token.
const RememberCookieName = "helpify_remember"

// SessionResume rebuilds an expired session from the remember-me cookie.
// It never rejects the request; RequireAuth downstream decides whether
// authentication is mandatory.
func SessionResume(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(constants.ContextKeyUserID) != nil {
			c.Next()
			return
		}

		token, err := c.Cookie(RememberCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := authService.ResumeFromRememberToken(token)
		if err != nil {
			log.Printf("session resume failed: %v", err)
			c.Next()
			return
		}
		if user == nil {
			c.Next()
			return
		}

		session.Set(constants.ContextKeyUserID, user.ID)
		session.Set(constants.ContextKeyUserRole, string(user.Role))
		// Mint the CSRF token now so the resumed session can pass
		// RequireCSRF; the client picks it up from /api/auth/me.
		if _, err := EnsureCSRFToken(c); err != nil {
			log.Printf("session resume csrf mint failed: %v", err)
			c.Next()
			return
		}
		if err := session.Save(); err != nil {
			log.Printf("session resume save failed: %v", err)
		}

		c.Next()
	}
}
