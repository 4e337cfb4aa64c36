package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/helpify/marketplace-api/internal/constants"
	"github.com/helpify/marketplace-api/internal/dto"
	apierrors "github.com/helpify/marketplace-api/internal/errors"
	"github.com/helpify/marketplace-api/internal/middleware"
	"github.com/helpify/marketplace-api/internal/models"
	"github.com/helpify/marketplace-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// establishSession binds the user to the session and mints the CSRF token.
func establishSession(c *gin.Context, user *models.User) (dto.SessionDTO, error) {
	session := sessions.Default(c)
	// Drop any previous identity before binding the new one.
	session.Clear()
	session.Set(constants.ContextKeyUserID, user.ID)
	session.Set(constants.ContextKeyUserRole, string(user.Role))

	csrfToken, err := middleware.EnsureCSRFToken(c)
	if err != nil {
		return dto.SessionDTO{}, err
	}

	if err := session.Save(); err != nil {
		return dto.SessionDTO{}, err
	}

	return dto.SessionDTO{
		User:      dto.ToUserDTO(*user),
		CSRFToken: csrfToken,
	}, nil
}

// Register creates a new account and establishes a session.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Fullname        string `json:"fullname" binding:"required"`
		Email           string `json:"email" binding:"required"`
		Password        string `json:"password" binding:"required"`
		PasswordConfirm string `json:"password_confirm" binding:"required"`
		Role            string `json:"role" binding:"required"`
		AcceptTerms     bool   `json:"accept_terms"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Fullname:        req.Fullname,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Role:            models.UserRole(req.Role),
		AcceptTerms:     req.AcceptTerms,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	sessionDTO, err := establishSession(c, user)
	if err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusCreated, sessionDTO)
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Remember bool   `json:"remember"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, rememberToken, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
		Remember: req.Remember,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	sessionDTO, err := establishSession(c, user)
	if err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	if rememberToken != "" {
		secure := gin.Mode() == gin.ReleaseMode
		c.SetCookie(middleware.RememberCookieName, rememberToken,
			int(constants.RememberTokenTTL.Seconds()), "/", "", secure, true)
	}

	c.JSON(http.StatusOK, sessionDTO)
}

// Logout removes the session and revokes the remember token server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	rememberToken, _ := c.Cookie(middleware.RememberCookieName)

	if err := h.authService.Logout(userID, rememberToken); err != nil {
		log.Printf("logout: %v", err)
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	secure := gin.Mode() == gin.ReleaseMode
	c.SetCookie(middleware.RememberCookieName, "", -1, "/", "", secure, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user along with the session's
// CSRF token, so a session resumed from the remember cookie can reach
// the mutating endpoints again.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	csrfToken, err := middleware.EnsureCSRFToken(c)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	session := sessions.Default(c)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.SessionDTO{
		User:      dto.ToUserDTO(*user),
		CSRFToken: csrfToken,
	})
}

// RequestPasswordReset issues a reset token. The response is identical
// whether or not the email is registered.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	type ResetRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	token, err := h.authService.RequestPasswordReset(req.Email)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	response := gin.H{
		"message": "If that email is registered, a reset link has been sent",
	}
	// Token delivery (email) is out of scope; expose it outside release
	// mode so the flow stays testable end to end.
	if token != "" && gin.Mode() != gin.ReleaseMode {
		response["reset_token"] = token
	}

	c.JSON(http.StatusOK, response)
}

// ResetPassword consumes a reset token and sets a new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetConfirmRequest struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.Password); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated successfully",
	})
}

func respondAuthError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		apierrors.ValidationFailed(c, "Validation failed", verr.Violations)
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrRateLimited):
		apierrors.TooManyRequests(c, err.Error())
	case errors.Is(err, services.ErrAccountDisabled):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrResetTokenInvalid):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		log.Printf("auth handler: %v", err)
		apierrors.InternalError(c, "")
	}
}
