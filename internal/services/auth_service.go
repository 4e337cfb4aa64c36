package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/helpify/marketplace-api/internal/constants"
	"github.com/helpify/marketplace-api/internal/models"
	"github.com/helpify/marketplace-api/internal/repository"
	"github.com/helpify/marketplace-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrRateLimited          = errors.New("too many failed login attempts, try again later")
	ErrAccountDisabled      = errors.New("account is deactivated")
	ErrUserNotFound         = errors.New("user not found")
	ErrResetTokenInvalid    = errors.New("reset token is invalid or expired")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService handles registration, login throttling, remember tokens,
// and password resets.
type AuthService struct {
	userRepo repository.UserRepository
	authRepo repository.AuthRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, authRepo repository.AuthRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		authRepo: authRepo,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Fullname        string
	Email           string
	Password        string
	PasswordConfirm string
	Role            models.UserRole
	AcceptTerms     bool
}

// Register creates a new user with a bcrypt-hashed password.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	fullname := strings.TrimSpace(input.Fullname)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	verr := newValidationError()
	if len(fullname) < constants.MinFullnameLength {
		verr.add("fullname", fmt.Sprintf("fullname must be at least %d characters", constants.MinFullnameLength))
	}
	if !emailPattern.MatchString(email) {
		verr.add("email", "email address is malformed")
	}
	if len(input.Password) < constants.MinPasswordLength {
		verr.add("password", fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	}
	if input.Password != input.PasswordConfirm {
		verr.add("password_confirm", "passwords do not match")
	}
	if input.Role != models.RoleClient && input.Role != models.RoleHelper {
		verr.add("role", "role must be client or helper")
	}
	if !input.AcceptTerms {
		verr.add("terms", "terms must be accepted")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Fullname:     fullname,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
	IP       string
	Remember bool
}

// Login verifies credentials under the failed-attempt throttle. On
// success it clears recorded failures, stamps last_login, and, when
// requested, issues a remember token. The returned token is empty unless
// Remember was set.
func (s *AuthService) Login(input LoginInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	windowStart := time.Now().Add(-constants.LoginAttemptWindow)

	count, err := s.authRepo.FailedAttemptsSince(email, input.IP, windowStart)
	if err != nil {
		return nil, "", fmt.Errorf("failed to count login attempts: %w", err)
	}
	if count >= constants.MaxLoginAttempts {
		return nil, "", ErrRateLimited
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same failure path as a wrong password so the response does
			// not disclose whether the email exists.
			return nil, "", s.recordFailure(email, input.IP, windowStart)
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", s.recordFailure(email, input.IP, windowStart)
	}

	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	if err := s.authRepo.ClearAttempts(email); err != nil {
		return nil, "", fmt.Errorf("failed to clear login attempts: %w", err)
	}

	now := time.Now()
	if err := s.userRepo.RecordLogin(user.ID, now); err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now

	var rememberToken string
	if input.Remember {
		rememberToken, err = utils.GenerateToken(constants.RememberTokenBytes)
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate remember token: %w", err)
		}
		rt := &models.RememberToken{
			UserID:    user.ID,
			Token:     rememberToken,
			ExpiresAt: now.Add(constants.RememberTokenTTL),
		}
		if err := s.authRepo.CreateRememberToken(rt); err != nil {
			return nil, "", fmt.Errorf("failed to store remember token: %w", err)
		}
	}

	return user, rememberToken, nil
}

func (s *AuthService) recordFailure(email, ip string, windowStart time.Time) error {
	count, err := s.authRepo.RecordFailure(email, ip, time.Now(), windowStart)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	// The pre-check already allowed this attempt; only a concurrent burst
	// can push the count past the limit here.
	if count > constants.MaxLoginAttempts {
		return ErrRateLimited
	}
	return ErrInvalidCredentials
}

// ResumeFromRememberToken re-establishes identity from a remember-me
// cookie. An unknown or expired token is not an error; the caller simply
// stays unauthenticated.
func (s *AuthService) ResumeFromRememberToken(token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	rt, err := s.authRepo.FindRememberToken(token, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up remember token: %w", err)
	}

	user, err := s.userRepo.FindByID(rt.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, nil
	}

	return user, nil
}

// Logout deletes the user's remember tokens server-side; clearing the
// cookie alone would leave a valid credential in the database.
func (s *AuthService) Logout(userID uint64, rememberToken string) error {
	if rememberToken != "" {
		if err := s.authRepo.DeleteRememberToken(rememberToken); err != nil {
			return fmt.Errorf("failed to delete remember token: %w", err)
		}
		return nil
	}
	if userID == 0 {
		return nil
	}
	if err := s.authRepo.DeleteRememberTokensForUser(userID); err != nil {
		return fmt.Errorf("failed to delete remember tokens: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a single-use reset token with a one-hour
// expiry. An unknown email yields an empty token and no error, so the
// endpoint cannot be used to probe registered addresses.
func (s *AuthService) RequestPasswordReset(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	token, err := utils.GenerateToken(constants.ResetTokenBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := s.userRepo.SetResetToken(user.ID, token, time.Now().Add(constants.ResetTokenTTL)); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// ResetPassword consumes a reset token and replaces the password. All of
// the user's remember tokens are revoked in the process.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		verr := newValidationError()
		verr.add("password", fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
		return verr
	}

	user, err := s.userRepo.FindByResetToken(token, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.userRepo.UpdatePassword(user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.authRepo.DeleteRememberTokensForUser(user.ID); err != nil {
		return fmt.Errorf("failed to revoke remember tokens: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
