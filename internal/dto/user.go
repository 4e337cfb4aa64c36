package dto

import (
	"time"

	"github.com/helpify/marketplace-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64          `json:"id"`
	Fullname  string          `json:"fullname"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	LastLogin *time.Time      `json:"last_login,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Fullname:  user.Fullname,
		Email:     user.Email,
		Role:      user.Role,
		LastLogin: user.LastLogin,
	}
}

// SessionDTO is returned when a session is established; the CSRF token
// must be echoed on subsequent mutating requests.
type SessionDTO struct {
	User      UserDTO `json:"user"`
	CSRFToken string  `json:"csrf_token"`
}
