package models

import "time"

// LoginAttempt is an append-only record of a failed login, kept for
// rate limiting. Rows for an email are cleared on successful login.
type LoginAttempt struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Email       string    `gorm:"type:varchar(255);not null;index" json:"email"`
	IPAddress   string    `gorm:"type:varchar(45);not null;index" json:"ip_address"`
	AttemptedAt time.Time `gorm:"not null;index" json:"attempted_at"`
}
