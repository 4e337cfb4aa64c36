package repository

import (
	"time"

	"github.com/helpify/marketplace-api/internal/models"
	"gorm.io/gorm"
)

// GormAuthRepository is a GORM implementation of AuthRepository
type GormAuthRepository struct {
	db *gorm.DB
}

// NewAuthRepository creates a new AuthRepository
func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &GormAuthRepository{db: db}
}

// RecordFailure inserts a failed attempt and counts recent failures for
// the same email or IP in a single transaction, so two concurrent
// failures cannot both observe the pre-insert count.
func (r *GormAuthRepository) RecordFailure(email, ip string, at time.Time, windowStart time.Time) (int64, error) {
	var count int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		attempt := &models.LoginAttempt{
			Email:       email,
			IPAddress:   ip,
			AttemptedAt: at,
		}
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}

		return tx.Model(&models.LoginAttempt{}).
			Where("(email = ? OR ip_address = ?) AND attempted_at > ?", email, ip, windowStart).
			Count(&count).Error
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// FailedAttemptsSince counts failures for the email or IP since the given time
func (r *GormAuthRepository) FailedAttemptsSince(email, ip string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.LoginAttempt{}).
		Where("(email = ? OR ip_address = ?) AND attempted_at > ?", email, ip, since).
		Count(&count).Error
	return count, err
}

// ClearAttempts removes recorded failures for an email
func (r *GormAuthRepository) ClearAttempts(email string) error {
	return r.db.Where("email = ?", email).Delete(&models.LoginAttempt{}).Error
}

// CreateRememberToken persists a remember token
func (r *GormAuthRepository) CreateRememberToken(token *models.RememberToken) error {
	return r.db.Create(token).Error
}

// FindRememberToken finds an unexpired remember token
func (r *GormAuthRepository) FindRememberToken(token string, now time.Time) (*models.RememberToken, error) {
	var rt models.RememberToken
	if err := r.db.Where("token = ? AND expires_at > ?", token, now).
		First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// DeleteRememberToken removes a single remember token
func (r *GormAuthRepository) DeleteRememberToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.RememberToken{}).Error
}

// DeleteRememberTokensForUser removes all remember tokens for a user
func (r *GormAuthRepository) DeleteRememberTokensForUser(userID uint64) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.RememberToken{}).Error
}
