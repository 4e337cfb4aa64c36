package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleClient UserRole = "client"
	RoleHelper UserRole = "helper"
)

type User struct {
	ID                uint64         `gorm:"primarykey" json:"id"`
	Fullname          string         `gorm:"type:varchar(255);not null" json:"fullname"`
	Email             string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash      string         `gorm:"type:varchar(255);not null" json:"-"`
	Role              UserRole       `gorm:"type:varchar(20);not null" json:"role"`
	IsActive          bool           `gorm:"not null;default:true" json:"is_active"`
	LastLogin         *time.Time     `json:"last_login"`
	ResetToken        *string        `gorm:"type:varchar(64)" json:"-"`
	ResetTokenExpires *time.Time     `json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Tasks        []Task        `gorm:"foreignKey:ClientID" json:"-"`
	Applications []Application `gorm:"foreignKey:HelperID" json:"-"`
}
