package constants

import "time"

// Session
const (
	SessionCookieName  = "helpify_session"
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
	SessionKeyCSRF     = "csrf_token"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Account rules
const (
	MinFullnameLength = 2
	MinPasswordLength = 6

	MaxLoginAttempts   = 5
	LoginAttemptWindow = 15 * time.Minute

	RememberTokenBytes = 32
	RememberTokenTTL   = 30 * 24 * time.Hour

	ResetTokenBytes = 32
	ResetTokenTTL   = time.Hour
)

// Task validation bounds
const (
	MinTitleLength       = 5
	MaxTitleLength       = 100
	MinDescriptionLength = 20
	MaxDescriptionLength = 2000
	MaxLocationLength    = 200
	MinBudget            = 10.00
	MaxBudget            = 10000.00
)

// Dashboard
const (
	RecentItemsLimit    = 5
	RecentHelpersWindow = 7 * 24 * time.Hour
)
