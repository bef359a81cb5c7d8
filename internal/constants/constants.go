package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyCaller  = "caller"
	ContextKeyRequest = "request_id"
	SessionCookieName = "wooglin_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Accounts
const (
	MinPasswordLength = 8
	DefaultPosition   = "Brother"
)

// Shifts
const (
	DefaultShiftCapacity = 5
	ShiftListDays        = 31
	UpcomingShiftWindow  = 15 * time.Minute
	DateLayout           = "2006-01-02"
	ClockLayout          = "3:04 PM"
)

// Notifications
const (
	NotificationDedupeTTL = 2 * time.Hour
)
