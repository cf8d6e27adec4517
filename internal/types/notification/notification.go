package notification

import (
	"time"

	"github.com/google/uuid"
)

// Tags dedupe notifications per user: a newer one with the same tag replaces
// the older one.
const (
	TagDailyReminder = "daily-reminder"
	TagStreakRisk    = "streak-risk"
	TagPlanAdvanced  = "plan-advanced"
)

type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Tag       string    `json:"tag" db:"tag"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (r *RegisterDeviceRequest) Valid() bool {
	if r.Token == "" {
		return false
	}
	switch r.Platform {
	case "ios", "android", "web":
		return true
	}
	return false
}

type ListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
}
