package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/types/notification"
	"constanciaAPI/internal/types/profile"
	"constanciaAPI/internal/types/workout"
)

// Store is everything the streak and plan engine needs from persistence.
// UpsertCheckin must be idempotent on (userID, date) and reports whether this
// call created the row.
type Store interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error)
	GetProfileByClerkID(ctx context.Context, clerkID string) (*profile.Profile, error)
	// CreateProfile returns the existing profile when one already exists for clerkID.
	CreateProfile(ctx context.Context, clerkID, timezone string) (*profile.Profile, error)
	DeleteProfileByClerkID(ctx context.Context, clerkID string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, update profile.Update) error
	UpdateTimezone(ctx context.Context, userID uuid.UUID, timezone string) error

	GetLastCheckinBefore(ctx context.Context, userID uuid.UUID, date daykey.DayKey) (*daykey.DayKey, error)
	GetCheckinOn(ctx context.Context, userID uuid.UUID, date daykey.DayKey) (bool, error)
	GetCheckinsSince(ctx context.Context, userID uuid.UUID, date daykey.DayKey) ([]daykey.DayKey, error)
	UpsertCheckin(ctx context.Context, userID uuid.UUID, date daykey.DayKey, workoutID *uuid.UUID) (bool, error)

	AddWorkout(ctx context.Context, w *workout.Workout) (*workout.Workout, error)
	ListReminderTargets(ctx context.Context) ([]ReminderTarget, error)
}

// NotificationStore keeps the per-user inbox and push device tokens.
type NotificationStore interface {
	// UpsertNotification replaces an unread or read notification with the same
	// (user, tag) and marks it unread again.
	UpsertNotification(ctx context.Context, n *notification.Notification) (*notification.Notification, error)
	ListUnreadNotifications(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) error
	GetDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error)
	RegisterDevice(ctx context.Context, userID uuid.UUID, token notification.DeviceToken) error
}

// ReminderTarget is one user as seen by the scheduled reminder jobs.
type ReminderTarget struct {
	UserID        uuid.UUID
	Timezone      string
	CurrentStreak int
	LastCheckin   *daykey.DayKey
}

// clock turns "now" into a user's local calendar day.
type clock struct {
	now        func() time.Time
	defaultLoc *time.Location
}

func newClock(defaultLoc *time.Location) clock {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return clock{now: time.Now, defaultLoc: defaultLoc}
}

func (c clock) location(timezone string) *time.Location {
	return daykey.LoadLocation(timezone, c.defaultLoc)
}

func (c clock) todayIn(timezone string, at time.Time) daykey.DayKey {
	return daykey.FromTime(at, c.location(timezone))
}
