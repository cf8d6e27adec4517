package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/types/checkin"
	"constanciaAPI/internal/types/notification"
	"constanciaAPI/internal/types/profile"
	"constanciaAPI/internal/types/workout"
)

type checkinKey struct {
	userID uuid.UUID
	date   daykey.DayKey
}

type notificationKey struct {
	userID uuid.UUID
	tag    string
}

// MemoryStore is a map-backed Store and NotificationStore for local runs
// (STORE_BACKEND=memory) and tests. It keeps the same uniqueness rules as the
// SQL schema.
type MemoryStore struct {
	mu            sync.Mutex
	profiles      map[uuid.UUID]*profile.Profile
	byClerk       map[string]uuid.UUID
	checkins      map[checkinKey]*checkin.Checkin
	workouts      map[uuid.UUID]*workout.Workout
	notifications map[notificationKey]*notification.Notification
	devices       map[string]deviceEntry
}

type deviceEntry struct {
	userID uuid.UUID
	token  notification.DeviceToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:      make(map[uuid.UUID]*profile.Profile),
		byClerk:       make(map[string]uuid.UUID),
		checkins:      make(map[checkinKey]*checkin.Checkin),
		workouts:      make(map[uuid.UUID]*workout.Workout),
		notifications: make(map[notificationKey]*notification.Notification),
		devices:       make(map[string]deviceEntry),
	}
}

func copyProfile(p *profile.Profile) *profile.Profile {
	out := *p
	if p.CurrentPlanID != nil {
		id := *p.CurrentPlanID
		out.CurrentPlanID = &id
	}
	if p.PlanStartDate != nil {
		d := *p.PlanStartDate
		out.PlanStartDate = &d
	}
	return &out
}

func (s *MemoryStore) GetProfile(_ context.Context, userID uuid.UUID) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyProfile(p), nil
}

func (s *MemoryStore) GetProfileByClerkID(_ context.Context, clerkID string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byClerk[clerkID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyProfile(s.profiles[id]), nil
}

func (s *MemoryStore) CreateProfile(_ context.Context, clerkID, timezone string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byClerk[clerkID]; ok {
		return copyProfile(s.profiles[id]), nil
	}
	now := time.Now()
	p := &profile.Profile{
		ID:        uuid.New(),
		ClerkID:   clerkID,
		Timezone:  timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.profiles[p.ID] = p
	s.byClerk[clerkID] = p.ID
	return copyProfile(p), nil
}

func (s *MemoryStore) DeleteProfileByClerkID(_ context.Context, clerkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byClerk[clerkID]
	if !ok {
		return ErrUserNotFound
	}
	delete(s.byClerk, clerkID)
	delete(s.profiles, id)
	for k := range s.checkins {
		if k.userID == id {
			delete(s.checkins, k)
		}
	}
	for k, w := range s.workouts {
		if w.UserID == id {
			delete(s.workouts, k)
		}
	}
	for k := range s.notifications {
		if k.userID == id {
			delete(s.notifications, k)
		}
	}
	for token, d := range s.devices {
		if d.userID == id {
			delete(s.devices, token)
		}
	}
	return nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, userID uuid.UUID, update profile.Update) error {
	if err := update.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return ErrUserNotFound
	}
	update.Apply(p)
	p.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) UpdateTimezone(_ context.Context, userID uuid.UUID, timezone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return ErrUserNotFound
	}
	p.Timezone = timezone
	p.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) GetLastCheckinBefore(_ context.Context, userID uuid.UUID, date daykey.DayKey) (*daykey.DayKey, error) {
	if !date.Valid() {
		return nil, daykey.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var last *daykey.DayKey
	for k := range s.checkins {
		if k.userID != userID || !k.date.Before(date) {
			continue
		}
		if last == nil || k.date.After(*last) {
			d := k.date
			last = &d
		}
	}
	return last, nil
}

func (s *MemoryStore) GetCheckinOn(_ context.Context, userID uuid.UUID, date daykey.DayKey) (bool, error) {
	if !date.Valid() {
		return false, daykey.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.checkins[checkinKey{userID, date}]
	return ok, nil
}

func (s *MemoryStore) GetCheckinsSince(_ context.Context, userID uuid.UUID, date daykey.DayKey) ([]daykey.DayKey, error) {
	if !date.Valid() {
		return nil, daykey.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	days := []daykey.DayKey{}
	for k := range s.checkins {
		if k.userID == userID && !k.date.Before(date) {
			days = append(days, k.date)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}

func (s *MemoryStore) UpsertCheckin(_ context.Context, userID uuid.UUID, date daykey.DayKey, workoutID *uuid.UUID) (bool, error) {
	if !date.Valid() {
		return false, daykey.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; !ok {
		return false, ErrUserNotFound
	}
	key := checkinKey{userID, date}
	if c, ok := s.checkins[key]; ok {
		if c.WorkoutID == nil && workoutID != nil {
			id := *workoutID
			c.WorkoutID = &id
		}
		return false, nil
	}
	c := &checkin.Checkin{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		CreatedAt: time.Now(),
	}
	if workoutID != nil {
		id := *workoutID
		c.WorkoutID = &id
	}
	s.checkins[key] = c
	return true, nil
}

// Checkin returns the stored check-in row, for assertions on the workout link.
func (s *MemoryStore) Checkin(userID uuid.UUID, date daykey.DayKey) (checkin.Checkin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkins[checkinKey{userID, date}]
	if !ok {
		return checkin.Checkin{}, false
	}
	return *c, true
}

func (s *MemoryStore) AddWorkout(_ context.Context, w *workout.Workout) (*workout.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[w.UserID]; !ok {
		return nil, ErrUserNotFound
	}
	out := *w
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.CompletedAt.IsZero() {
		out.CompletedAt = time.Now()
	}
	stored := out
	s.workouts[out.ID] = &stored
	return &out, nil
}

func (s *MemoryStore) ListReminderTargets(_ context.Context) ([]ReminderTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := map[uuid.UUID]daykey.DayKey{}
	for k := range s.checkins {
		if cur, ok := last[k.userID]; !ok || k.date.After(cur) {
			last[k.userID] = k.date
		}
	}
	targets := make([]ReminderTarget, 0, len(s.profiles))
	for _, p := range s.profiles {
		t := ReminderTarget{UserID: p.ID, Timezone: p.Timezone, CurrentStreak: p.CurrentStreak}
		if d, ok := last[p.ID]; ok {
			t.LastCheckin = &d
		}
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].UserID.String() < targets[j].UserID.String() })
	return targets, nil
}

func (s *MemoryStore) UpsertNotification(_ context.Context, n *notification.Notification) (*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := notificationKey{n.UserID, n.Tag}
	stored, ok := s.notifications[key]
	if !ok {
		stored = &notification.Notification{ID: uuid.New(), UserID: n.UserID, Tag: n.Tag}
		s.notifications[key] = stored
	}
	stored.Title = n.Title
	stored.Body = n.Body
	stored.Read = false
	stored.CreatedAt = time.Now()
	out := *stored
	return &out, nil
}

func (s *MemoryStore) ListUnreadNotifications(_ context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*notification.Notification
	for k, n := range s.notifications {
		if k.userID == userID && !n.Read {
			out := *n
			list = append(list, &out)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *MemoryStore) MarkNotificationRead(_ context.Context, userID, notificationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, n := range s.notifications {
		if k.userID == userID && n.ID == notificationID {
			n.Read = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (s *MemoryStore) GetDeviceTokens(_ context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tokens []notification.DeviceToken
	for _, d := range s.devices {
		if d.userID == userID {
			tokens = append(tokens, d.token)
		}
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Token < tokens[j].Token })
	return tokens, nil
}

func (s *MemoryStore) RegisterDevice(_ context.Context, userID uuid.UUID, token notification.DeviceToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; !ok {
		return ErrUserNotFound
	}
	s.devices[token.Token] = deviceEntry{userID: userID, token: token}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
