package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/types/profile"
)

var errBoom = errors.New("connection reset")

// noonUTC is midday on day, far from any zone's midnight for UTC profiles.
func noonUTC(day string) time.Time {
	t, err := time.Parse(daykey.Layout, day)
	if err != nil {
		panic(err)
	}
	return t.Add(12 * time.Hour)
}

func fixed(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type sentNotification struct {
	UserID uuid.UUID
	Title  string
	Body   string
	Tag    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, title, body, tag string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{userID, title, body, tag})
}

func (n *recordingNotifier) tags() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	tags := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		tags = append(tags, s.Tag)
	}
	return tags
}

// failingStore fails the named operations and passes everything else to the
// memory store.
type failingStore struct {
	*MemoryStore
	fail map[string]bool
}

func newFailingStore(mem *MemoryStore, ops ...string) *failingStore {
	f := &failingStore{MemoryStore: mem, fail: map[string]bool{}}
	for _, op := range ops {
		f.fail[op] = true
	}
	return f
}

func (f *failingStore) GetProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	if f.fail["GetProfile"] {
		return nil, errBoom
	}
	return f.MemoryStore.GetProfile(ctx, userID)
}

func (f *failingStore) GetLastCheckinBefore(ctx context.Context, userID uuid.UUID, date daykey.DayKey) (*daykey.DayKey, error) {
	if f.fail["GetLastCheckinBefore"] {
		return nil, errBoom
	}
	return f.MemoryStore.GetLastCheckinBefore(ctx, userID, date)
}

func (f *failingStore) GetCheckinOn(ctx context.Context, userID uuid.UUID, date daykey.DayKey) (bool, error) {
	if f.fail["GetCheckinOn"] {
		return false, errBoom
	}
	return f.MemoryStore.GetCheckinOn(ctx, userID, date)
}

func (f *failingStore) GetCheckinsSince(ctx context.Context, userID uuid.UUID, date daykey.DayKey) ([]daykey.DayKey, error) {
	if f.fail["GetCheckinsSince"] {
		return nil, errBoom
	}
	return f.MemoryStore.GetCheckinsSince(ctx, userID, date)
}

func (f *failingStore) UpsertCheckin(ctx context.Context, userID uuid.UUID, date daykey.DayKey, workoutID *uuid.UUID) (bool, error) {
	if f.fail["UpsertCheckin"] {
		return false, errBoom
	}
	return f.MemoryStore.UpsertCheckin(ctx, userID, date, workoutID)
}

func (f *failingStore) UpdateProfile(ctx context.Context, userID uuid.UUID, update profile.Update) error {
	if f.fail["UpdateProfile"] {
		return errBoom
	}
	return f.MemoryStore.UpdateProfile(ctx, userID, update)
}

type seed struct {
	timezone string
	current  int
	longest  int
	total    int
	planID   string
	start    string
	checkins []string
}

func seedUser(t *testing.T, store *MemoryStore, s seed) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	tz := s.timezone
	if tz == "" {
		tz = "UTC"
	}
	p, err := store.CreateProfile(ctx, "user_"+uuid.NewString(), tz)
	require.NoError(t, err)

	longest := max(s.longest, s.current)
	update := profile.Update{
		CurrentStreak: &s.current,
		LongestStreak: &longest,
		TotalWorkouts: &s.total,
	}
	if s.planID != "" {
		start := daykey.MustParse(s.start)
		update.CurrentPlanID = &s.planID
		update.PlanStartDate = &start
	}
	require.NoError(t, store.UpdateProfile(ctx, p.ID, update))

	for _, d := range s.checkins {
		_, err := store.UpsertCheckin(ctx, p.ID, daykey.MustParse(d), nil)
		require.NoError(t, err)
	}
	return p.ID
}

func mustProfile(t *testing.T, store Store, userID uuid.UUID) *profile.Profile {
	t.Helper()
	p, err := store.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	return p
}
