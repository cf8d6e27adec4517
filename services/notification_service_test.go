package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constanciaAPI/internal/types/notification"
)

type pushCall struct {
	tokens []notification.DeviceToken
	title  string
	data   map[string]any
}

type fakePushProvider struct {
	mu    sync.Mutex
	calls []pushCall
	err   error
}

func (f *fakePushProvider) SendPush(_ context.Context, tokens []notification.DeviceToken, title, _ string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pushCall{tokens: tokens, title: title, data: data})
	return f.err
}

func (f *fakePushProvider) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNotify_UpsertsByTagAndPushes(t *testing.T) {
	// Setup
	store := NewMemoryStore()
	userID := seedUser(t, store, seed{})
	require.NoError(t, store.RegisterDevice(context.Background(), userID, notification.DeviceToken{Token: "tok-1", Platform: "android"}))

	push := &fakePushProvider{}
	dispatcher := NewNotificationDispatcher(store, 2)
	dispatcher.SetPushProvider(push)
	defer dispatcher.Stop()
	svc := NewNotificationService(store, dispatcher)
	ctx := context.Background()

	// Execute
	svc.Notify(ctx, userID, "⚠️ Streak at risk!", "You have a 3 day streak.", notification.TagStreakRisk)
	svc.Notify(ctx, userID, "⚠️ Streak at risk!", "You have a 4 day streak.", notification.TagStreakRisk)
	svc.Notify(ctx, userID, "🏋️ Time to train!", "Consistency beats intensity.", notification.TagDailyReminder)

	// Assert
	list, err := svc.GetNotifications(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, list.UnreadCount)
	bodies := map[string]string{}
	for _, n := range list.Notifications {
		bodies[n.Tag] = n.Body
	}
	assert.Equal(t, "You have a 4 day streak.", bodies[notification.TagStreakRisk])

	assert.Eventually(t, func() bool { return push.count() == 3 }, 2*time.Second, 10*time.Millisecond)
	push.mu.Lock()
	assert.Equal(t, "tok-1", push.calls[0].tokens[0].Token)
	assert.Contains(t, push.calls[0].data, "tag")
	push.mu.Unlock()
}

func TestMarkAsRead(t *testing.T) {
	store := NewMemoryStore()
	userID := seedUser(t, store, seed{})
	other := seedUser(t, store, seed{})
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	svc.Notify(ctx, userID, "t", "b", notification.TagDailyReminder)
	list, err := svc.GetNotifications(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	id := list.Notifications[0].ID

	assert.ErrorIs(t, svc.MarkAsRead(ctx, other, id), ErrNotificationNotFound)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, userID, uuid.New()), ErrNotificationNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, userID, id))

	list, err = svc.GetNotifications(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list.Notifications)
	assert.NotNil(t, list.Notifications)

	// a newer notification with the same tag comes back unread
	svc.Notify(ctx, userID, "t", "b2", notification.TagDailyReminder)
	list, err = svc.GetNotifications(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, id, list.Notifications[0].ID)
	assert.Equal(t, "b2", list.Notifications[0].Body)
}

func TestRegisterDevice(t *testing.T) {
	store := NewMemoryStore()
	userID := seedUser(t, store, seed{})
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	err := svc.RegisterDevice(ctx, userID, &notification.RegisterDeviceRequest{Token: "abc", Platform: "windows"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	err = svc.RegisterDevice(ctx, uuid.New(), &notification.RegisterDeviceRequest{Token: "abc", Platform: "ios"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, svc.RegisterDevice(ctx, userID, &notification.RegisterDeviceRequest{Token: "abc", Platform: "ios"}))
	require.NoError(t, svc.RegisterDevice(ctx, userID, &notification.RegisterDeviceRequest{Token: "abc", Platform: "web"}))

	tokens, err := store.GetDeviceTokens(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []notification.DeviceToken{{Token: "abc", Platform: "web"}}, tokens)
}

func TestDispatcher_SkipsAndSurvivesFailures(t *testing.T) {
	store := NewMemoryStore()
	withDevice := seedUser(t, store, seed{})
	withoutDevice := seedUser(t, store, seed{})
	require.NoError(t, store.RegisterDevice(context.Background(), withDevice, notification.DeviceToken{Token: "t", Platform: "ios"}))

	push := &fakePushProvider{err: errors.New("fcm down")}
	dispatcher := NewNotificationDispatcher(store, 1)
	dispatcher.SetPushProvider(push)

	ctx := context.Background()
	dispatcher.Dispatch(ctx, &notification.Notification{ID: uuid.New(), UserID: withoutDevice, Tag: "x"})
	dispatcher.Dispatch(ctx, &notification.Notification{ID: uuid.New(), UserID: withDevice, Tag: "x"})
	dispatcher.Dispatch(ctx, &notification.Notification{ID: uuid.New(), UserID: withDevice, Tag: "y"})

	assert.Eventually(t, func() bool { return push.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	dispatcher.Stop()
	dispatcher.Stop()

	// Dispatch after Stop drops the job instead of blocking
	done := make(chan struct{})
	go func() {
		dispatcher.Dispatch(ctx, &notification.Notification{ID: uuid.New(), UserID: withDevice})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked after Stop")
	}
}
