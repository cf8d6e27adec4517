package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constanciaAPI/internal/daykey"
)

func TestGetOrCreate(t *testing.T) {
	store := NewMemoryStore()
	svc := NewProfileService(store, "Europe/Lisbon")
	ctx := context.Background()

	created, err := svc.GetOrCreate(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, "user_abc", created.ClerkID)
	assert.Equal(t, "Europe/Lisbon", created.Timezone)
	assert.Zero(t, created.CurrentStreak)
	assert.Zero(t, created.LongestStreak)
	assert.Zero(t, created.TotalWorkouts)
	assert.Nil(t, created.CurrentPlanID)

	again, err := svc.GetOrCreate(ctx, "user_abc")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	_, err = svc.GetOrCreate(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCreate_FallsBackToDefaultTimezone(t *testing.T) {
	svc := NewProfileService(NewMemoryStore(), "")

	p, err := svc.Create(context.Background(), "user_tz", "Mars/Olympus_Mons")

	require.NoError(t, err)
	assert.Equal(t, "UTC", p.Timezone)
}

func TestUpdateTimezone(t *testing.T) {
	store := NewMemoryStore()
	userID := seedUser(t, store, seed{})
	svc := NewProfileService(store, "UTC")
	ctx := context.Background()

	p, err := svc.UpdateTimezone(ctx, userID, "America/Sao_Paulo")
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", p.Timezone)

	_, err = svc.UpdateTimezone(ctx, userID, "Nowhere/Special")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.UpdateTimezone(ctx, uuid.New(), "UTC")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.UpdateTimezone(ctx, uuid.Nil, "UTC")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestDeleteByClerkID_RemovesHistory(t *testing.T) {
	store := NewMemoryStore()
	svc := NewProfileService(store, "UTC")
	ctx := context.Background()

	p, err := svc.GetOrCreate(ctx, "user_gone")
	require.NoError(t, err)
	_, err = store.UpsertCheckin(ctx, p.ID, "2024-01-01", nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByClerkID(ctx, "user_gone"))
	assert.ErrorIs(t, svc.DeleteByClerkID(ctx, "user_gone"), ErrUserNotFound)

	_, err = store.GetProfile(ctx, p.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	days, err := store.GetCheckinsSince(ctx, p.ID, "2000-01-01")
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestMemoryStore_CheckinQueries(t *testing.T) {
	store := NewMemoryStore()
	userID := seedUser(t, store, seed{checkins: []string{"2024-01-05", "2024-01-01", "2024-01-03"}})
	ctx := context.Background()

	last, err := store.GetLastCheckinBefore(ctx, userID, "2024-01-05")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, daykey.DayKey("2024-01-03"), *last)

	last, err = store.GetLastCheckinBefore(ctx, userID, "2024-01-01")
	require.NoError(t, err)
	assert.Nil(t, last)

	days, err := store.GetCheckinsSince(ctx, userID, "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, []daykey.DayKey{"2024-01-03", "2024-01-05"}, days)

	created, err := store.UpsertCheckin(ctx, userID, "2024-01-05", nil)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = store.GetCheckinOn(ctx, userID, "2024-1-5")
	assert.ErrorIs(t, err, daykey.ErrInvalidArgument)

	_, err = store.UpsertCheckin(ctx, uuid.New(), "2024-01-05", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
