package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/streak"
	"constanciaAPI/internal/types/notification"
	"constanciaAPI/internal/types/workout"
)

func daysFrom(start string, n int) []string {
	d := daykey.MustParse(start)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, d.String())
		d, _ = d.AddDays(1)
	}
	return out
}

func TestCompleteWorkout_SameDayTwice(t *testing.T) {
	// Setup
	store := NewMemoryStore()
	userID := seedUser(t, store, seed{current: 5, longest: 5, total: 12, checkins: []string{"2024-01-07"}})
	_, _, workouts := newTestServices(store, nil)
	workouts.SetClock(fixed(noonUTC("2024-01-08")))

	// Execute
	first, err := workouts.CompleteWorkout(context.Background(), userID, completeReq())
	require.NoError(t, err)
	second, err := workouts.CompleteWorkout(context.Background(), userID, completeReq())
	require.NoError(t, err)

	// Assert
	assert.Equal(t, streak.StatusIncreased, first.Streak.Status)
	assert.Equal(t, 6, first.Streak.NewStreak)
	assert.Equal(t, streak.StatusMaintained, second.Streak.Status)
	assert.Equal(t, 6, second.Streak.NewStreak)
	assert.NotEqual(t, first.Workout.ID, second.Workout.ID)

	p := mustProfile(t, store, userID)
	assert.Equal(t, 6, p.CurrentStreak)
	assert.Equal(t, 6, p.LongestStreak)
	assert.Equal(t, 13, p.TotalWorkouts)

	c, ok := store.Checkin(userID, "2024-01-08")
	require.True(t, ok)
	require.NotNil(t, c.WorkoutID)
	assert.Equal(t, first.Workout.ID, *c.WorkoutID, "the check-in keeps the first workout of the day")
}

func TestCompleteWorkout_CheckinFailureAbortsBeforeStreak(t *testing.T) {
	mem := NewMemoryStore()
	userID := seedUser(t, mem, seed{current: 5, longest: 5, total: 12, checkins: []string{"2024-01-07"}})
	_, _, workouts := newTestServices(newFailingStore(mem, "UpsertCheckin"), nil)
	workouts.SetClock(fixed(noonUTC("2024-01-08")))

	resp, err := workouts.CompleteWorkout(context.Background(), userID, completeReq())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPersistenceWrite)
	p := mustProfile(t, mem, userID)
	assert.Equal(t, 5, p.CurrentStreak)
	assert.Equal(t, 12, p.TotalWorkouts)
}

func TestCompleteWorkout_StreakFailureSurfaces(t *testing.T) {
	mem := NewMemoryStore()
	userID := seedUser(t, mem, seed{current: 5, longest: 5, total: 12, checkins: []string{"2024-01-07"}})
	_, _, workouts := newTestServices(newFailingStore(mem, "UpdateProfile"), nil)
	workouts.SetClock(fixed(noonUTC("2024-01-08")))

	_, err := workouts.CompleteWorkout(context.Background(), userID, completeReq())
	require.ErrorIs(t, err, ErrPersistenceWrite)

	// the check-in survived; a retry reports maintained instead of double counting
	_, _, retry := newTestServices(mem, nil)
	retry.SetClock(fixed(noonUTC("2024-01-08")))
	resp, err := retry.CompleteWorkout(context.Background(), userID, completeReq())
	require.NoError(t, err)
	assert.Equal(t, streak.StatusMaintained, resp.Streak.Status)
	assert.Equal(t, 5, resp.Streak.NewStreak)
}

func TestCompleteWorkout_InvalidRequest(t *testing.T) {
	store := NewMemoryStore()
	userID := seedUser(t, store, seed{})
	_, _, workouts := newTestServices(store, nil)

	_, err := workouts.CompleteWorkout(context.Background(), userID, &workout.CompleteWorkoutRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = workouts.CompleteWorkout(context.Background(), userID, &workout.CompleteWorkoutRequest{WorkoutType: "legs", DurationSeconds: -1})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCompleteWorkout_AdvancesCompletedPlan(t *testing.T) {
	store := NewMemoryStore()
	checkins := daysFrom("2024-01-01", 29)
	userID := seedUser(t, store, seed{current: 29, total: 29, planID: "30_days", start: "2024-01-01", checkins: checkins})
	notifier := &recordingNotifier{}
	_, plans, workouts := newTestServices(store, notifier)
	workouts.SetClock(fixed(noonUTC("2024-01-30")))

	progress, err := plans.GetPlanProgress(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 29, progress.DaysPassed)
	assert.False(t, progress.IsCompleted)

	resp, err := workouts.CompleteWorkout(context.Background(), userID, completeReq())
	require.NoError(t, err)
	require.NotNil(t, resp.AdvancedTo)
	assert.Equal(t, "90_days", resp.AdvancedTo.ID)

	p := mustProfile(t, store, userID)
	require.NotNil(t, p.CurrentPlanID)
	assert.Equal(t, "90_days", *p.CurrentPlanID)
	assert.Equal(t, daykey.DayKey("2024-01-31"), *p.PlanStartDate)
	assert.Contains(t, notifier.tags(), notification.TagPlanAdvanced)

	// the completing check-in belongs to the finished plan only
	progress, err = plans.GetPlanProgress(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.DaysPassed)
	assert.Equal(t, 1.25, progress.LoadMultiplier)
}

func TestGetCheckins(t *testing.T) {
	store := NewMemoryStore()
	userID := seedUser(t, store, seed{checkins: []string{"2023-12-01", "2024-01-02", "2024-01-05"}})
	_, _, workouts := newTestServices(store, nil)
	workouts.SetClock(fixed(noonUTC("2024-01-08")))

	since := daykey.MustParse("2024-01-03")
	history, err := workouts.GetCheckins(context.Background(), userID, &since)
	require.NoError(t, err)
	assert.Equal(t, []daykey.DayKey{"2024-01-05"}, history.Days)

	history, err = workouts.GetCheckins(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Equal(t, daykey.DayKey("2023-12-10"), history.Since)
	assert.Equal(t, []daykey.DayKey{"2024-01-02", "2024-01-05"}, history.Days)

	bad := daykey.DayKey("2024-13-01")
	_, err = workouts.GetCheckins(context.Background(), userID, &bad)
	assert.ErrorIs(t, err, daykey.ErrInvalidArgument)
}

func TestGetCalendar(t *testing.T) {
	store := NewMemoryStore()
	userID := seedUser(t, store, seed{checkins: []string{"2024-01-31", "2024-02-01", "2024-02-29", "2024-03-01"}})
	_, _, workouts := newTestServices(store, nil)
	workouts.SetClock(fixed(noonUTC("2024-02-15")))

	cal, err := workouts.GetCalendar(context.Background(), userID, 2024, 2)
	require.NoError(t, err)
	require.Len(t, cal.Days, 29)

	trained := map[daykey.DayKey]bool{}
	for _, d := range cal.Days {
		if d.Trained {
			trained[d.Date] = true
		}
		assert.Equal(t, d.Date == "2024-02-15", d.IsToday)
	}
	assert.Equal(t, map[daykey.DayKey]bool{"2024-02-01": true, "2024-02-29": true}, trained)

	_, err = workouts.GetCalendar(context.Background(), userID, 2024, 13)
	assert.ErrorIs(t, err, daykey.ErrInvalidArgument)
}

func TestWorkoutService_SetClockPropagates(t *testing.T) {
	store := NewMemoryStore()
	streaks, plans, workouts := newTestServices(store, nil)
	at := time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)

	workouts.SetClock(fixed(at))

	assert.Equal(t, at, streaks.now())
	assert.Equal(t, at, plans.now())
}
