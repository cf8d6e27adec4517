package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/types/calendar"
	"constanciaAPI/internal/types/checkin"
	"constanciaAPI/internal/types/workout"
)

// historyWindow is how far back check-in history goes when no start is given.
const historyWindow = 30

type WorkoutService struct {
	store   Store
	streaks *StreakService
	plans   *PlanService
	clock
}

func NewWorkoutService(store Store, streaks *StreakService, plans *PlanService, defaultLoc *time.Location) *WorkoutService {
	return &WorkoutService{
		store:   store,
		streaks: streaks,
		plans:   plans,
		clock:   newClock(defaultLoc),
	}
}

// SetClock replaces time.Now here and in the streak and plan services.
func (s *WorkoutService) SetClock(now func() time.Time) {
	s.now = now
	s.streaks.SetClock(now)
	s.plans.SetClock(now)
}

// CompleteWorkout logs a finished workout and then, in this order, records
// today's check-in, updates the streak and advances the plan when it was
// completed. A failed check-in aborts before the streak is touched. A failed
// plan advance is logged and does not fail the request.
func (s *WorkoutService) CompleteWorkout(ctx context.Context, userID uuid.UUID, req *workout.CompleteWorkoutRequest) (*workout.CompleteWorkoutResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, readFailure("get profile", err)
	}

	at := s.now()
	w, err := s.store.AddWorkout(ctx, &workout.Workout{
		UserID:             userID,
		WorkoutType:        req.WorkoutType,
		DurationSeconds:    req.DurationSeconds,
		ExercisesCompleted: req.ExercisesCompleted,
		CompletedAt:        at,
	})
	if err != nil {
		return nil, writeFailure("add workout", err)
	}

	today := s.todayIn(p.Timezone, at)
	created, err := s.store.UpsertCheckin(ctx, userID, today, &w.ID)
	if err != nil {
		return nil, writeFailure("upsert check-in", err)
	}

	result, err := s.streaks.updateStreakAt(ctx, userID, at, created)
	if err != nil {
		return nil, err
	}

	resp := &workout.CompleteWorkoutResponse{Workout: w, Streak: result}

	next, advanced, err := s.plans.CheckAndAdvancePlan(ctx, userID, at)
	if err != nil {
		log.WithField("user_id", userID).WithError(err).Warn("plan advance check failed")
	} else if advanced {
		resp.AdvancedTo = next
	}

	return resp, nil
}

// GetCheckins lists trained days from since (inclusive). A nil since means the
// last 30 days.
func (s *WorkoutService) GetCheckins(ctx context.Context, userID uuid.UUID, since *daykey.DayKey) (*checkin.HistoryResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	var start daykey.DayKey
	if since != nil {
		if !since.Valid() {
			return nil, daykey.ErrInvalidArgument
		}
		start = *since
	} else {
		p, err := s.store.GetProfile(ctx, userID)
		if err != nil {
			return nil, readFailure("get profile", err)
		}
		start, err = s.todayIn(p.Timezone, s.now()).AddDays(-(historyWindow - 1))
		if err != nil {
			return nil, err
		}
	}

	days, err := s.store.GetCheckinsSince(ctx, userID, start)
	if err != nil {
		return nil, readFailure("get check-ins", err)
	}
	if days == nil {
		days = []daykey.DayKey{}
	}
	return &checkin.HistoryResponse{Since: start, Days: days}, nil
}

// GetCalendar marks every day of the month with whether the user trained.
func (s *WorkoutService) GetCalendar(ctx context.Context, userID uuid.UUID, year, month int) (*calendar.CalendarResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return nil, fmt.Errorf("%w: month %d-%02d", daykey.ErrInvalidArgument, year, month)
	}

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, readFailure("get profile", err)
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	days, err := s.store.GetCheckinsSince(ctx, userID, daykey.FromDate(startDate))
	if err != nil {
		return nil, readFailure("get check-ins", err)
	}
	trained := make(map[daykey.DayKey]bool, len(days))
	for _, d := range days {
		trained[d] = true
	}

	today := s.todayIn(p.Timezone, s.now())
	var out []*calendar.CalendarDay
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		key := daykey.FromDate(d)
		out = append(out, &calendar.CalendarDay{
			Date:    key,
			Trained: trained[key],
			IsToday: key == today,
		})
	}

	return &calendar.CalendarResponse{Year: year, Month: month, Days: out}, nil
}
