package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"constanciaAPI/internal/achievement"
	"constanciaAPI/internal/metrics"
	"constanciaAPI/internal/notification"
	"constanciaAPI/internal/streak"
	notificationTypes "constanciaAPI/internal/types/notification"
	"constanciaAPI/internal/types/profile"
	streakTypes "constanciaAPI/internal/types/streak"
)

type StreakService struct {
	store    Store
	notifier Notifier
	clock
}

func NewStreakService(store Store, notifier Notifier, defaultLoc *time.Location) *StreakService {
	return &StreakService{
		store:    store,
		notifier: notifier,
		clock:    newClock(defaultLoc),
	}
}

// SetClock replaces time.Now, for tests.
func (s *StreakService) SetClock(now func() time.Time) {
	s.now = now
}

// UpdateStreakAfterWorkout re-derives the streak from stored state after a
// workout. A check-in for today means the day was already counted and the
// call reports maintained without writing anything.
func (s *StreakService) UpdateStreakAfterWorkout(ctx context.Context, userID uuid.UUID) (*streak.Result, error) {
	return s.updateStreakAt(ctx, userID, s.now(), false)
}

// updateStreakAt runs the update for the instant at. ownsTodayCheckin is set
// when the caller itself just created today's check-in, so that row must not
// count as an earlier completion.
func (s *StreakService) updateStreakAt(ctx context.Context, userID uuid.UUID, at time.Time, ownsTodayCheckin bool) (*streak.Result, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	logger := log.WithField("user_id", userID)

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, s.failed(logger, readFailure("get profile", err))
	}
	today := s.todayIn(p.Timezone, at)

	last, err := s.store.GetLastCheckinBefore(ctx, userID, today)
	if err != nil {
		return nil, s.failed(logger, readFailure("get last check-in", err))
	}

	if !ownsTodayCheckin {
		trainedToday, err := s.store.GetCheckinOn(ctx, userID, today)
		if err != nil {
			return nil, s.failed(logger, readFailure("get today check-in", err))
		}
		if trainedToday {
			// a check-in written by an update that failed before the profile
			// write still means the user has trained today
			current := max(p.CurrentStreak, 1)
			result := &streak.Result{
				NewStreak:       current,
				LastWorkoutDate: today,
				Status:          streak.StatusMaintained,
				Message:         streak.MessageFor(streak.StatusMaintained, current),
			}
			metrics.StreakUpdates.WithLabelValues(string(result.Status)).Inc()
			logger.Debug("already trained today, streak maintained")
			return result, nil
		}
	}

	result, err := streak.Calculate(p.CurrentStreak, last, today)
	if err != nil {
		return nil, s.failed(logger, err)
	}

	longest := max(p.LongestStreak, result.NewStreak)
	total := p.TotalWorkouts + 1
	update := profile.Update{
		CurrentStreak: &result.NewStreak,
		LongestStreak: &longest,
		TotalWorkouts: &total,
	}
	if err := s.store.UpdateProfile(ctx, userID, update); err != nil {
		return nil, s.failed(logger, writeFailure("update profile streak", err))
	}

	metrics.StreakUpdates.WithLabelValues(string(result.Status)).Inc()
	logger.WithFields(log.Fields{
		"status": result.Status,
		"streak": result.NewStreak,
		"today":  today,
	}).Info("streak updated")

	if result.Status == streak.StatusIncreased {
		if a, ok := achievement.ForStreak(result.NewStreak); ok && s.notifier != nil {
			s.notifier.Notify(ctx, userID, a.Title, a.Message, achievement.Tag)
		}
	}

	return &result, nil
}

func (s *StreakService) failed(logger *log.Entry, err error) error {
	metrics.StreakUpdateFailures.Inc()
	logger.WithError(err).Error("streak update failed")
	return err
}

// CheckStreakStatus reports the streak as of today and warns the user when it
// is about to break.
func (s *StreakService) CheckStreakStatus(ctx context.Context, userID uuid.UUID) (*streakTypes.Status, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, readFailure("get profile", err)
	}
	today := s.todayIn(p.Timezone, s.now())
	tomorrow, err := today.AddDays(1)
	if err != nil {
		return nil, err
	}
	last, err := s.store.GetLastCheckinBefore(ctx, userID, tomorrow)
	if err != nil {
		return nil, readFailure("get last check-in", err)
	}

	status := &streakTypes.Status{
		CurrentStreak:   p.CurrentStreak,
		LongestStreak:   p.LongestStreak,
		TotalWorkouts:   p.TotalWorkouts,
		LastWorkoutDate: last,
		AtRisk:          streak.IsAtRisk(last, today),
		TrainedToday:    streak.HasTrainedToday(last, today),
	}

	if status.AtRisk && p.CurrentStreak > 0 && s.notifier != nil {
		s.notifier.Notify(ctx, userID, notification.StreakRiskTitle,
			notification.StreakRiskBody(p.CurrentStreak), notificationTypes.TagStreakRisk)
	}

	return status, nil
}

// NotifyAtRiskUsers warns every user whose streak ends unless they train
// before their local midnight.
func (s *StreakService) NotifyAtRiskUsers(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}
	targets, err := s.store.ListReminderTargets(ctx)
	if err != nil {
		return 0, readFailure("list reminder targets", err)
	}

	at := s.now()
	sent := 0
	for _, t := range targets {
		today := s.todayIn(t.Timezone, at)
		if t.CurrentStreak > 0 && streak.IsAtRisk(t.LastCheckin, today) {
			s.notifier.Notify(ctx, t.UserID, notification.StreakRiskTitle,
				notification.StreakRiskBody(t.CurrentStreak), notificationTypes.TagStreakRisk)
			sent++
		}
	}
	log.Infof("at-risk sweep: notified %d of %d users", sent, len(targets))
	return sent, nil
}

// SendDailyReminders nudges every user who has not trained yet today.
func (s *StreakService) SendDailyReminders(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}
	targets, err := s.store.ListReminderTargets(ctx)
	if err != nil {
		return 0, readFailure("list reminder targets", err)
	}

	at := s.now()
	sent := 0
	for _, t := range targets {
		today := s.todayIn(t.Timezone, at)
		if streak.HasTrainedToday(t.LastCheckin, today) {
			continue
		}
		s.notifier.Notify(ctx, t.UserID, notification.DailyReminderTitle,
			notification.RandomMotivationalMessage(), notificationTypes.TagDailyReminder)
		sent++
	}
	log.Infof("daily reminder: notified %d of %d users", sent, len(targets))
	return sent, nil
}

// Reminder job ids owned by the scheduler.
const (
	DailyReminderJob = "daily-reminder"
	AtRiskSweepJob   = "streak-risk-sweep"
)

// RegisterReminders installs the daily reminder and the at-risk sweep. An
// empty spec leaves that job out.
func (s *StreakService) RegisterReminders(sched *Scheduler, reminderSpec, atRiskSpec string) error {
	jobs := []struct {
		id, spec string
		run      func(context.Context) (int, error)
	}{
		{DailyReminderJob, reminderSpec, s.SendDailyReminders},
		{AtRiskSweepJob, atRiskSpec, s.NotifyAtRiskUsers},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		run := j.run
		id := j.id
		err := sched.Schedule(id, j.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := run(ctx); err != nil {
				log.WithField("job", id).WithError(err).Error("reminder job failed")
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}
