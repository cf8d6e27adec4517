// Package streak derives a user's consecutive training-day streak from the
// current count, the last trained day and today.
package streak

import (
	"errors"
	"fmt"

	"constanciaAPI/internal/daykey"
)

type Status string

const (
	StatusFirst      Status = "first"
	StatusIncreased  Status = "increased"
	StatusMaintained Status = "maintained"
	StatusReset      Status = "reset"
)

var ErrFutureWorkoutDate = errors.New("last workout date is after today")

type Result struct {
	NewStreak       int           `json:"new_streak"`
	LastWorkoutDate daykey.DayKey `json:"last_workout_date"`
	Status          Status        `json:"status"`
	Message         string        `json:"message"`
}

// MessageFor returns the user-facing text for a status. Only the increased
// message carries the streak count.
func MessageFor(status Status, newStreak int) string {
	switch status {
	case StatusFirst:
		return "🔥 Day one! Your journey starts now!"
	case StatusIncreased:
		return fmt.Sprintf("🔥 %d days in a row! Keep it up!", newStreak)
	case StatusMaintained:
		return "✅ Streak kept! You already trained today."
	case StatusReset:
		return "💪 Streak restarted. Let's go again!"
	default:
		return ""
	}
}

func newResult(status Status, n int, last daykey.DayKey) Result {
	return Result{
		NewStreak:       n,
		LastWorkoutDate: last,
		Status:          status,
		Message:         MessageFor(status, n),
	}
}

// Calculate applies one workout completion on today to the streak.
//
// The rules are evaluated in order: no history starts a streak, the same day
// keeps it, the next day extends it and any longer gap restarts it at 1.
// A last workout after today is rejected rather than producing a negative gap.
func Calculate(currentStreak int, lastWorkoutDate *daykey.DayKey, today daykey.DayKey) (Result, error) {
	if currentStreak < 0 {
		return Result{}, fmt.Errorf("%w: negative streak %d", daykey.ErrInvalidArgument, currentStreak)
	}
	if !today.Valid() {
		return Result{}, fmt.Errorf("%w: malformed today %q", daykey.ErrInvalidArgument, today)
	}

	if lastWorkoutDate == nil || currentStreak == 0 {
		return newResult(StatusFirst, 1, today), nil
	}

	diff, err := daykey.Difference(today, *lastWorkoutDate)
	if err != nil {
		return Result{}, err
	}

	switch {
	case diff < 0:
		return Result{}, fmt.Errorf("%w: last %s, today %s", ErrFutureWorkoutDate, *lastWorkoutDate, today)
	case diff == 0:
		return newResult(StatusMaintained, currentStreak, *lastWorkoutDate), nil
	case diff == 1:
		return newResult(StatusIncreased, currentStreak+1, today), nil
	default:
		return newResult(StatusReset, 1, today), nil
	}
}

// IsAtRisk reports whether the user trained yesterday but not yet today.
func IsAtRisk(lastWorkoutDate *daykey.DayKey, today daykey.DayKey) bool {
	if lastWorkoutDate == nil {
		return false
	}
	diff, err := daykey.Difference(today, *lastWorkoutDate)
	return err == nil && diff == 1
}

func HasTrainedToday(lastWorkoutDate *daykey.DayKey, today daykey.DayKey) bool {
	if lastWorkoutDate == nil {
		return false
	}
	diff, err := daykey.Difference(today, *lastWorkoutDate)
	return err == nil && diff == 0
}
