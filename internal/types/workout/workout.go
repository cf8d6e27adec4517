package workout

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"constanciaAPI/internal/plan"
	"constanciaAPI/internal/streak"
)

type Workout struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	UserID             uuid.UUID `json:"user_id" db:"user_id"`
	WorkoutType        string    `json:"workout_type" db:"workout_type"`
	DurationSeconds    int       `json:"duration_seconds" db:"duration_seconds"`
	ExercisesCompleted int       `json:"exercises_completed" db:"exercises_completed"`
	CompletedAt        time.Time `json:"completed_at" db:"completed_at"`
}

type CompleteWorkoutRequest struct {
	WorkoutType        string `json:"workout_type"`
	DurationSeconds    int    `json:"duration_seconds"`
	ExercisesCompleted int    `json:"exercises_completed"`
}

func (r *CompleteWorkoutRequest) Validate() error {
	if r.WorkoutType == "" {
		return errors.New("workout_type is required")
	}
	if r.DurationSeconds < 0 || r.ExercisesCompleted < 0 {
		return errors.New("duration_seconds and exercises_completed must not be negative")
	}
	return nil
}

type CompleteWorkoutResponse struct {
	Workout *Workout       `json:"workout"`
	Streak  *streak.Result `json:"streak"`
	// AdvancedTo is set when finishing this workout completed the active plan
	// and moved the user to its successor.
	AdvancedTo *plan.Plan `json:"advanced_to,omitempty"`
}
