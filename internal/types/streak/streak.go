package streak

import (
	"constanciaAPI/internal/daykey"
)

// Status is the read-only view of a user's streak as of today.
type Status struct {
	CurrentStreak   int            `json:"current_streak"`
	LongestStreak   int            `json:"longest_streak"`
	TotalWorkouts   int            `json:"total_workouts"`
	LastWorkoutDate *daykey.DayKey `json:"last_workout_date"`
	AtRisk          bool           `json:"at_risk"`
	TrainedToday    bool           `json:"trained_today"`
}
