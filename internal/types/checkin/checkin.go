package checkin

import (
	"time"

	"github.com/google/uuid"

	"constanciaAPI/internal/daykey"
)

// Checkin records that a user trained on a calendar day. There is at most one
// per (user, date).
type Checkin struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	UserID    uuid.UUID     `json:"user_id" db:"user_id"`
	Date      daykey.DayKey `json:"date" db:"checkin_date"`
	WorkoutID *uuid.UUID    `json:"workout_id,omitempty" db:"workout_id"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

type HistoryResponse struct {
	Since daykey.DayKey   `json:"since"`
	Days  []daykey.DayKey `json:"days"`
}
