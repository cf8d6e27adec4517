package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/plan"
)

// Profile is the part of the user record the streak and plan engine reads.
type Profile struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ClerkID       string    `json:"clerk_id" db:"clerk_id"`
	Timezone      string    `json:"timezone" db:"timezone"`
	CurrentStreak int       `json:"current_streak" db:"current_streak"`
	LongestStreak int       `json:"longest_streak" db:"longest_streak"`
	TotalWorkouts int       `json:"total_workouts" db:"total_workouts"`
	plan.Assignment
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

var ErrPlanWithoutStartDate = errors.New("a plan assignment needs a start date")

// Update is a partial profile write. Nil fields are left untouched.
type Update struct {
	CurrentStreak *int
	LongestStreak *int
	TotalWorkouts *int
	CurrentPlanID *string
	PlanStartDate *daykey.DayKey
}

func (u Update) Empty() bool {
	return u.CurrentStreak == nil && u.LongestStreak == nil && u.TotalWorkouts == nil &&
		u.CurrentPlanID == nil && u.PlanStartDate == nil
}

func (u Update) Validate() error {
	if u.CurrentPlanID != nil && u.PlanStartDate == nil {
		return ErrPlanWithoutStartDate
	}
	if u.PlanStartDate != nil && !u.PlanStartDate.Valid() {
		return daykey.ErrInvalidArgument
	}
	for _, n := range []*int{u.CurrentStreak, u.LongestStreak, u.TotalWorkouts} {
		if n != nil && *n < 0 {
			return daykey.ErrInvalidArgument
		}
	}
	return nil
}

// Apply copies the set fields onto p.
func (u Update) Apply(p *Profile) {
	if u.CurrentStreak != nil {
		p.CurrentStreak = *u.CurrentStreak
	}
	if u.LongestStreak != nil {
		p.LongestStreak = *u.LongestStreak
	}
	if u.TotalWorkouts != nil {
		p.TotalWorkouts = *u.TotalWorkouts
	}
	if u.CurrentPlanID != nil {
		id := *u.CurrentPlanID
		p.CurrentPlanID = &id
	}
	if u.PlanStartDate != nil {
		d := *u.PlanStartDate
		p.PlanStartDate = &d
	}
}

type UpdateTimezoneRequest struct {
	Timezone string `json:"timezone"`
}
