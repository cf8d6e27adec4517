package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/types/profile"
)

func intPtr(n int) *int { return &n }

func TestUpdate_Validate(t *testing.T) {
	planID := "30_days"
	start := daykey.MustParse("2024-01-01")
	bad := daykey.DayKey("2024-02-30")

	assert.NoError(t, profile.Update{}.Validate())
	assert.NoError(t, profile.Update{CurrentPlanID: &planID, PlanStartDate: &start}.Validate())
	assert.NoError(t, profile.Update{PlanStartDate: &start}.Validate())
	assert.ErrorIs(t, profile.Update{CurrentPlanID: &planID}.Validate(), profile.ErrPlanWithoutStartDate)
	assert.ErrorIs(t, profile.Update{PlanStartDate: &bad}.Validate(), daykey.ErrInvalidArgument)
	assert.ErrorIs(t, profile.Update{TotalWorkouts: intPtr(-1)}.Validate(), daykey.ErrInvalidArgument)
}

func TestUpdate_Apply(t *testing.T) {
	p := &profile.Profile{CurrentStreak: 3, LongestStreak: 9, TotalWorkouts: 20}
	planID := "90_days"
	start := daykey.MustParse("2024-05-01")

	u := profile.Update{CurrentStreak: intPtr(4), TotalWorkouts: intPtr(21), CurrentPlanID: &planID, PlanStartDate: &start}
	assert.False(t, u.Empty())
	u.Apply(p)

	assert.Equal(t, 4, p.CurrentStreak)
	assert.Equal(t, 9, p.LongestStreak)
	assert.Equal(t, 21, p.TotalWorkouts)
	assert.Equal(t, "90_days", *p.CurrentPlanID)
	assert.Equal(t, start, *p.PlanStartDate)

	// the profile does not alias the update's pointers
	planID = "changed"
	assert.Equal(t, "90_days", *p.CurrentPlanID)

	assert.True(t, profile.Update{}.Empty())
}
