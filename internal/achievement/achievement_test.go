package achievement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"constanciaAPI/internal/achievement"
)

func TestForStreak_Thresholds(t *testing.T) {
	unlocked := map[int]bool{}
	for n := -5; n <= 1000; n++ {
		a, ok := achievement.ForStreak(n)
		if ok {
			unlocked[n] = true
			assert.Equal(t, n, a.CriteriaValue)
			assert.Equal(t, achievement.CriteriaStreak, a.CriteriaType)
			assert.NotEmpty(t, a.Message)
		}
	}

	want := map[int]bool{
		7: true, 14: true, 30: true, 90: true,
		100: true, 200: true, 300: true, 400: true, 500: true,
		600: true, 700: true, 800: true, 900: true, 1000: true,
	}
	assert.Equal(t, want, unlocked)
}

func TestForStreak_Messages(t *testing.T) {
	a, ok := achievement.ForStreak(300)
	assert.True(t, ok)
	assert.Contains(t, a.Message, "300")
	assert.Equal(t, "streak_300", a.Name)

	a, ok = achievement.ForStreak(7)
	assert.True(t, ok)
	assert.Equal(t, "one_week", a.Name)

	_, ok = achievement.ForStreak(0)
	assert.False(t, ok)
}
