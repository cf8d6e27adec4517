package achievement

import "fmt"

type CriteriaType string

const (
	CriteriaStreak CriteriaType = "streak"
)

// Tag groups achievement notifications so a client replaces rather than
// stacks them.
const Tag = "streak-achievement"

type Achievement struct {
	Name          string       `json:"name"`
	Title         string       `json:"title"`
	Message       string       `json:"message"`
	CriteriaType  CriteriaType `json:"criteria_type"`
	CriteriaValue int          `json:"criteria_value"`
}

var milestones = map[int]struct{ name, message string }{
	7:  {"one_week", "🎉 A full week! You're unstoppable!"},
	14: {"two_weeks", "🏆 Two weeks! Discipline became a habit!"},
	30: {"one_month", "🔥 A whole month! You're a machine!"},
	90: {"ninety_days", "💎 90 days! Complete transformation!"},
}

// ForStreak returns the achievement unlocked by reaching streak, if any:
// 7, 14, 30 and 90 days, then every multiple of 100.
func ForStreak(streak int) (Achievement, bool) {
	if streak <= 0 {
		return Achievement{}, false
	}

	if m, ok := milestones[streak]; ok {
		return Achievement{
			Name:          m.name,
			Title:         "🎯 New Achievement!",
			Message:       m.message,
			CriteriaType:  CriteriaStreak,
			CriteriaValue: streak,
		}, true
	}

	if streak%100 == 0 {
		return Achievement{
			Name:          fmt.Sprintf("streak_%d", streak),
			Title:         "🎯 New Achievement!",
			Message:       fmt.Sprintf("🌟 %d days! You're a legend!", streak),
			CriteriaType:  CriteriaStreak,
			CriteriaValue: streak,
		}, true
	}

	return Achievement{}, false
}
