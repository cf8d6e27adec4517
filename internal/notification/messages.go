package notification

import (
	"fmt"
	"math/rand/v2"
)

var motivationalMessages = []string{
	"Discipline is the bridge between goals and results.",
	"Don't wait for motivation. Be disciplined.",
	"Every rep brings you closer to your goal.",
	"The body achieves what the mind believes.",
	"Consistency beats intensity.",
	"Train today to be strong tomorrow.",
	"The pain of training is temporary. The pride is permanent.",
	"You are stronger than you think.",
	"The only bad workout is the one that didn't happen.",
	"Discipline your mind, transform your body.",
}

const (
	DailyReminderTitle = "🏋️ Time to train!"
	StreakRiskTitle    = "⚠️ Streak at risk!"
	PlanAdvancedTitle  = "🚀 New plan unlocked!"
)

func RandomMotivationalMessage() string {
	return motivationalMessages[rand.IntN(len(motivationalMessages))]
}

func MotivationalMessages() []string {
	return append([]string(nil), motivationalMessages...)
}

func StreakRiskBody(currentStreak int) string {
	return fmt.Sprintf("You have a %d day streak. Don't lose it!", currentStreak)
}

func PlanAdvancedBody(planTitle string) string {
	return fmt.Sprintf("Plan complete! You moved on to %s. Loads go up from here.", planTitle)
}
