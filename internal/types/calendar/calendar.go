package calendar

import "constanciaAPI/internal/daykey"

type CalendarDay struct {
	Date    daykey.DayKey `json:"date"`
	Trained bool          `json:"trained"`
	IsToday bool          `json:"is_today"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}
