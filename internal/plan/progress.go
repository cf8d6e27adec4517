package plan

import (
	"math"

	"constanciaAPI/internal/daykey"
)

// Assignment is the plan part of a profile. A set CurrentPlanID always comes
// with a PlanStartDate.
type Assignment struct {
	CurrentPlanID *string        `json:"current_plan_id"`
	PlanStartDate *daykey.DayKey `json:"plan_start_date"`
}

type Progress struct {
	Plan            *Plan   `json:"plan"`
	DaysPassed      int     `json:"days_passed"`
	DaysRemaining   int     `json:"days_remaining"`
	ProgressPercent float64 `json:"progress_percent"`
	IsCompleted     bool    `json:"is_completed"`
	LoadMultiplier  float64 `json:"load_multiplier"`
}

func noPlan() Progress {
	return Progress{LoadMultiplier: 1.0}
}

// GetProgress measures the active plan in trained days: the number of
// distinct check-in days on or after the start date. Users with gaps take
// longer than DurationDays of wall-clock time to finish.
//
// A missing assignment or a plan id the catalog does not know both yield the
// zero progress with a 1.0 multiplier.
func GetProgress(catalog *Catalog, a Assignment, checkins []daykey.DayKey) Progress {
	if a.CurrentPlanID == nil || a.PlanStartDate == nil {
		return noPlan()
	}
	p, ok := catalog.Get(*a.CurrentPlanID)
	if !ok {
		return noPlan()
	}

	start := *a.PlanStartDate
	trained := make(map[daykey.DayKey]struct{}, len(checkins))
	for _, c := range checkins {
		if !c.Before(start) {
			trained[c] = struct{}{}
		}
	}
	daysPassed := len(trained)

	return Progress{
		Plan:            &p,
		DaysPassed:      daysPassed,
		DaysRemaining:   max(p.DurationDays-daysPassed, 0),
		ProgressPercent: math.Min(float64(daysPassed)/float64(p.DurationDays)*100, 100),
		IsCompleted:     daysPassed >= p.DurationDays,
		LoadMultiplier:  p.LoadMultiplier,
	}
}

// CanAdvance returns the successor plan when progress is complete and one
// exists.
func CanAdvance(catalog *Catalog, progress Progress) (Plan, bool) {
	if progress.Plan == nil || !progress.IsCompleted {
		return Plan{}, false
	}
	return catalog.Next(progress.Plan.ID)
}
