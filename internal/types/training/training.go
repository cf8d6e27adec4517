package training

import "constanciaAPI/internal/plan"

type PlansResponse struct {
	Plans []plan.Plan `json:"plans"`
}

type SelectPlanRequest struct {
	PlanID string `json:"plan_id"`
}

type AdvanceResponse struct {
	Advanced bool       `json:"advanced"`
	Plan     *plan.Plan `json:"plan,omitempty"`
}

// ScaleRequest carries prescriptions such as "6-10 reps" to be scaled by the
// active plan's load multiplier.
type ScaleRequest struct {
	Values []string `json:"values"`
}

type ScaleResponse struct {
	LoadMultiplier float64  `json:"load_multiplier"`
	Values         []string `json:"values"`
}
