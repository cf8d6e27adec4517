package handlers

import (
	"context"
	"net/http"
	"time"

	"constanciaAPI/internal/types/training"
	"constanciaAPI/services"
)

type PlanHandler struct {
	planService *services.PlanService
}

func NewPlanHandler(planService *services.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

// GET /api/v1/plans
func (h *PlanHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, training.PlansResponse{Plans: h.planService.Catalog().All()})
}

// GET /api/v1/plan/progress
func (h *PlanHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	progress, err := h.planService.GetPlanProgress(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, msgGenericRetry)
		return
	}

	respondWithJSON(w, http.StatusOK, progress)
}

// POST /api/v1/plan/select
func (h *PlanHandler) SelectPlan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req training.SelectPlanRequest
	if err := decodeJSON(w, r, &req); err != nil || req.PlanID == "" {
		respondWithError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	progress, err := h.planService.SelectPlan(ctx, userID, req.PlanID)
	if err != nil {
		respondWithServiceError(w, err, msgGenericRetry)
		return
	}

	respondWithJSON(w, http.StatusOK, progress)
}

// POST /api/v1/plan/advance
func (h *PlanHandler) AdvancePlan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	next, advanced, err := h.planService.AdvanceToNextPlan(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, msgGenericRetry)
		return
	}

	respondWithJSON(w, http.StatusOK, training.AdvanceResponse{Advanced: advanced, Plan: next})
}

// POST /api/v1/plan/scale
func (h *PlanHandler) ScalePrescriptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req training.ScaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	values, multiplier, err := h.planService.ScalePrescriptions(ctx, userID, req.Values)
	if err != nil {
		respondWithServiceError(w, err, msgGenericRetry)
		return
	}

	respondWithJSON(w, http.StatusOK, training.ScaleResponse{LoadMultiplier: multiplier, Values: values})
}
