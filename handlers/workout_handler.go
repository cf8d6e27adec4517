package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/types/workout"
	"constanciaAPI/services"
)

type WorkoutHandler struct {
	workoutService *services.WorkoutService
}

func NewWorkoutHandler(workoutService *services.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
	}
}

// POST /api/v1/workouts/complete
func (h *WorkoutHandler) CompleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req workout.CompleteWorkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.workoutService.CompleteWorkout(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err, msgStreakRetry)
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

// GET /api/v1/checkins?since=YYYY-MM-DD
func (h *WorkoutHandler) GetCheckins(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var since *daykey.DayKey
	if raw := r.URL.Query().Get("since"); raw != "" {
		d, err := daykey.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
			return
		}
		since = &d
	}

	history, err := h.workoutService.GetCheckins(ctx, userID, since)
	if err != nil {
		respondWithServiceError(w, err, msgGenericRetry)
		return
	}

	respondWithJSON(w, http.StatusOK, history)
}

// GET /api/v1/calendar?year=2024&month=2
func (h *WorkoutHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	year, errYear := strconv.Atoi(r.URL.Query().Get("year"))
	month, errMonth := strconv.Atoi(r.URL.Query().Get("month"))
	if errYear != nil || errMonth != nil {
		respondWithError(w, http.StatusBadRequest, "year and month are required")
		return
	}

	cal, err := h.workoutService.GetCalendar(ctx, userID, year, month)
	if err != nil {
		respondWithServiceError(w, err, msgGenericRetry)
		return
	}

	respondWithJSON(w, http.StatusOK, cal)
}
