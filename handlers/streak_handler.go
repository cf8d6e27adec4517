package handlers

import (
	"context"
	"net/http"
	"time"

	"constanciaAPI/services"
)

type StreakHandler struct {
	streakService *services.StreakService
}

func NewStreakHandler(streakService *services.StreakService) *StreakHandler {
	return &StreakHandler{
		streakService: streakService,
	}
}

// GET /api/v1/streak
func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	status, err := h.streakService.CheckStreakStatus(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, msgGenericRetry)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}
