package handlers

import (
	"context"
	"net/http"
	"time"

	"constanciaAPI/internal/types/profile"
	"constanciaAPI/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	p, err := h.profileService.GetProfile(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, msgGenericRetry)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) UpdateTimezone(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req profile.UpdateTimezoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.profileService.UpdateTimezone(ctx, userID, req.Timezone)
	if err != nil {
		respondWithServiceError(w, err, msgGenericRetry)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}
