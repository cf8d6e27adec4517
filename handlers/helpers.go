package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"constanciaAPI/internal/daykey"
	"constanciaAPI/internal/streak"
	"constanciaAPI/middleware"
	"constanciaAPI/services"
)

const (
	msgStreakRetry  = "Could not update your streak. Please try again."
	msgGenericRetry = "Something went wrong. Please try again."
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps a service error to a status. Persistence and
// unexpected errors get retryMsg so internals never reach the client.
func respondWithServiceError(w http.ResponseWriter, err error, retryMsg string) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, daykey.ErrInvalidArgument),
		errors.Is(err, streak.ErrFutureWorkoutDate):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnknownPlan):
		respondWithError(w, http.StatusNotFound, "Unknown plan")
	case errors.Is(err, services.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrNotificationNotFound):
		respondWithError(w, http.StatusNotFound, "Notification not found")
	default:
		log.WithError(err).Error("request failed")
		respondWithError(w, http.StatusInternalServerError, retryMsg)
	}
}

// requireUser reads the internal user id set by middleware.ResolveUser and
// writes the 401 itself when it is missing.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}
