package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	svix "github.com/svix/svix-webhooks/go"

	"constanciaAPI/internal/types/clerk"
	"constanciaAPI/services"
)

var errWebhookNotConfigured = errors.New("webhook signing secret not configured")

type WebhookHandler struct {
	profileService *services.ProfileService
	verifier       *svix.Webhook
}

// NewWebhookHandler verifies deliveries with the Clerk signing secret
// ("whsec_..."). Without a usable secret every delivery is rejected.
func NewWebhookHandler(profileService *services.ProfileService, secret string) *WebhookHandler {
	h := &WebhookHandler{profileService: profileService}
	if secret == "" {
		log.Warn("CLERK_WEBHOOK_SECRET not set, Clerk webhooks will be rejected")
		return h
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		log.WithError(err).Error("invalid CLERK_WEBHOOK_SECRET, Clerk webhooks will be rejected")
		return h
	}
	h.verifier = wh
	return h
}

// verify checks the svix-id, svix-timestamp and svix-signature headers Clerk
// signs deliveries with, including the timestamp tolerance.
func (h *WebhookHandler) verify(header http.Header, body []byte) error {
	if h.verifier == nil {
		return errWebhookNotConfigured
	}
	return h.verifier.Verify(body, header)
}

func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		log.WithError(err).Warn("error reading webhook body")
		http.Error(w, "Error reading body", http.StatusBadRequest)
		return
	}

	if err := h.verify(r.Header, body); err != nil {
		log.WithError(err).Warn("invalid webhook signature")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var event clerk.ClerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.WithError(err).Warn("error parsing webhook")
		http.Error(w, "Error parsing webhook", http.StatusBadRequest)
		return
	}

	log.Infof("Received webhook event: %s", event.Type)

	ctx := r.Context()
	switch event.Type {
	case "user.created":
		if err := h.handleUserCreated(ctx, event.Data); err != nil {
			log.WithError(err).Error("error handling user.created")
			http.Error(w, "Error processing webhook", http.StatusInternalServerError)
			return
		}

	case "user.deleted":
		if err := h.handleUserDeleted(ctx, event.Data); err != nil {
			log.WithError(err).Error("error handling user.deleted")
			http.Error(w, "Error processing webhook", http.StatusInternalServerError)
			return
		}

	default:
		log.Debugf("Unhandled webhook event type: %s", event.Type)
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WebhookHandler) handleUserCreated(ctx context.Context, data json.RawMessage) error {
	var userData clerk.ClerkUserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}
	if userData.ID == "" {
		return errors.New("user.created without an id")
	}

	timezone := userData.PublicMetadata.Timezone
	if timezone == "" {
		timezone = userData.UnsafeMetadata.Timezone
	}

	if _, err := h.profileService.Create(ctx, userData.ID, timezone); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (h *WebhookHandler) handleUserDeleted(ctx context.Context, data json.RawMessage) error {
	var deleted clerk.DeletedObject
	if err := json.Unmarshal(data, &deleted); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	err := h.profileService.DeleteByClerkID(ctx, deleted.ID)
	if errors.Is(err, services.ErrUserNotFound) {
		// never synced or already removed
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
