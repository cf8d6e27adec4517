package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"constanciaAPI/internal/types/notification"
)

// Notifier delivers a user-facing message. Delivery is best effort: failures
// are logged and never returned to the caller.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, body, tag string)
}

type NotificationService struct {
	store      NotificationStore
	dispatcher *NotificationDispatcher
}

func NewNotificationService(store NotificationStore, dispatcher *NotificationDispatcher) *NotificationService {
	return &NotificationService{store: store, dispatcher: dispatcher}
}

// Notify writes the message to the user's inbox, replacing any earlier one
// with the same tag, and hands it to the push dispatcher.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, body, tag string) {
	stored, err := s.store.UpsertNotification(ctx, &notification.Notification{
		UserID: userID,
		Tag:    tag,
		Title:  title,
		Body:   body,
	})
	if err != nil {
		log.WithFields(log.Fields{"user_id": userID, "tag": tag}).WithError(err).Warn("failed to store notification")
		return
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, stored)
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID) (*notification.ListResponse, error) {
	list, err := s.store.ListUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, readFailure("list notifications", err)
	}
	if list == nil {
		list = []*notification.Notification{}
	}
	return &notification.ListResponse{Notifications: list, UnreadCount: len(list)}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	err := s.store.MarkNotificationRead(ctx, userID, notificationID)
	if errors.Is(err, ErrNotificationNotFound) {
		return err
	}
	if err != nil {
		return writeFailure("mark notification read", err)
	}
	return nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, req *notification.RegisterDeviceRequest) error {
	if !req.Valid() {
		return ErrInvalidRequest
	}
	err := s.store.RegisterDevice(ctx, userID, notification.DeviceToken{Token: req.Token, Platform: req.Platform})
	if errors.Is(err, ErrUserNotFound) {
		return err
	}
	if err != nil {
		return writeFailure("register device", err)
	}
	return nil
}
