package notification

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"constanciaAPI/internal/types/notification"
)

var ErrAllPushesFailed = errors.New("all push notifications failed")

// messageSender is the part of *messaging.Client used for delivery.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMService struct {
	client messageSender
}

// NewFCMService reads credentials from FCM_SERVICE_ACCOUNT_JSON (base64) and
// falls back to the service account file at localFilePath.
func NewFCMService(ctx context.Context, localFilePath string) (*FCMService, error) {
	var opt option.ClientOption

	encodedCreds := os.Getenv("FCM_SERVICE_ACCOUNT_JSON")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FCM_SERVICE_ACCOUNT_JSON: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Info("FCM: using credentials from FCM_SERVICE_ACCOUNT_JSON")
	} else {
		if localFilePath == "" {
			return nil, errors.New("no firebase credentials configured")
		}
		if _, err := os.Stat(localFilePath); err != nil {
			return nil, fmt.Errorf("firebase credentials file %s: %w", localFilePath, err)
		}
		opt = option.WithCredentialsFile(localFilePath)
		log.Infof("FCM: using credentials file %s", localFilePath)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// buildMessage targets one device. The tag doubles as the collapse key so a
// newer reminder replaces the older one on the device too.
func buildMessage(token notification.DeviceToken, title, body string, data map[string]string) *messaging.Message {
	tag := data["tag"]
	msg := &messaging.Message{
		Token: token.Token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	switch token.Platform {
	case "ios":
		msg.APNS = &messaging.APNSConfig{
			Headers: map[string]string{"apns-collapse-id": tag},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default", ThreadID: tag},
			},
		}
	case "web":
		msg.Webpush = &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title:              title,
				Body:               body,
				Tag:                tag,
				Icon:               "/icons/icon-192x192.png",
				Badge:              "/icons/icon-72x72.png",
				RequireInteraction: tag != "streak-achievement",
			},
		}
	default:
		msg.Android = &messaging.AndroidConfig{
			Priority:    "high",
			CollapseKey: tag,
			Notification: &messaging.AndroidNotification{
				Sound: "default",
				Tag:   tag,
			},
		}
	}
	return msg
}

// SendPush sends one message per token. It only fails when every send failed.
func (s *FCMService) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	if len(tokens) == 0 {
		return nil
	}

	stringData := make(map[string]string, len(data))
	for k, v := range data {
		stringData[k] = fmt.Sprintf("%v", v)
	}

	successCount := 0
	failureCount := 0
	for _, token := range tokens {
		if _, err := s.client.Send(ctx, buildMessage(token, title, body, stringData)); err != nil {
			log.WithField("platform", token.Platform).WithError(err).Warn("FCM: send failed")
			failureCount++
			continue
		}
		successCount++
	}

	log.Debugf("FCM: sent %d messages, %d failed", successCount, failureCount)

	if successCount == 0 && failureCount > 0 {
		return ErrAllPushesFailed
	}
	return nil
}
