package services

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"constanciaAPI/internal/metrics"
	"constanciaAPI/internal/types/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher pushes stored notifications to the user's devices
// from a small worker pool.
type NotificationDispatcher struct {
	store        NotificationStore
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	queueTimeout time.Duration
}

type DispatchJob struct {
	Notification *notification.Notification
}

func NewNotificationDispatcher(store NotificationStore, workers int) *NotificationDispatcher {
	if workers <= 0 {
		workers = 5
	}
	d := &NotificationDispatcher{
		store:        store,
		workers:      workers,
		jobQueue:     make(chan *DispatchJob, 100),
		stopChan:     make(chan struct{}),
		queueTimeout: 5 * time.Second,
	}
	d.startWorkers()
	return d
}

// SetPushProvider injects the FCM provider from main.go. Without one, jobs are
// consumed and counted as skipped.
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *NotificationDispatcher) worker(id int) {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notif := job.Notification
	logger := log.WithFields(log.Fields{"user_id": notif.UserID, "tag": notif.Tag})

	if d.pushProvider == nil {
		metrics.NotificationsDispatched.WithLabelValues("skipped").Inc()
		logger.Debug("skipping push: no provider configured")
		return
	}

	tokens, err := d.store.GetDeviceTokens(ctx, notif.UserID)
	if err != nil {
		metrics.NotificationsDispatched.WithLabelValues("failed").Inc()
		logger.WithError(err).Warn("could not load device tokens")
		return
	}
	if len(tokens) == 0 {
		metrics.NotificationsDispatched.WithLabelValues("skipped").Inc()
		logger.Debug("skipping push: no registered devices")
		return
	}

	data := map[string]any{"tag": notif.Tag, "notification_id": notif.ID.String()}
	if err := d.pushProvider.SendPush(ctx, tokens, notif.Title, notif.Body, data); err != nil {
		metrics.NotificationsDispatched.WithLabelValues("failed").Inc()
		logger.WithError(err).Warn("push failed")
		return
	}
	metrics.NotificationsDispatched.WithLabelValues("sent").Inc()
}

// Dispatch queues a notification for push delivery. It gives up when the
// queue stays full, the context ends or the dispatcher is stopped.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, notif *notification.Notification) {
	select {
	case <-d.stopChan:
		metrics.NotificationsDispatched.WithLabelValues("dropped").Inc()
		return
	default:
	}

	job := &DispatchJob{Notification: notif}
	timer := time.NewTimer(d.queueTimeout)
	defer timer.Stop()

	select {
	case d.jobQueue <- job:
		log.WithField("notification_id", notif.ID).Debug("notification queued for dispatch")
	case <-timer.C:
		metrics.NotificationsDispatched.WithLabelValues("dropped").Inc()
		log.WithField("notification_id", notif.ID).Warn("failed to queue notification: queue full")
	case <-ctx.Done():
		metrics.NotificationsDispatched.WithLabelValues("dropped").Inc()
	case <-d.stopChan:
		metrics.NotificationsDispatched.WithLabelValues("dropped").Inc()
	}
}

// Stop the dispatcher gracefully
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		log.Info("Stopping notification dispatcher...")
		close(d.stopChan)
		d.wg.Wait()
		log.Info("Notification dispatcher stopped")
	})
}

// LogPushProvider stands in for FCM when no service account is configured.
type LogPushProvider struct{}

func (LogPushProvider) SendPush(_ context.Context, tokens []notification.DeviceToken, title, body string, _ map[string]any) error {
	log.WithField("devices", len(tokens)).Infof("push: %s - %s", title, body)
	return nil
}
