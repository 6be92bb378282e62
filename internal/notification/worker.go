package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"maintenance-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool sends low-stock alerts for spare parts to the subscribed browsers.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, log *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size*16),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug("worker started", zap.Int("worker", id))
	for {
		select {
		case sparePartID := <-wp.jobs:
			wp.log.Debug("worker processing spare part", zap.Int("worker", id), zap.Int64("spare_part_id", sparePartID))
			wp.sendNotificationsForSparePart(ctx, sparePartID)
		case <-ctx.Done():
			wp.log.Debug("worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a low-stock alert. It never blocks: when the queue is full the alert is dropped.
func (wp *WorkerPool) Dispatch(sparePartID int64) {
	select {
	case wp.jobs <- sparePartID:
	default:
		wp.log.Warn("notification queue full, dropping low-stock alert", zap.Int64("spare_part_id", sparePartID))
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

// sendNotificationsForSparePart notifies every subscription watching the spare part.
func (wp *WorkerPool) sendNotificationsForSparePart(ctx context.Context, sparePartID int64) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_spare_parts ssp ON ssp.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("ssp.spare_part_id = ?", sparePartID).
		Find(&subscriptions).Error
	if err != nil {
		wp.log.Error("error fetching subscriptions", zap.Int64("spare_part_id", sparePartID), zap.Error(err))
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	message := fmt.Sprintf("Spare part %d is running low", sparePartID)
	var part model.SparePart
	if err := wp.db.WithContext(ctx).
		Select("name", "quantity").
		First(&part, sparePartID).Error; err != nil {
		wp.log.Warn("error fetching spare part", zap.Int64("spare_part_id", sparePartID), zap.Error(err))
	} else {
		message = fmt.Sprintf("Spare part %s is running low: %d left", part.Name, part.Quantity)
	}

	wp.log.Info("sending low-stock notifications",
		zap.Int64("spare_part_id", sparePartID),
		zap.Int("subscriptions", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("error sending notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// The push service answers 410 for subscriptions the browser has dropped.
	if resp.StatusCode == http.StatusGone {
		wp.log.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.log.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
