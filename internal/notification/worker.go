package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"github.com/augesrob/Badger-sub000/internal/model"
	"github.com/augesrob/Badger-sub000/internal/reconcile"
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

// WorkerPool fans movement status changes out to browser subscriptions.
type WorkerPool struct {
	size    int
	jobs    chan reconcile.StatusChange
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan reconcile.StatusChange, size*16),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case change := <-wp.jobs:
			wp.notify(ctx, change)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a change without blocking the caller. When the queue is
// full the change is dropped and logged.
func (wp *WorkerPool) Dispatch(change reconcile.StatusChange) {
	select {
	case wp.jobs <- change:
	default:
		log.Printf("Notification queue full, dropping update for truck %s", change.TruckNumber)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan reconcile.StatusChange {
	return wp.jobs
}

// Message renders the notification text for a change.
func Message(change reconcile.StatusChange) string {
	if change.Door == "" {
		return fmt.Sprintf("Truck %s is %s (%s)", change.TruckNumber, change.Status, change.DoorStatus)
	}
	return fmt.Sprintf("Truck %s is %s at door %s (%s)", change.TruckNumber, change.Status, change.Door, change.DoorStatus)
}

// notify sends the change to every subscription watching the truck. A
// subscription that watches no trucks in particular gets everything.
func (wp *WorkerPool) notify(ctx context.Context, change reconcile.StatusChange) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM watched_trucks wt WHERE wt.push_subscription_endpoint = push_subscriptions.endpoint)"+
			" OR EXISTS (SELECT 1 FROM watched_trucks wt WHERE wt.push_subscription_endpoint = push_subscriptions.endpoint AND wt.truck_number = ?)",
			change.TruckNumber).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for truck %s: %v", change.TruckNumber, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for truck %s", len(subscriptions), change.TruckNumber)
	message := []byte(Message(change))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, message)
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
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
