// Package notification pushes "slot freed" web-push notices to clients
// watching a room whenever one of its reservations is cancelled.
package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"booking-rooms-backend/internal/model"
)

// Sender sends a single web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// webPushSender is the real Sender backed by the webpush library.
type webPushSender struct{}

func (s *webPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// FreedSlot describes a cancelled reservation worth announcing.
type FreedSlot struct {
	RoomID int64
	Start  time.Time
	End    time.Time
}

// WorkerPool fans cancelled-reservation events out to room watchers.
type WorkerPool struct {
	size    int
	jobs    chan FreedSlot
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a worker pool of the given size.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan FreedSlot, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &webPushSender{},
	}
}

// Start launches the worker goroutines; they exit when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// Dispatch queues a freed slot for announcement.
func (wp *WorkerPool) Dispatch(slot FreedSlot) {
	wp.jobs <- slot
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case slot := <-wp.jobs:
			wp.notifyWatchers(ctx, slot)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// notifyWatchers loads every subscription watching the room and sends each
// a freed-slot notice.
func (wp *WorkerPool) notifyWatchers(ctx context.Context, slot FreedSlot) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_room_mapping srm ON srm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("srm.room_id = ?", slot.RoomID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("error fetching subscriptions for room %d: %v", slot.RoomID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	roomLabel := fmt.Sprintf("%d", slot.RoomID)
	var room model.Room
	if err := wp.db.WithContext(ctx).
		Select("name").
		First(&room, slot.RoomID).Error; err != nil {
		log.Printf("error fetching room %d: %v", slot.RoomID, err)
	} else if room.Name != "" {
		roomLabel = room.Name
	}

	message := fmt.Sprintf("Room %s is free again from %s to %s.",
		roomLabel,
		slot.Start.UTC().Format("2006-01-02 15:04"),
		slot.End.UTC().Format("15:04"))

	log.Printf("sending %d freed-slot notices for room %d", len(subscriptions), slot.RoomID)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// 410 means the browser dropped the subscription; prune it.
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
