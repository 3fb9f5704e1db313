package services

import (
	"context"
	"fmt"
	"time"
	"townsquare-api/events"
	"townsquare-api/models"
	"townsquare-api/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationWriter turns relationship bus events into persisted
// notification rows and best-effort emails. It is a plain bus consumer:
// the relationship service knows nothing about it.
type NotificationWriter struct {
	db    *gorm.DB
	store repositories.RelationshipStore
	email *EmailService
	subs  []*events.Subscription
}

func NewNotificationWriter(db *gorm.DB, store repositories.RelationshipStore, email *EmailService, bus *events.Bus) *NotificationWriter {
	w := &NotificationWriter{
		db:    db,
		store: store,
		email: email,
	}

	w.subs = append(w.subs,
		bus.Subscribe(events.TopicFriendRequestAccepted, w.onRequestAccepted),
		bus.Subscribe(events.TopicFriendRequestRejected, w.onRequestRejected),
	)
	return w
}

// Close cancels the bus subscriptions. Must be called on shutdown.
func (w *NotificationWriter) Close() {
	for _, sub := range w.subs {
		sub.Cancel()
	}
}

func (w *NotificationWriter) onRequestAccepted(payload interface{}) {
	accepted, ok := payload.(events.FriendRequestAccepted)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	request, err := w.store.GetRequest(ctx, accepted.RequestID)
	if err != nil {
		fmt.Printf("Failed to load accepted request %s for notification: %v\n", accepted.RequestID, err)
		return
	}

	w.writeNotification(models.NotificationTypeRequestAccepted, request.ReceiverID, request.SenderID)

	// Email delivery happens off the publisher's goroutine.
	go w.sendAcceptedEmail(request.SenderID, request.ReceiverID)
}

func (w *NotificationWriter) onRequestRejected(payload interface{}) {
	rejected, ok := payload.(events.FriendRequestRejected)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	request, err := w.store.GetRequest(ctx, rejected.RequestID)
	if err != nil {
		fmt.Printf("Failed to load rejected request %s for notification: %v\n", rejected.RequestID, err)
		return
	}

	w.writeNotification(models.NotificationTypeRequestRejected, request.ReceiverID, request.SenderID)
}

func (w *NotificationWriter) writeNotification(notificationType models.NotificationType, actorID, targetID string) {
	notification := models.Notification{
		ID:           uuid.New().String(),
		Type:         notificationType,
		ActorUserID:  actorID,
		TargetUserID: targetID,
	}
	if err := w.db.Create(&notification).Error; err != nil {
		fmt.Printf("Failed to create %s notification: %v\n", notificationType, err)
	}
}

func (w *NotificationWriter) sendAcceptedEmail(senderID, receiverID string) {
	var sender, receiver models.User
	if err := w.db.First(&sender, "id = ?", senderID).Error; err != nil {
		return
	}
	if err := w.db.First(&receiver, "id = ?", receiverID).Error; err != nil {
		return
	}

	if err := w.email.SendRequestAcceptedEmail(sender.Email, sender.Name, receiver.Name); err != nil {
		fmt.Printf("Failed to send accepted email to %s: %v\n", sender.Email, err)
	}
}
