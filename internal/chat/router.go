package chat

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Shanmukha18/ViOLA/internal/broker"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
	"github.com/Shanmukha18/ViOLA/internal/models"
)

var (
	ErrSenderNotFound   = errors.New("sender not found")
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrRideNotFound     = errors.New("ride not found")
)

// Router dispatches inbound chat events to storage and to broker
// destinations. Persistence always happens before fan-out; if the write
// fails nothing is published.
type Router struct {
	db  *gorm.DB
	hub *broker.Broker

	// EchoToSender controls whether a private message is also delivered to
	// the sender's own queue as a send confirmation.
	EchoToSender bool
}

// NewRouter creates a Router with echo-to-sender enabled.
func NewRouter(db *gorm.DB, hub *broker.Broker) *Router {
	return &Router{db: db, hub: hub, EchoToSender: true}
}

// SendMessage persists a chat event and fans it out to the public topic, the
// ride topic when the event is ride-scoped, and the receiver's private queue
// when one is addressed.
func (r *Router) SendMessage(msg *ChatMessage) (*models.Message, error) {
	saved, err := r.saveMessage(msg)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"sender_id": msg.SenderID,
			"ride_id":   msg.RideID,
		}).Error("Failed to persist chat message, suppressing fan-out.")
		return nil, err
	}
	logrus.WithField("message_id", saved.ID).Info("Chat message persisted.")

	if msg.Timestamp == "" {
		msg.Timestamp = saved.CreatedAt.Format(time.RFC3339)
	}

	r.hub.Publish(broker.TopicPublic, Frame{
		Command:     CommandMessage,
		Destination: broker.TopicPublic,
		Payload:     msg,
	})

	if msg.RideID != nil {
		topic := broker.RideTopic(*msg.RideID)
		r.hub.Publish(topic, Frame{
			Command:     CommandMessage,
			Destination: topic,
			Payload:     msg,
		})
		logrus.WithField("topic", topic).Info("Message sent to ride topic.")
	} else {
		logrus.Warn("No rideId provided for message, not sending to ride chat.")
	}

	if receiverID, ok := parseUserID(msg.ReceiverID); ok {
		r.hub.PublishToUser(receiverID, Frame{
			Command:     CommandMessage,
			Destination: broker.QueuePrivate,
			Payload:     msg,
		})
		logrus.WithField("receiver_id", receiverID).Info("Private copy sent to receiver queue.")
	}

	return saved, nil
}

// AddUser announces a user joining a ride chat on the public topic. Join
// events are not persisted.
func (r *Router) AddUser(msg *ChatMessage) {
	logrus.WithFields(logrus.Fields{
		"sender_id": msg.SenderID,
		"ride_id":   msg.RideID,
	}).Info("User joined chat.")
	r.hub.Publish(broker.TopicPublic, Frame{
		Command:     CommandMessage,
		Destination: broker.TopicPublic,
		Payload:     msg,
	})
}

// JoinRide records a ride-chat join for an authenticated session. Without a
// bound principal the join is dropped, since per-user addressing for the
// session is unavailable.
func (r *Router) JoinRide(principal *middleware.Principal, msg *ChatMessage) {
	if principal == nil {
		logrus.WithField("ride_id", msg.RideID).Warn("joinRide without bound principal, ignoring.")
		return
	}
	logrus.WithFields(logrus.Fields{
		"user_id": principal.UserID,
		"ride_id": msg.RideID,
	}).Info("User joined ride chat.")
}

// Private relays a message to the receiver's queue without persisting it.
// When EchoToSender is set the sender's queue gets a confirmation copy.
func (r *Router) Private(msg *ChatMessage) {
	frame := Frame{
		Command:     CommandMessage,
		Destination: broker.QueuePrivate,
		Payload:     msg,
	}
	if receiverID, ok := parseUserID(msg.ReceiverID); ok {
		r.hub.PublishToUser(receiverID, frame)
	}
	if !r.EchoToSender {
		return
	}
	if senderID, ok := parseUserID(msg.SenderID); ok {
		r.hub.PublishToUser(senderID, frame)
	}
}

// saveMessage resolves the event's references and writes a Message row.
// Sender is required; receiver is optional; a ride reference, when present,
// must resolve.
func (r *Router) saveMessage(msg *ChatMessage) (*models.Message, error) {
	senderID, ok := parseUserID(msg.SenderID)
	if !ok {
		return nil, fmt.Errorf("invalid senderId %q", msg.SenderID)
	}
	var sender models.User
	if err := r.db.First(&sender, senderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, fmt.Errorf("looking up sender: %w", err)
	}

	record := models.Message{
		Content:  msg.Content,
		SenderID: sender.ID,
		IsRead:   false,
	}

	if receiverID, ok := parseUserID(msg.ReceiverID); ok {
		var receiver models.User
		if err := r.db.First(&receiver, receiverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrReceiverNotFound
			}
			return nil, fmt.Errorf("looking up receiver: %w", err)
		}
		record.ReceiverID = &receiver.ID
	}

	if msg.RideID != nil {
		var ride models.Ride
		if err := r.db.First(&ride, *msg.RideID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRideNotFound
			}
			return nil, fmt.Errorf("looking up ride: %w", err)
		}
		record.RideID = &ride.ID
	}

	if err := r.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("saving message: %w", err)
	}
	return &record, nil
}

func parseUserID(raw string) (uint, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
