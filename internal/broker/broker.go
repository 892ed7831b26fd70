package broker

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Destinations understood by the broker. Ride topics are derived with
// RideTopic; private queues are addressed by numeric user id, not by name.
const (
	TopicPublic  = "/topic/public"
	QueuePrivate = "/queue/private"
)

// RideTopic returns the broadcast destination for one ride's chat.
func RideTopic(rideID uint) string {
	return fmt.Sprintf("/topic/ride.%d", rideID)
}

// Subscriber is anything that can receive a JSON payload. gorilla's
// *websocket.Conn satisfies it, and tests plug in fakes.
type Subscriber interface {
	WriteJSON(v interface{}) error
}

type envelope struct {
	destination string
	userID      uint
	payload     interface{}
}

// Broker is the in-process publish/subscribe hub. Topic subscribers are
// keyed by destination string, private queues by user id. Publishing is
// fire-and-forget: a full channel drops the message, a failed write
// unregisters the subscriber.
type Broker struct {
	mu      sync.Mutex
	topics  map[string]map[Subscriber]bool
	queues  map[uint]map[Subscriber]bool
	publish chan envelope
}

// New creates a Broker and starts its delivery goroutine.
func New() *Broker {
	b := &Broker{
		topics:  make(map[string]map[Subscriber]bool),
		queues:  make(map[uint]map[Subscriber]bool),
		publish: make(chan envelope, 100),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	for env := range b.publish {
		b.mu.Lock()
		var targets []Subscriber
		if env.destination != "" {
			for sub := range b.topics[env.destination] {
				targets = append(targets, sub)
			}
		} else {
			for sub := range b.queues[env.userID] {
				targets = append(targets, sub)
			}
		}
		b.mu.Unlock()

		for _, sub := range targets {
			if err := sub.WriteJSON(env.payload); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"destination": env.destination,
					"user_id":     env.userID,
				}).Warn("Failed to deliver message, unregistering subscriber.")
				b.Drop(sub)
			}
		}
	}
}

// Subscribe registers a subscriber on a broadcast destination.
func (b *Broker) Subscribe(destination string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.topics[destination]; !ok {
		b.topics[destination] = make(map[Subscriber]bool)
	}
	b.topics[destination][sub] = true
	logrus.WithField("destination", destination).Debug("Subscriber registered on topic.")
}

// Unsubscribe removes a subscriber from a broadcast destination.
func (b *Broker) Unsubscribe(destination string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.topics[destination]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.topics, destination)
		}
	}
}

// SubscribeQueue registers a subscriber on a user's private queue.
func (b *Broker) SubscribeQueue(userID uint, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.queues[userID]; !ok {
		b.queues[userID] = make(map[Subscriber]bool)
	}
	b.queues[userID][sub] = true
	logrus.WithField("user_id", userID).Debug("Subscriber registered on private queue.")
}

// UnsubscribeQueue removes a subscriber from a user's private queue.
func (b *Broker) UnsubscribeQueue(userID uint, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.queues[userID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.queues, userID)
		}
	}
}

// Drop removes a subscriber from every topic and queue. Called when its
// connection goes away.
func (b *Broker) Drop(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for destination, subs := range b.topics {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.topics, destination)
		}
	}
	for userID, subs := range b.queues {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.queues, userID)
		}
	}
}

// Publish delivers a payload to every subscriber of a broadcast destination.
func (b *Broker) Publish(destination string, payload interface{}) {
	select {
	case b.publish <- envelope{destination: destination, payload: payload}:
	default:
		logrus.WithField("destination", destination).Warn("Broker publish channel full, dropping message.")
	}
}

// PublishToUser delivers a payload to every session on a user's private queue.
func (b *Broker) PublishToUser(userID uint, payload interface{}) {
	select {
	case b.publish <- envelope{userID: userID, payload: payload}:
	default:
		logrus.WithField("user_id", userID).Warn("Broker publish channel full, dropping message.")
	}
}
