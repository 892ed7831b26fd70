package broker

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSub records delivered payloads on a channel.
type fakeSub struct {
	ch chan interface{}
}

func newFakeSub() *fakeSub {
	return &fakeSub{ch: make(chan interface{}, 10)}
}

func (f *fakeSub) WriteJSON(v interface{}) error {
	f.ch <- v
	return nil
}

func (f *fakeSub) expect(t *testing.T, want interface{}) {
	t.Helper()
	select {
	case got := <-f.ch:
		if got != want {
			t.Errorf("delivered %v, want %v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func (f *fakeSub) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case got := <-f.ch:
		t.Errorf("unexpected delivery: %v", got)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestPublishToTopic(t *testing.T) {
	b := New()
	ride7 := newFakeSub()
	ride8 := newFakeSub()
	b.Subscribe(RideTopic(7), ride7)
	b.Subscribe(RideTopic(8), ride8)

	b.Publish(RideTopic(7), "hello")

	ride7.expect(t, "hello")
	ride8.expectNothing(t)
}

func TestPublishToUserQueue(t *testing.T) {
	b := New()
	alice := newFakeSub()
	bob := newFakeSub()
	b.SubscribeQueue(1, alice)
	b.SubscribeQueue(2, bob)

	b.PublishToUser(1, "private")

	alice.expect(t, "private")
	bob.expectNothing(t)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	sub := newFakeSub()
	b.Subscribe(TopicPublic, sub)
	b.Publish(TopicPublic, "first")
	sub.expect(t, "first")

	b.Unsubscribe(TopicPublic, sub)
	b.Publish(TopicPublic, "second")
	sub.expectNothing(t)
}

func TestDropRemovesFromTopicsAndQueues(t *testing.T) {
	b := New()
	sub := newFakeSub()
	b.Subscribe(RideTopic(7), sub)
	b.SubscribeQueue(3, sub)

	b.Drop(sub)

	b.Publish(RideTopic(7), "x")
	b.PublishToUser(3, "y")
	sub.expectNothing(t)
}

// failingSub errors on every write; the broker should unregister it.
type failingSub struct {
	writes int32
}

func (f *failingSub) WriteJSON(v interface{}) error {
	atomic.AddInt32(&f.writes, 1)
	return errors.New("connection gone")
}

func TestFailedWriteUnregistersSubscriber(t *testing.T) {
	b := New()
	bad := &failingSub{}
	good := newFakeSub()
	b.Subscribe(TopicPublic, bad)
	b.Subscribe(TopicPublic, good)

	b.Publish(TopicPublic, "first")
	good.expect(t, "first")

	b.Publish(TopicPublic, "second")
	good.expect(t, "second")

	if n := atomic.LoadInt32(&bad.writes); n != 1 {
		t.Errorf("failing subscriber written %d times, want 1", n)
	}
}
