package orchestrator

import (
	"testing"
	"time"
)

func payloadWithHue(hue float64) Payload {
	p := Payload{}
	p.State.Hue = hue
	return p
}

func recvTimeout(t *testing.T, ch <-chan Payload) Payload {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for payload")
		return Payload{}
	}
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	b := NewBus()
	a := make(chan Payload, 1)
	c := make(chan Payload, 1)
	defer b.Subscribe("a", a)()
	defer b.Subscribe("c", c)()

	if got := b.SubscriberCount(); got != 2 {
		t.Fatalf("SubscriberCount = %d, want 2", got)
	}

	b.Publish(payloadWithHue(42))
	if got := recvTimeout(t, a).State.Hue; got != 42 {
		t.Errorf("subscriber a got hue %v, want 42", got)
	}
	if got := recvTimeout(t, c).State.Hue; got != 42 {
		t.Errorf("subscriber c got hue %v, want 42", got)
	}
}

func TestBusConflatesForSlowSubscriber(t *testing.T) {
	b := NewBus()
	ch := make(chan Payload, 1)
	defer b.Subscribe("slow", ch)()

	// Ten publishes against an unread subscriber: at most one payload is
	// already in flight, everything else collapses into the newest.
	for hue := 1.0; hue <= 10; hue++ {
		b.Publish(payloadWithHue(hue))
	}

	received := 0
	for {
		p := recvTimeout(t, ch)
		received++
		if p.State.Hue == 10 {
			break
		}
		if received > 2 {
			t.Fatalf("slow subscriber saw %d payloads without reaching the newest", received)
		}
	}
	if received > 2 {
		t.Errorf("conflation delivered %d payloads, want at most 2", received)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	b := NewBus()
	ch := make(chan Payload, 1)
	unsub := b.Subscribe("x", ch)

	unsub()
	if got := b.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount after unsubscribe = %d, want 0", got)
	}

	b.Publish(payloadWithHue(7))
	select {
	case p := <-ch:
		t.Errorf("received payload %v after unsubscribe", p.State.Hue)
	case <-time.After(50 * time.Millisecond):
	}

	unsub() // second call is a no-op
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	b := NewBus()
	b.Publish(payloadWithHue(1)) // must not panic or block
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount = %d, want 0", got)
	}
}
