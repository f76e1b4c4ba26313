package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ray-remotestate/storefront/models"
)

type fakeChannel struct {
	mu        sync.Mutex
	exchange  string
	kind      string
	published []amqp.Publishing
	keys      []string
	acks      chan amqp.Confirmation
	// confirm decides the broker's answer per delivery tag. Tags it returns
	// false for get no confirm at all.
	confirm func(tag uint64) (ack, send bool)
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		acks:    make(chan amqp.Confirmation, 8),
		confirm: func(uint64) (bool, bool) { return true, true },
	}
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.exchange, f.kind = name, kind
	return nil
}

func (f *fakeChannel) GetNextPublishSeqNo() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.published) + 1)
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	f.published = append(f.published, msg)
	f.keys = append(f.keys, key)
	tag := uint64(len(f.published))
	f.mu.Unlock()
	if ack, send := f.confirm(tag); send {
		f.acks <- amqp.Confirmation{DeliveryTag: tag, Ack: ack}
	}
	return nil
}

func (f *fakeChannel) Close() error {
	close(f.acks)
	return nil
}

func event(id string, to models.OrderStatus) models.OrderEvent {
	return models.OrderEvent{OrderID: id, From: models.OrderAccepted, To: to, SellerID: "p1", OccurredAt: time.Now().UTC()}
}

func TestPublishOrderEvent(t *testing.T) {
	ch := newFakeChannel()
	p, err := NewPublisher(ch, ch.acks, "merchant.orders", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if ch.exchange != "merchant.orders" || ch.kind != "topic" {
		t.Errorf("expected topic exchange declared, got %s/%s", ch.exchange, ch.kind)
	}

	if err := p.PublishOrderEvent(context.Background(), event("o-1", models.OrderReadyForPickup)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ch.published) != 1 || ch.keys[0] != "order.ready_for_pickup" {
		t.Fatalf("unexpected publish %v", ch.keys)
	}
	msg := ch.published[0]
	if msg.CorrelationId != "o-1" || msg.DeliveryMode != amqp.Persistent {
		t.Errorf("unexpected message properties %+v", msg)
	}
	var got models.OrderEvent
	if err := json.Unmarshal(msg.Body, &got); err != nil || got.To != models.OrderReadyForPickup || got.SellerID != "p1" {
		t.Errorf("unexpected body %s (%v)", msg.Body, err)
	}
}

func TestPublishNack(t *testing.T) {
	ch := newFakeChannel()
	ch.confirm = func(uint64) (bool, bool) { return false, true }
	p, _ := NewPublisher(ch, ch.acks, "merchant.orders", nil)
	defer p.Close()
	if err := p.PublishOrderEvent(context.Background(), event("o-1", models.OrderCancelled)); !errors.Is(err, ErrNack) {
		t.Errorf("expected NACK to surface as an error, got %v", err)
	}
}

func TestLateConfirmDoesNotLeakIntoNextPublish(t *testing.T) {
	ch := newFakeChannel()
	// the broker stays silent on tag 1 until tag 2 is published, then NACKs
	// tag 1 late and ACKs tag 2
	ch.confirm = func(tag uint64) (bool, bool) {
		if tag == 1 {
			return false, false
		}
		ch.acks <- amqp.Confirmation{DeliveryTag: 1, Ack: false}
		return true, true
	}
	p, _ := NewPublisher(ch, ch.acks, "merchant.orders", nil)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.PublishOrderEvent(ctx, event("o-1", models.OrderAccepted)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the first publish to time out, got %v", err)
	}
	if err := p.PublishOrderEvent(context.Background(), event("o-2", models.OrderAccepted)); err != nil {
		t.Errorf("expected the second publish to get its own ACK, got %v", err)
	}
}

func TestPublishWithoutConfirms(t *testing.T) {
	ch := newFakeChannel()
	ch.confirm = func(uint64) (bool, bool) { return false, false }
	p, _ := NewPublisher(ch, nil, "merchant.orders", nil)
	if err := p.PublishOrderEvent(context.Background(), event("o-1", models.OrderAccepted)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
