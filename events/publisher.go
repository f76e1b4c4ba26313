// Package events publishes order status transitions to RabbitMQ so kitchen
// displays and notification workers can follow the merchant's actions.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/models"
)

const (
	publishTimeout = 5 * time.Second
	confirmBuffer  = 16
)

var ErrNack = errors.New("publish NACK from broker")

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	GetNextPublishSeqNo() uint64
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	conn     *amqp.Connection
	ch       Channel
	confirms bool
	exchange string
	log      *logrus.Entry

	// mu keeps the sequence number read and the publish together.
	mu sync.Mutex

	waitMu  sync.Mutex
	waiting map[uint64]chan bool
}

// Dial connects to url, declares the topic exchange and turns on publisher
// confirms.
func Dial(url, exchange string, log *logrus.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer))
	p, err := NewPublisher(ch, acks, exchange, log)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher wraps an open channel. acks may be nil when confirms are off;
// otherwise it is drained until the channel closes.
func NewPublisher(ch Channel, acks <-chan amqp.Confirmation, exchange string, log *logrus.Logger) (*Publisher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	p := &Publisher{
		ch:       ch,
		confirms: acks != nil,
		exchange: exchange,
		log:      log.WithField("component", "events"),
		waiting:  make(map[uint64]chan bool),
	}
	if acks != nil {
		go p.dispatch(acks)
	}
	return p, nil
}

// dispatch hands each confirm to the publish waiting for its delivery tag.
// Confirms nobody waits for any more are dropped.
func (p *Publisher) dispatch(acks <-chan amqp.Confirmation) {
	for conf := range acks {
		p.waitMu.Lock()
		w, ok := p.waiting[conf.DeliveryTag]
		delete(p.waiting, conf.DeliveryTag)
		p.waitMu.Unlock()
		if !ok {
			p.log.WithField("delivery_tag", conf.DeliveryTag).Debug("dropping late confirm")
			continue
		}
		w <- conf.Ack
	}
}

func (p *Publisher) forget(tag uint64) {
	p.waitMu.Lock()
	delete(p.waiting, tag)
	p.waitMu.Unlock()
}

// RoutingKey is order.<status>, lower case, e.g. order.ready_for_pickup.
func RoutingKey(status models.OrderStatus) string {
	return "order." + strings.ToLower(string(status))
}

// PublishOrderEvent sends ev and waits for the broker's confirm.
func (p *Publisher) PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var tag uint64
	confirmed := make(chan bool, 1)

	p.mu.Lock()
	if p.confirms {
		tag = p.ch.GetNextPublishSeqNo()
		p.waitMu.Lock()
		p.waiting[tag] = confirmed
		p.waitMu.Unlock()
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(ev.To), false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		CorrelationId: ev.OrderID,
		Timestamp:     ev.OccurredAt,
		Headers:       amqp.Table{"x-source": "merchant-app"},
		Body:          body,
	})
	p.mu.Unlock()
	if err != nil {
		p.forget(tag)
		return fmt.Errorf("publish order event: %w", err)
	}
	if !p.confirms {
		return nil
	}

	select {
	case ack := <-confirmed:
		if !ack {
			return ErrNack
		}
		p.log.WithFields(logrus.Fields{"order_id": ev.OrderID, "status": ev.To}).Debug("order event published")
		return nil
	case <-ctx.Done():
		p.forget(tag)
		return ctx.Err()
	}
}

func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
