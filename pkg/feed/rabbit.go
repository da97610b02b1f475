package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Filter selects which mutations a subscription receives: one trip, or every
// trip on a route. Zero value subscribes to everything.
type Filter struct {
	TripID        *uuid.UUID
	DepartureCity string
	ArrivalCity   string
}

func (f Filter) routingKey() string {
	switch {
	case f.TripID != nil:
		return "trip." + f.TripID.String()
	case f.DepartureCity != "" && f.ArrivalCity != "":
		return "route." + slug(f.DepartureCity) + "." + slug(f.ArrivalCity)
	default:
		return "#"
	}
}

func slug(city string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(city)), " ", "-")
}

// Source is what subscribers depend on; satisfied by Consumer and by test
// doubles.
type Source interface {
	Subscribe(ctx context.Context, filter Filter) (<-chan Event, error)
}

// Consumer attaches to the broker's topic exchange and turns deliveries into
// normalized Events. Delivery is at-least-once and may be out of order; the
// consumer adds no ordering of its own.
type Consumer struct {
	url      string
	exchange string
	buffer   int
	log      *zap.Logger
}

func NewConsumer(config utils.FeedConfig, log *zap.Logger) *Consumer {
	buffer := config.BufferSize
	if buffer <= 0 {
		buffer = 256
	}
	return &Consumer{
		url:      config.URL,
		exchange: config.Exchange,
		buffer:   buffer,
		log:      log.With(zap.String("component", "feed")),
	}
}

// Subscribe opens a subscription and returns its bounded event channel. The
// channel closes when ctx is cancelled. Connection loss triggers a reconnect
// with capped backoff; every successful (re)attach emits EventResync first,
// because deliveries during the gap are gone.
func (c *Consumer) Subscribe(ctx context.Context, filter Filter) (<-chan Event, error) {
	events := make(chan Event, c.buffer)
	key := filter.routingKey()

	go func() {
		defer close(events)

		var backoff time.Duration
		for {
			started := time.Now()
			err := c.consume(ctx, key, events)
			if ctx.Err() != nil {
				return
			}

			backoff = reconnectDelay(backoff, time.Since(started))
			if err != nil {
				c.log.Warn("Feed connection lost, reconnecting",
					zap.Error(err),
					zap.String("routing_key", key),
					zap.Duration("backoff", backoff),
				)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}()

	return events, nil
}

const (
	baseReconnectDelay = time.Second
	maxReconnectDelay  = 30 * time.Second

	// A session that stayed attached this long counts as healthy, so the
	// next failure starts the backoff ladder over instead of inheriting the
	// cap from outages hours ago.
	healthySessionLen = time.Minute
)

// reconnectDelay picks the wait before the next attach attempt.
func reconnectDelay(previous, session time.Duration) time.Duration {
	if previous == 0 || session >= healthySessionLen {
		return baseReconnectDelay
	}
	delay := previous * 2
	if delay > maxReconnectDelay {
		delay = maxReconnectDelay
	}
	return delay
}

// consume runs one broker session until it fails or ctx is done.
func (c *Consumer) consume(ctx context.Context, key string, events chan<- Event) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		c.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.exchange, err)
	}

	// Server-named exclusive queue: each subscriber gets its own, dropped on
	// disconnect. Missed deliveries are recovered by resync, not requeueing.
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, key, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue to %s: %w", key, err)
	}

	deliveries, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consume: %w", err)
	}

	c.log.Info("Feed attached",
		zap.String("exchange", c.exchange),
		zap.String("routing_key", key),
		zap.String("queue", q.Name),
	)

	// The subscriber must reconcile before trusting the stream.
	if !c.emit(ctx, events, Event{Type: EventResync, Timestamp: time.Now()}) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			ev, err := ParseEvent(msg.Body)
			if err != nil {
				c.log.Warn("Dropping malformed feed message", zap.Error(err))
				msg.Reject(false) // don't requeue malformed messages
				continue
			}

			if !c.emit(ctx, events, ev) {
				msg.Reject(true)
				return nil
			}
			msg.Ack(false)
		}
	}
}

// emit blocks until the event is queued or ctx is done; returns false on
// cancellation.
func (c *Consumer) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
