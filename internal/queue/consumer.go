package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one decoded event. notify.Dispatcher implements it.
type Handler interface {
	Notify(ctx context.Context, ev BookingEvent) error
}

// ConsumerConfig names the queue and its bindings.
type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	Prefetch int
	// Timeout bounds a single Handler call.
	Timeout time.Duration
}

// Consumer reads booking events and passes them to a Handler. Failed
// messages are rejected without requeue: mail is best effort and a poison
// message must not spin.
type Consumer struct {
	cfg     ConsumerConfig
	handler Handler
	log     *slog.Logger
}

func NewConsumer(cfg ConsumerConfig, h Handler, log *slog.Logger) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Consumer{cfg: cfg, handler: h, log: log}
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff (capped at 30s) whenever the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.cfg.URL)
		if err != nil {
			c.log.Warn("notification consumer: dial failed", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("notification consumer: loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		c.log.Warn("notification consumer: set QoS failed", "err", err)
	}
	if err := declareExchange(ch, c.cfg.Exchange); err != nil {
		return err
	}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	for _, kind := range []EventKind{BookingCreated, BookingUpdated, BookingCancelled} {
		if err := ch.QueueBind(q.Name, string(kind), c.cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", kind, err)
		}
	}

	msgs, err := ch.ConsumeWithContext(ctx, q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info("notification consumer started", "queue", q.Name, "exchange", c.cfg.Exchange)

	for d := range msgs {
		if err := c.handleMessage(ctx, d.Body); err != nil {
			c.log.Error("notification consumer: handle message failed",
				"err", err, "message_id", d.MessageId, "type", d.Type)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	switch ev.Kind {
	case BookingCreated, BookingUpdated, BookingCancelled:
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	if ev.Email == "" {
		return errors.New("event has no recipient")
	}
	hctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	return c.handler.Notify(hctx, ev)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
