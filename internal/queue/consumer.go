package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ActivityConsumer listens to every domain queue and appends one line per
// event to <dir>/activity.log.
type ActivityConsumer struct {
	URL    string
	Dir    string
	Logger echo.Logger

	mu sync.Mutex // serialises file appends across queues
}

func NewActivityConsumer(url, dir string, logger echo.Logger) *ActivityConsumer {
	if dir == "" {
		dir = "logs"
	}
	return &ActivityConsumer{URL: url, Dir: dir, Logger: logger}
}

// Run connects, consumes and reconnects with exponential backoff until ctx
// is cancelled. Offending messages are rejected without requeue so a bad
// payload cannot loop.
func (c *ActivityConsumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warnf("activity-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		c.Logger.Warnf("activity-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
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

func (c *ActivityConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warnf("activity-consumer: set QoS failed: %v", err)
	}

	merged := make(chan amqp.Delivery)
	var wg sync.WaitGroup
	for _, q := range Queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		wg.Add(1)
		go func(in <-chan amqp.Delivery) {
			defer wg.Done()
			for d := range in {
				select {
				case merged <- d:
				case <-ctx.Done():
					return
				}
			}
		}(msgs)
	}
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return errors.New("deliveries channel closed")
		case d := <-merged:
			if err := c.Handle(d.Body); err != nil {
				c.Logger.Warnf("activity-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and appends its log line.
func (c *ActivityConsumer) Handle(body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line, err := FormatLine(env)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.Dir, "activity.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders an envelope as a single human-friendly log line.
func FormatLine(env Envelope) (string, error) {
	ts := env.OccurredAt.UTC().Format(time.RFC3339)
	switch env.Type {
	case QueueReservationConfirmed:
		var ev ReservationConfirmed
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return "", fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return fmt.Sprintf("[%s] Reservation confirmed | reservation_id=%d | user_id=%d | class=%q | date=%s | time=%q\n",
			ts, ev.ReservationID, ev.UserID, ev.ClassName, ev.Date, ev.Time), nil
	case QueueMembershipPurchased:
		var ev MembershipPurchased
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return "", fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return fmt.Sprintf("[%s] Membership purchased | membership_id=%d | user_id=%d | plan=%s | price=%d | payment=%s | ends=%s | shared=%t\n",
			ts, ev.MembershipID, ev.UserID, ev.PlanType, ev.Price, ev.PaymentMethod, ev.EndDate, ev.Shared), nil
	case QueueOrderPlaced:
		var ev OrderPlaced
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return "", fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return fmt.Sprintf("[%s] Order placed | order_id=%d | ref=%s | user_id=%d | items=%d | total=%d | payment=%s\n",
			ts, ev.OrderID, ev.Reference, ev.UserID, ev.Items, ev.Total, ev.PaymentMethod), nil
	}
	return "", fmt.Errorf("unknown event type %q", env.Type)
}
