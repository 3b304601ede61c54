package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends a payload to the named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

// NopPublisher drops every event. It is used when event publishing is
// disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// AMQPPublisher publishes persistent JSON messages. The connection is opened
// lazily and reopened after a failure, so a broker outage never blocks
// startup.
type AMQPPublisher struct {
	url    string
	logger echo.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
}

func NewAMQPPublisher(url string, logger echo.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger, declared: map[string]bool{}}
}

// channel must be called with mu held.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.declared = map[string]bool{}
	return ch, nil
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Publish wraps payload in an Envelope typed after the queue and sends it.
// Errors are logged and returned; callers treat them as non-fatal.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, payload any) error {
	env, err := NewEnvelope(queue, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		p.logger.Warnf("rabbitmq: %v", err)
		return err
	}
	if !p.declared[queue] {
		// Durable so messages survive broker restarts.
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.closeLocked()
			p.logger.Warnf("rabbitmq: queue declare %s failed: %v", queue, err)
			return err
		}
		p.declared[queue] = true
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Type:         env.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.closeLocked()
		p.logger.Warnf("rabbitmq: publish %s failed: %v", queue, err)
		return err
	}
	return nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}
