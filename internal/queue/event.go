// Package queue defines the domain events exchanged over RabbitMQ together
// with the publisher used by the services and the consumer that appends
// them to the activity log.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Queue names. Messages go through the default exchange with the queue name
// as routing key.
const (
	QueueReservationConfirmed = "fitzone.reservation.confirmed"
	QueueMembershipPurchased  = "fitzone.membership.purchased"
	QueueOrderPlaced          = "fitzone.order.placed"
)

// Queues lists every queue the consumer listens to.
var Queues = []string{QueueReservationConfirmed, QueueMembershipPurchased, QueueOrderPlaced}

// Envelope wraps every published payload.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into a fresh envelope of the given type.
func NewEnvelope(typ string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{ID: uuid.NewString(), Type: typ, OccurredAt: time.Now().UTC(), Payload: raw}, nil
}

// ReservationConfirmed is published after a class booking is stored.
type ReservationConfirmed struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	ClassID       uint64 `json:"class_id"`
	ClassName     string `json:"class_name"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// MembershipPurchased is published for every membership created, including
// the mirrored one of a shared plan activation.
type MembershipPurchased struct {
	MembershipID  uint64 `json:"membership_id"`
	UserID        uint64 `json:"user_id"`
	PlanType      string `json:"plan_type"`
	Price         int64  `json:"price"`
	PaymentMethod string `json:"payment_method"`
	EndDate       string `json:"end_date"`
	Shared        bool   `json:"shared"`
}

// OrderPlaced is published after checkout stores an order.
type OrderPlaced struct {
	OrderID       uint64 `json:"order_id"`
	Reference     string `json:"reference"`
	UserID        uint64 `json:"user_id"`
	Items         int    `json:"items"`
	Total         int64  `json:"total"`
	PaymentMethod string `json:"payment_method"`
}
