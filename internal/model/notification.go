package model

import "time"

// Notification types.
const (
	NotifyMembershipExpiring = "membership_expiring"
	NotifyMembershipExpired  = "membership_expired"
	NotifyPaymentReminder    = "payment_reminder"
	NotifyGeneral            = "general"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
