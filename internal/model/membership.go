package model

import "time"

// Membership statuses.
const (
	MembershipActive    = "active"
	MembershipExpired   = "expired"
	MembershipCancelled = "cancelled"
	MembershipPending   = "pending"
)

// Verification holds the identity data collected for the senior plan.
type Verification struct {
	DNI    string `json:"dni"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// SharedInfo describes the two-person plan link between an owner membership
// and the mirrored one created on activation.
type SharedInfo struct {
	IsShared            bool    `json:"isShared"`
	Code                string  `json:"membershipCode,omitempty"`
	MainUserID          uint64  `json:"mainUserId,omitempty"`
	SecondUserID        *uint64 `json:"secondUserId,omitempty"`
	SecondUserActivated bool    `json:"secondUserActivated"`
}

// Membership mirrors the `memberships` table.
type Membership struct {
	ID                      uint64        `json:"id"`
	UserID                  uint64        `json:"userId"`
	PlanType                string        `json:"planType"`
	Price                   int64         `json:"price"`
	StartDate               time.Time     `json:"startDate"`
	EndDate                 time.Time     `json:"endDate"`
	Status                  string        `json:"status"`
	PaymentMethod           string        `json:"paymentMethod"`
	TrainingDays            []string      `json:"trainingDays,omitempty"`
	Verification            *Verification `json:"verificationData,omitempty"`
	Shared                  SharedInfo    `json:"sharedMembership"`
	RenewalNotificationSent bool          `json:"renewalNotificationSent"`
	CreatedAt               time.Time     `json:"createdAt"`
}

// PendingUser is the second person of a two-person plan waiting to activate
// their account with the owner's code.
type PendingUser struct {
	ID             uint64    `json:"id"`
	FullName       string    `json:"fullName"`
	Age            int       `json:"age"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	MembershipCode string    `json:"membershipCode"`
	MainUserID     uint64    `json:"mainUserId"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// PendingUserTTL is how long an unactivated second person is kept.
const PendingUserTTL = 30 * 24 * time.Hour
