package model

import "time"

// Reservation statuses.
const (
	ReservationActive    = "active"
	ReservationCancelled = "cancelled"
)

// Reservation records one user's booking of a class occurrence. Date holds a
// calendar day at UTC midnight; Time is the slot's time range label.
type Reservation struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	ClassID   uint64    `json:"classId"`
	ClassName string    `json:"className"`
	Date      time.Time `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReservationWithClass is a reservation joined with display fields of its
// class, used by the "my reservations" listing.
type ReservationWithClass struct {
	Reservation
	Instructor string `json:"instructor"`
	Duration   string `json:"duration"`
	Color      string `json:"color"`
}
