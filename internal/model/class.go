package model

import "time"

// Slot is one weekly occurrence of a class: a Spanish weekday name as it is
// displayed ("Lunes", "Miércoles"), a time range ("10:00-11:00") and a
// period label ("mañana", "tarde", "noche").
type Slot struct {
	Day    string `json:"day"`
	Time   string `json:"time"`
	Period string `json:"period"`
}

// Class mirrors the `classes` table. Slots are stored as JSON in the
// classes.slots column.
type Class struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	Slots       []Slot    `json:"slots"`
	Instructor  string    `json:"instructor"`
	Duration    string    `json:"duration"`
	Capacity    int       `json:"capacity"`
	Color       string    `json:"color"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Defaults applied to classes created without these fields.
const (
	DefaultClassDuration   = "60 minutos"
	DefaultClassInstructor = "Instructor FitZone"
	DefaultClassCapacity   = 20
	DefaultClassColor      = "#22c55e"
)
