package model

// ClassCount is a class name with its number of active reservations.
type ClassCount struct {
	ClassName string `json:"className"`
	Count     int    `json:"count"`
}

// MonthCount is a registration count for one calendar month.
type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// ReservationCounts splits a user's active reservations around today.
type ReservationCounts struct {
	Upcoming  int
	Completed int
	Total     int
}
