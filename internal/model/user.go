package model

import "time"

// Roles and account states stored on users.role and users.status.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserActive   = "active"
	UserInactive = "inactive"
)

// User represents a row in the `users` table. PasswordHash never leaves the
// service layer; handlers build their own response shapes or rely on the
// json:"-" tag below.
type User struct {
	ID           uint64    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsActive reports whether the account may log in.
func (u User) IsActive() bool { return u.Status == UserActive }

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
