package service

import (
	"errors"
	"fmt"
)

// Error is a business-rule failure whose message is safe to show to the
// client. Handlers render it as {success:false,message}.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Err }

func newErr(msg string) *Error { return &Error{Msg: msg} }

// invalid wraps a lower-level validation error, keeping its message.
func invalid(err error) error { return &Error{Msg: err.Error(), Err: err} }

func invalidf(format string, args ...any) error { return &Error{Msg: fmt.Sprintf(format, args...)} }

var (
	ErrEmailTaken          = newErr("a user with this email already exists")
	ErrEmailsTaken         = newErr("one of the emails already exists")
	ErrInvalidCredentials  = newErr("invalid credentials")
	ErrInvalidCode         = newErr("invalid code")
	ErrMissingFields       = newErr("missing required fields")
	ErrClassNotFound       = newErr("class not found")
	ErrClassFull           = newErr("class is full for that date and time")
	ErrAlreadyReserved     = newErr("you already have a reservation for this class")
	ErrReservationMissing  = newErr("reservation not found")
	ErrMembershipRequired  = newErr("an active membership is required to book classes")
	ErrBeyondMembership    = newErr("the date is after your membership end date")
	ErrPastDate            = newErr("cannot book a date in the past")
	ErrNotTrainingDay      = newErr("your plan does not include that weekday")
	ErrEmptyCart           = newErr("cart is empty")
	ErrUserNotFound        = newErr("user not found")
	ErrOrderNotFound       = newErr("order not found")
	ErrNotificationMissing = newErr("notification not found")
	ErrSelfDelete          = newErr("you cannot delete your own account")
	ErrSharedIncomplete    = newErr("both people are required for the two-person plan")
)

// Message returns the client-facing text of err and whether err is a
// business-rule failure.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg, true
	}
	return "", false
}
