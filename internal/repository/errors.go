// Package repository defines the MySQL-backed stores and the error values
// shared with the in-memory implementation. These sentinel values allow
// higher layers such as services and handlers to distinguish failure
// scenarios with errors.Is.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist or is not
// visible to the caller.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user insert or update collides with the
// unique email index.
var ErrEmailExists = errors.New("email already exists")

// ErrClassFull is returned by Book when the class occurrence has no free
// places left.
var ErrClassFull = errors.New("class is full")

// ErrAlreadyReserved is returned by Book when the user already holds an
// active reservation for the same occurrence.
var ErrAlreadyReserved = errors.New("already reserved")

// ErrEmptyCart is returned by checkout when the cart has no items.
var ErrEmptyCart = errors.New("cart is empty")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be applied because of the
// current state of the row, such as activating a shared plan twice.
var ErrConflict = errors.New("conflict")

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
