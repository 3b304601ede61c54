package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
)

// BookingScope decides what counts as "the same occurrence" for duplicate
// and capacity checks.
type BookingScope int

const (
	// ScopeDate treats every booking of a class on one day as the same
	// occurrence, whatever the time.
	ScopeDate BookingScope = iota
	// ScopeSlot narrows the occurrence to one day and time range.
	ScopeSlot
)

// ReservationRepo persists class reservations. Booking runs inside a
// transaction that locks the class row, so concurrent bookings for the same
// class serialize and the capacity check cannot be raced.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// Location is the gym's time zone. It decides which calendar day an
// instant falls on; set it once at startup.
var Location = time.UTC

// Day returns the calendar day of t in Location, as midnight UTC. Stored
// and parsed dates use the same midnight-UTC form, so they compare
// directly.
func Day(t time.Time) time.Time {
	y, m, d := t.In(Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scopeFilter(scope BookingScope, res *model.Reservation) (string, []any) {
	if scope == ScopeSlot {
		return " AND date=? AND time=?", []any{res.Date, res.Time}
	}
	return " AND date=?", []any{res.Date}
}

// Book admits res when the class exists, the user holds no active booking
// for the same occurrence and the occurrence still has room. On success
// res.ID, ClassName, Status and CreatedAt are filled.
func (r *ReservationRepo) Book(ctx context.Context, res *model.Reservation, scope BookingScope) error {
	res.Date = Day(res.Date)
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		name     string
		capacity int
	)
	err = tx.QueryRowContext(ctx,
		"SELECT name, capacity FROM classes WHERE id=? AND active=1 FOR UPDATE", res.ClassID).Scan(&name, &capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	filter, args := scopeFilter(scope, res)

	var dup int
	dupArgs := append([]any{res.UserID, res.ClassID}, args...)
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE user_id=? AND class_id=? AND status='active'"+filter,
		dupArgs...).Scan(&dup); err != nil {
		return err
	}
	if dup > 0 {
		return ErrAlreadyReserved
	}

	var taken int
	capArgs := append([]any{res.ClassID}, args...)
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE class_id=? AND status='active'"+filter,
		capArgs...).Scan(&taken); err != nil {
		return err
	}
	if taken >= capacity {
		return ErrClassFull
	}

	res.ClassName = name
	res.Status = model.ReservationActive
	res.CreatedAt = time.Now().UTC()
	out, err := tx.ExecContext(ctx,
		"INSERT INTO reservations (user_id, class_id, class_name, date, time, status, created_at) VALUES (?,?,?,?,?,?,?)",
		res.UserID, res.ClassID, res.ClassName, res.Date, res.Time, res.Status, res.CreatedAt)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	res.ID = uint64(id)
	return nil
}

// CountActive counts active reservations of a class on a day. An empty
// slot counts the whole day.
func (r *ReservationRepo) CountActive(ctx context.Context, classID uint64, date time.Time, slot string) (int, error) {
	q := "SELECT COUNT(*) FROM reservations WHERE class_id=? AND date=? AND status='active'"
	args := []any{classID, Day(date)}
	if slot != "" {
		q += " AND time=?"
		args = append(args, slot)
	}
	var n int
	err := r.DB.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// ListUpcoming returns the user's active reservations dated from `from`
// onwards, soonest first, joined with class display fields.
func (r *ReservationRepo) ListUpcoming(ctx context.Context, userID uint64, from time.Time) ([]model.ReservationWithClass, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT r.id, r.user_id, r.class_id, r.class_name, r.date, r.time, r.status, r.created_at,
               COALESCE(c.instructor,''), COALESCE(c.duration,''), COALESCE(c.color,'')
        FROM reservations r
        LEFT JOIN classes c ON c.id = r.class_id
        WHERE r.user_id = ? AND r.status = 'active' AND r.date >= ?
        ORDER BY r.date, r.time`, userID, Day(from))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReservationWithClass
	for rows.Next() {
		var rc model.ReservationWithClass
		if err := rows.Scan(&rc.ID, &rc.UserID, &rc.ClassID, &rc.ClassName, &rc.Date, &rc.Time, &rc.Status, &rc.CreatedAt,
			&rc.Instructor, &rc.Duration, &rc.Color); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// Cancel flips the user's own active reservation to cancelled.
func (r *ReservationRepo) Cancel(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reservations SET status='cancelled' WHERE id=? AND user_id=? AND status='active'", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBefore hard-deletes every reservation dated before day, whatever its
// status, and reports how many rows went.
func (r *ReservationRepo) DeleteBefore(ctx context.Context, day time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reservations WHERE date < ?", Day(day))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountsForUser splits the user's reservations around today.
func (r *ReservationRepo) CountsForUser(ctx context.Context, userID uint64, today time.Time) (model.ReservationCounts, error) {
	var c model.ReservationCounts
	err := r.DB.QueryRowContext(ctx, `
        SELECT
          COALESCE(SUM(status='active' AND date >= ?),0),
          COALESCE(SUM(status='active' AND date < ?),0),
          COUNT(*)
        FROM reservations WHERE user_id = ?`, Day(today), Day(today), userID).Scan(&c.Upcoming, &c.Completed, &c.Total)
	return c, err
}

// CountAllActive counts active reservations across all users.
func (r *ReservationRepo) CountAllActive(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations WHERE status='active'").Scan(&n)
	return n, err
}

// TopClasses ranks class names by active reservations.
func (r *ReservationRepo) TopClasses(ctx context.Context, limit int) ([]model.ClassCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT class_name, COUNT(*) AS n
        FROM reservations
        WHERE status = 'active'
        GROUP BY class_name
        ORDER BY n DESC, class_name
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ClassCount
	for rows.Next() {
		var cc model.ClassCount
		if err := rows.Scan(&cc.ClassName, &cc.Count); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}
