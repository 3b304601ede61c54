package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
)

// ClassRepo persists classes. Weekly slots live in a JSON column because
// they are always read and written together with the class.
type ClassRepo struct{ DB *sql.DB }

func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{DB: db} }

const classColumns = "id,name,COALESCE(description,''),schedule,slots,instructor,duration,capacity,color,active,created_at"

func scanClass(row rowScanner) (model.Class, error) {
	var (
		c     model.Class
		slots []byte
	)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Schedule, &slots, &c.Instructor, &c.Duration, &c.Capacity, &c.Color, &c.Active, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &c.Slots); err != nil {
			return c, fmt.Errorf("decode slots of class %d: %w", c.ID, err)
		}
	}
	return c, nil
}

func encodeSlots(slots []model.Slot) ([]byte, error) {
	if slots == nil {
		slots = []model.Slot{}
	}
	return json.Marshal(slots)
}

// List returns classes ordered by id. With activeOnly set, deactivated
// classes are skipped.
func (r *ClassRepo) List(ctx context.Context, activeOnly bool) ([]model.Class, error) {
	q := "SELECT " + classColumns + " FROM classes"
	if activeOnly {
		q += " WHERE active = 1"
	}
	rows, err := r.DB.QueryContext(ctx, q+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a class regardless of its active flag.
func (r *ClassRepo) GetByID(ctx context.Context, id uint64) (model.Class, error) {
	return scanClass(r.DB.QueryRowContext(ctx, "SELECT "+classColumns+" FROM classes WHERE id=?", id))
}

// Create inserts c and fills its ID.
func (r *ClassRepo) Create(ctx context.Context, c *model.Class) error {
	slots, err := encodeSlots(c.Slots)
	if err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx, `
        INSERT INTO classes (name, description, schedule, slots, instructor, duration, capacity, color, active, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?)`,
		c.Name, c.Description, c.Schedule, slots, c.Instructor, c.Duration, c.Capacity, c.Color, c.Active, c.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update overwrites the mutable fields of c.
func (r *ClassRepo) Update(ctx context.Context, c model.Class) error {
	slots, err := encodeSlots(c.Slots)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
        UPDATE classes SET name=?, description=?, schedule=?, slots=?, instructor=?, duration=?, capacity=?, color=?, active=?
        WHERE id=?`,
		c.Name, c.Description, c.Schedule, slots, c.Instructor, c.Duration, c.Capacity, c.Color, c.Active, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// Deactivate hides a class from listings and booking. Existing
// reservations are left untouched.
func (r *ClassRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE classes SET active=0 WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of classes, active or not.
func (r *ClassRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM classes").Scan(&n)
	return n, err
}
