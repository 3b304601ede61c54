package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
)

// NotificationRepo persists in-app notifications.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Create inserts n and fills its ID.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, type, title, message, is_read, created_at) VALUES (?,?,?,?,?,?)",
		n.UserID, n.Type, n.Title, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListRecent returns the user's newest notifications.
func (r *NotificationRepo) ListRecent(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, user_id, type, title, message, is_read, created_at
        FROM notifications WHERE user_id=?
        ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CountUnread counts the user's unread notifications.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id=? AND is_read=0", userID).Scan(&n)
	return n, err
}

// HasUnread reports whether the user already has an unread notification of
// the given type.
func (r *NotificationRepo) HasUnread(ctx context.Context, userID uint64, typ string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id=? AND type=? AND is_read=0", userID, typ).Scan(&n)
	return n > 0, err
}

// MarkRead marks the user's own notification as read. Notifications of
// other users are reported as ErrNotFound.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications WHERE id=? AND user_id=?", id, userID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
	}
	return nil
}
