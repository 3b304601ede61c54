package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/fitzone/internal/mailer"
	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

// RecentNotifications is how many notifications the member inbox shows.
const RecentNotifications = 10

// NotificationService stores in-app notifications and mirrors them by email.
type NotificationService struct {
	store NotificationStore
	users UserStore
	fx    sideEffects
	now   Clock
}

func NewNotificationService(d Deps) *NotificationService {
	return &NotificationService{store: d.Stores.Notifications, users: d.Stores.Users, fx: d.effects(), now: clockOr(d.Clock)}
}

// Notify stores a notification for userID. When email is set the user is
// also emailed; the email is best effort.
func (s *NotificationService) Notify(ctx context.Context, userID uint64, typ, title, message string, email bool) (model.Notification, error) {
	n := model.Notification{UserID: userID, Type: typ, Title: title, Message: message, CreatedAt: s.now()}
	if err := s.store.Create(ctx, &n); err != nil {
		return n, fmt.Errorf("create notification: %w", err)
	}
	if email {
		if u, err := s.users.GetByID(ctx, userID); err == nil {
			s.fx.email(mailer.Notice(u.Email, u.FullName, title, message))
		}
	}
	return n, nil
}

// NotifyOnce is Notify unless the user already has an unread notification
// of the same type. It reports whether a notification was created.
func (s *NotificationService) NotifyOnce(ctx context.Context, userID uint64, typ, title, message string, email bool) (bool, error) {
	has, err := s.store.HasUnread(ctx, userID, typ)
	if err != nil {
		return false, fmt.Errorf("check unread: %w", err)
	}
	if has {
		return false, nil
	}
	if _, err := s.Notify(ctx, userID, typ, title, message, email); err != nil {
		return false, err
	}
	return true, nil
}

// Inbox returns the newest notifications and the unread count.
func (s *NotificationService) Inbox(ctx context.Context, userID uint64) ([]model.Notification, int, error) {
	items, err := s.store.ListRecent(ctx, userID, RecentNotifications)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count unread: %w", err)
	}
	return items, unread, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint64) error {
	if err := s.store.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationMissing
		}
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}
