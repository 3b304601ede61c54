package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/plan"
	"github.com/iliyamo/fitzone/internal/repository"
)

// MaintenanceService runs the periodic membership and reservation sweep.
type MaintenanceService struct {
	memberships   MembershipStore
	reservations  ReservationStore
	notifications *NotificationService
	fx            sideEffects
	now           Clock
}

func NewMaintenanceService(d Deps, notifications *NotificationService) *MaintenanceService {
	return &MaintenanceService{
		memberships:   d.Stores.Memberships,
		reservations:  d.Stores.Reservations,
		notifications: notifications,
		fx:            d.effects(),
		now:           clockOr(d.Clock),
	}
}

// SweepReport counts what one sweep did.
type SweepReport struct {
	Reminded       int
	Expired        int
	PrunedBookings int64
	PrunedPending  int64
	Errors         []error
}

// Sweep runs the four passes in order. A failing pass is recorded in the
// report and the remaining passes still run.
func (s *MaintenanceService) Sweep(ctx context.Context) SweepReport {
	var rep SweepReport
	now := s.now()
	fail := func(pass string, err error) {
		err = fmt.Errorf("%s: %w", pass, err)
		rep.Errors = append(rep.Errors, err)
		s.fx.warnf("sweep %v", err)
	}

	if n, err := s.remindExpiring(ctx); err != nil {
		fail("expiring", err)
	} else {
		rep.Reminded = n
	}
	if n, err := s.expireOverdue(ctx); err != nil {
		fail("expire", err)
	} else {
		rep.Expired = n
	}
	if n, err := s.reservations.DeleteBefore(ctx, repository.Day(now)); err != nil {
		fail("reservations", err)
	} else {
		rep.PrunedBookings = n
	}
	if n, err := s.memberships.DeleteExpiredPending(ctx, now); err != nil {
		fail("pending", err)
	} else {
		rep.PrunedPending = n
	}
	return rep
}

func (s *MaintenanceService) remindExpiring(ctx context.Context) (int, error) {
	now := s.now()
	list, err := s.memberships.ListExpiring(ctx, now, now.Add(plan.ExpiringWindow))
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, m := range list {
		days := plan.DaysRemaining(m.EndDate, now)
		created, err := s.notifications.NotifyOnce(ctx, m.UserID, model.NotifyMembershipExpiring,
			ExpiringTitle, expiringMessage(days), true)
		if err != nil {
			return sent, err
		}
		if err := s.memberships.MarkRenewalNotified(ctx, m.ID); err != nil {
			return sent, err
		}
		if created {
			sent++
		}
	}
	return sent, nil
}

func (s *MaintenanceService) expireOverdue(ctx context.Context) (int, error) {
	expired, err := s.memberships.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	notified := make(map[uint64]bool, len(expired))
	for _, m := range expired {
		if notified[m.UserID] {
			continue
		}
		notified[m.UserID] = true
		if _, err := s.notifications.NotifyOnce(ctx, m.UserID, model.NotifyMembershipExpired,
			ExpiredTitle, ExpiredText, true); err != nil {
			return len(expired), err
		}
	}
	return len(expired), nil
}
