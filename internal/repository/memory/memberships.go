package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

type MembershipRepo struct{ s *state }

func (r *MembershipRepo) CreateWithUser(_ context.Context, u *model.User, m *model.Membership, pending *model.PendingUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if pending != nil {
		if _, taken := r.s.pending[pending.MembershipCode]; taken {
			return repository.ErrConflict
		}
	}
	if err := r.s.insertUser(u); err != nil {
		return err
	}
	m.UserID = u.ID
	if m.Shared.IsShared {
		m.Shared.MainUserID = u.ID
	}
	r.s.insertMembership(m)
	if pending != nil {
		pending.MainUserID = u.ID
		pending.Email = normEmail(pending.Email)
		if pending.CreatedAt.IsZero() {
			pending.CreatedAt = now()
		}
		pending.ID = r.s.nextID()
		r.s.pending[pending.MembershipCode] = *pending
	}
	return nil
}

// shareable must be called with the lock held.
func (s *state) shareable(code string) (model.Membership, bool) {
	for _, id := range sortedKeys(s.memberships) {
		m := s.memberships[id]
		if m.Shared.IsShared && m.Shared.Code == code && !m.Shared.SecondUserActivated && m.Status == model.MembershipActive {
			return m, true
		}
	}
	return model.Membership{}, false
}

func (r *MembershipRepo) FindShareable(_ context.Context, code string, at time.Time) (model.Membership, model.PendingUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.shareable(code)
	if !ok {
		return model.Membership{}, model.PendingUser{}, repository.ErrNotFound
	}
	p, ok := r.s.pending[code]
	if !ok || !p.ExpiresAt.After(at) {
		return model.Membership{}, model.PendingUser{}, repository.ErrNotFound
	}
	return cloneMembership(m), p, nil
}

func (r *MembershipRepo) ActivateShared(_ context.Context, code string, at time.Time, second *model.User) (model.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pending[code]
	if !ok || !p.ExpiresAt.After(at) {
		return model.Membership{}, repository.ErrNotFound
	}
	owner, ok := r.s.shareable(code)
	if !ok {
		return model.Membership{}, repository.ErrNotFound
	}
	second.FullName, second.Email, second.Phone = p.FullName, p.Email, p.Phone
	if err := r.s.insertUser(second); err != nil {
		return model.Membership{}, err
	}
	secondID := second.ID
	owner.Shared.SecondUserID = &secondID
	owner.Shared.SecondUserActivated = true
	r.s.memberships[owner.ID] = cloneMembership(owner)

	mirror := model.Membership{
		UserID:        second.ID,
		PlanType:      owner.PlanType,
		Price:         owner.Price,
		StartDate:     owner.StartDate,
		EndDate:       owner.EndDate,
		Status:        model.MembershipActive,
		PaymentMethod: owner.PaymentMethod,
		Shared: model.SharedInfo{
			IsShared:            true,
			Code:                code,
			MainUserID:          owner.UserID,
			SecondUserID:        &secondID,
			SecondUserActivated: true,
		},
		CreatedAt: at,
	}
	r.s.insertMembership(&mirror)
	delete(r.s.pending, code)
	return mirror, nil
}

func (r *MembershipRepo) LatestActive(_ context.Context, userID uint64) (model.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var (
		best  model.Membership
		found bool
	)
	for _, id := range sortedKeys(r.s.memberships) {
		m := r.s.memberships[id]
		if m.UserID != userID || m.Status != model.MembershipActive {
			continue
		}
		if !found || !m.CreatedAt.Before(best.CreatedAt) {
			best, found = m, true
		}
	}
	if !found {
		return model.Membership{}, repository.ErrNotFound
	}
	return cloneMembership(best), nil
}

func (r *MembershipRepo) SetStatus(_ context.Context, id uint64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Status = status
	r.s.memberships[id] = m
	return nil
}

func (r *MembershipRepo) MarkRenewalNotified(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.memberships[id]; ok {
		m.RenewalNotificationSent = true
		r.s.memberships[id] = m
	}
	return nil
}

func (r *MembershipRepo) ListExpiring(_ context.Context, from, until time.Time) ([]model.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Membership
	for _, id := range sortedKeys(r.s.memberships) {
		m := r.s.memberships[id]
		if m.Status != model.MembershipActive || m.RenewalNotificationSent {
			continue
		}
		if m.EndDate.Before(from) || m.EndDate.After(until) {
			continue
		}
		out = append(out, cloneMembership(m))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (r *MembershipRepo) ExpireOverdue(_ context.Context, at time.Time) ([]model.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Membership
	for _, id := range sortedKeys(r.s.memberships) {
		m := r.s.memberships[id]
		if m.Status != model.MembershipActive || !m.EndDate.Before(at) {
			continue
		}
		m.Status = model.MembershipExpired
		r.s.memberships[id] = m
		out = append(out, cloneMembership(m))
	}
	return out, nil
}

func (r *MembershipRepo) DeleteExpiredPending(_ context.Context, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for code, p := range r.s.pending {
		if !p.ExpiresAt.After(at) {
			delete(r.s.pending, code)
			n++
		}
	}
	return n, nil
}

func (r *MembershipRepo) ListAll(_ context.Context) ([]model.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Membership
	for _, id := range sortedKeys(r.s.memberships) {
		out = append(out, cloneMembership(r.s.memberships[id]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
