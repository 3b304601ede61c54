package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
)

// MembershipRepo persists memberships and the pending second person of
// shared plans. Purchases and shared activations touch several tables and
// run as single transactions.
type MembershipRepo struct{ DB *sql.DB }

func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{DB: db} }

const membershipColumns = `id,user_id,plan_type,price,start_date,end_date,status,payment_method,
training_days,verification,is_shared,membership_code,main_user_id,second_user_id,
second_user_activated,renewal_notification_sent,created_at`

func scanMembership(row rowScanner) (model.Membership, error) {
	var (
		m                  model.Membership
		days, verification []byte
		code               sql.NullString
		mainUser, second   sql.NullInt64
	)
	err := row.Scan(&m.ID, &m.UserID, &m.PlanType, &m.Price, &m.StartDate, &m.EndDate, &m.Status, &m.PaymentMethod,
		&days, &verification, &m.Shared.IsShared, &code, &mainUser, &second,
		&m.Shared.SecondUserActivated, &m.RenewalNotificationSent, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	if err != nil {
		return m, err
	}
	if len(days) > 0 {
		if err := json.Unmarshal(days, &m.TrainingDays); err != nil {
			return m, fmt.Errorf("decode training days of membership %d: %w", m.ID, err)
		}
	}
	if len(verification) > 0 {
		m.Verification = &model.Verification{}
		if err := json.Unmarshal(verification, m.Verification); err != nil {
			return m, fmt.Errorf("decode verification of membership %d: %w", m.ID, err)
		}
	}
	m.Shared.Code = code.String
	if mainUser.Valid {
		m.Shared.MainUserID = uint64(mainUser.Int64)
	}
	if second.Valid {
		id := uint64(second.Int64)
		m.Shared.SecondUserID = &id
	}
	return m, nil
}

func insertMembership(ctx context.Context, ex execer, m *model.Membership) error {
	var days, verification any
	if len(m.TrainingDays) > 0 {
		b, err := json.Marshal(m.TrainingDays)
		if err != nil {
			return err
		}
		days = b
	}
	if m.Verification != nil {
		b, err := json.Marshal(m.Verification)
		if err != nil {
			return err
		}
		verification = b
	}
	var code, mainUser, second any
	if m.Shared.IsShared {
		code = m.Shared.Code
		mainUser = m.Shared.MainUserID
		if m.Shared.SecondUserID != nil {
			second = *m.Shared.SecondUserID
		}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	res, err := ex.ExecContext(ctx, `
        INSERT INTO memberships (user_id, plan_type, price, start_date, end_date, status, payment_method,
          training_days, verification, is_shared, membership_code, main_user_id, second_user_id,
          second_user_activated, renewal_notification_sent, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.UserID, m.PlanType, m.Price, m.StartDate, m.EndDate, m.Status, m.PaymentMethod,
		days, verification, m.Shared.IsShared, code, mainUser, second,
		m.Shared.SecondUserActivated, m.RenewalNotificationSent, m.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// CreateWithUser stores a new account together with its membership and,
// for shared plans, the pending second person. Nothing is written when any
// step fails; a taken email yields ErrEmailExists.
func (r *MembershipRepo) CreateWithUser(ctx context.Context, u *model.User, m *model.Membership, pending *model.PendingUser) error {
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

	if err := insertUser(ctx, tx, u); err != nil {
		return err
	}
	m.UserID = u.ID
	if m.Shared.IsShared {
		m.Shared.MainUserID = u.ID
	}
	if err := insertMembership(ctx, tx, m); err != nil {
		return err
	}
	if pending != nil {
		pending.MainUserID = u.ID
		pending.Email = strings.ToLower(strings.TrimSpace(pending.Email))
		if pending.CreatedAt.IsZero() {
			pending.CreatedAt = time.Now().UTC()
		}
		res, err := tx.ExecContext(ctx, `
            INSERT INTO pending_users (full_name, age, email, phone, address, membership_code, main_user_id, created_at, expires_at)
            VALUES (?,?,?,?,?,?,?,?,?)`,
			pending.FullName, pending.Age, pending.Email, pending.Phone, pending.Address,
			pending.MembershipCode, pending.MainUserID, pending.CreatedAt, pending.ExpiresAt)
		if err != nil {
			if isDuplicate(err) {
				return ErrConflict
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		pending.ID = uint64(id)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const pendingColumns = "id,full_name,age,email,phone,address,membership_code,main_user_id,created_at,expires_at"

func scanPending(row rowScanner) (model.PendingUser, error) {
	var p model.PendingUser
	err := row.Scan(&p.ID, &p.FullName, &p.Age, &p.Email, &p.Phone, &p.Address, &p.MembershipCode, &p.MainUserID, &p.CreatedAt, &p.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

const shareableFilter = "membership_code=? AND is_shared=1 AND second_user_activated=0 AND status='active'"

// FindShareable returns the owner membership still waiting for its second
// person and the pending data registered for that code.
func (r *MembershipRepo) FindShareable(ctx context.Context, code string, now time.Time) (model.Membership, model.PendingUser, error) {
	m, err := scanMembership(r.DB.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE "+shareableFilter+" ORDER BY id LIMIT 1", code))
	if err != nil {
		return model.Membership{}, model.PendingUser{}, err
	}
	p, err := scanPending(r.DB.QueryRowContext(ctx,
		"SELECT "+pendingColumns+" FROM pending_users WHERE membership_code=? AND expires_at > ?", code, now))
	if err != nil {
		return model.Membership{}, model.PendingUser{}, err
	}
	return m, p, nil
}

// ActivateShared turns the pending second person of code into a real user
// with second.PasswordHash, links them to the owner membership, gives them
// a mirrored membership and drops the pending record. The pending row and
// the owner membership are locked first, so only one of two concurrent
// activations can succeed; the loser sees ErrNotFound.
func (r *MembershipRepo) ActivateShared(ctx context.Context, code string, now time.Time, second *model.User) (model.Membership, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Membership{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := scanPending(tx.QueryRowContext(ctx,
		"SELECT "+pendingColumns+" FROM pending_users WHERE membership_code=? AND expires_at > ? FOR UPDATE", code, now))
	if err != nil {
		return model.Membership{}, err
	}
	owner, err := scanMembership(tx.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE "+shareableFilter+" ORDER BY id LIMIT 1 FOR UPDATE", code))
	if err != nil {
		return model.Membership{}, err
	}

	second.FullName = p.FullName
	second.Email = p.Email
	second.Phone = p.Phone
	if err := insertUser(ctx, tx, second); err != nil {
		return model.Membership{}, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE memberships SET second_user_id=?, second_user_activated=1 WHERE id=?", second.ID, owner.ID); err != nil {
		return model.Membership{}, err
	}

	secondID := second.ID
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
		CreatedAt: now,
	}
	if err := insertMembership(ctx, tx, &mirror); err != nil {
		return model.Membership{}, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM pending_users WHERE id=?", p.ID); err != nil {
		return model.Membership{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Membership{}, err
	}
	committed = true
	return mirror, nil
}

// LatestActive returns the user's most recent active membership.
func (r *MembershipRepo) LatestActive(ctx context.Context, userID uint64) (model.Membership, error) {
	return scanMembership(r.DB.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE user_id=? AND status='active' ORDER BY created_at DESC, id DESC LIMIT 1", userID))
}

// SetStatus changes a membership's status.
func (r *MembershipRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE memberships SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRenewalNotified records that the expiring notice went out.
func (r *MembershipRepo) MarkRenewalNotified(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE memberships SET renewal_notification_sent=1 WHERE id=?", id)
	return err
}

func (r *MembershipRepo) list(ctx context.Context, q queryer, where string, args ...any) ([]model.Membership, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+membershipColumns+" FROM memberships "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListExpiring returns active memberships ending within [from, until] whose
// renewal notice has not been sent.
func (r *MembershipRepo) ListExpiring(ctx context.Context, from, until time.Time) ([]model.Membership, error) {
	return r.list(ctx, r.DB,
		"WHERE status='active' AND renewal_notification_sent=0 AND end_date >= ? AND end_date <= ? ORDER BY end_date", from, until)
}

// ExpireOverdue flips every active membership that ended before now to
// expired and returns the rows it changed.
func (r *MembershipRepo) ExpireOverdue(ctx context.Context, now time.Time) ([]model.Membership, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	overdue, err := r.list(ctx, tx, "WHERE status='active' AND end_date < ? ORDER BY id FOR UPDATE", now)
	if err != nil {
		return nil, err
	}
	for i := range overdue {
		if _, err := tx.ExecContext(ctx, "UPDATE memberships SET status='expired' WHERE id=?", overdue[i].ID); err != nil {
			return nil, err
		}
		overdue[i].Status = model.MembershipExpired
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return overdue, nil
}

// DeleteExpiredPending removes pending second persons whose window closed.
func (r *MembershipRepo) DeleteExpiredPending(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM pending_users WHERE expires_at <= ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListAll returns every membership, newest first.
func (r *MembershipRepo) ListAll(ctx context.Context) ([]model.Membership, error) {
	return r.list(ctx, r.DB, "ORDER BY created_at DESC, id DESC")
}
