package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/fitzone/internal/mailer"
	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/plan"
	"github.com/iliyamo/fitzone/internal/queue"
	"github.com/iliyamo/fitzone/internal/repository"
	"github.com/iliyamo/fitzone/internal/utils"
)

// codeAttempts bounds retries when a generated shared code collides.
const codeAttempts = 3

// MembershipService sells plans and manages shared-plan activation.
type MembershipService struct {
	users         UserStore
	memberships   MembershipStore
	notifications *NotificationService
	catalog       plan.Catalog
	bcryptCost    int
	fx            sideEffects
	now           Clock
}

func NewMembershipService(d Deps, catalog plan.Catalog, notifications *NotificationService, bcryptCost int) *MembershipService {
	if catalog == nil {
		catalog = plan.DefaultCatalog()
	}
	return &MembershipService{
		users:         d.Stores.Users,
		memberships:   d.Stores.Memberships,
		notifications: notifications,
		catalog:       catalog,
		bcryptCost:    bcryptCost,
		fx:            d.effects(),
		now:           clockOr(d.Clock),
	}
}

// Person is one holder of a two-person plan.
type Person struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	Address  string `json:"address"`
}

// PurchaseInput is the register-with-membership payload. Person1 and
// Person2 are used by the two-person plan, the flat fields by every other.
type PurchaseInput struct {
	MembershipPlan string   `json:"membershipPlan"`
	PaymentMethod  string   `json:"paymentMethod"`
	TrainingDays   []string `json:"trainingDays"`
	Person1        *Person  `json:"person1"`
	Person2        *Person  `json:"person2"`

	FullName string `json:"fullName"`
	DNI      string `json:"dni"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

// PurchaseResult reports what a purchase created.
type PurchaseResult struct {
	User           model.User
	Membership     model.Membership
	MembershipCode string
}

// Purchase registers a new user together with a membership for them.
func (s *MembershipService) Purchase(ctx context.Context, in PurchaseInput) (PurchaseResult, error) {
	p, err := s.catalog.Lookup(in.MembershipPlan)
	if err != nil {
		return PurchaseResult{}, invalid(err)
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = plan.PayCash
	}
	if !plan.ValidPayment(in.PaymentMethod) {
		return PurchaseResult{}, invalid(plan.ErrInvalidPayment)
	}

	now := s.now()
	m := model.Membership{
		PlanType:      p.Type,
		Price:         p.PriceFor(in.PaymentMethod),
		StartDate:     now,
		EndDate:       plan.EndDate(p.Type, now),
		Status:        model.MembershipActive,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
	}

	if p.Type == plan.DosPersonas {
		return s.purchaseShared(ctx, in, m)
	}

	holder := Person{FullName: in.FullName, Email: in.Email, Phone: in.Phone, Password: in.Password}
	switch p.Type {
	case plan.Jubilados:
		if err := plan.ValidateSenior(in.Gender, in.Age); err != nil {
			return PurchaseResult{}, invalid(err)
		}
		m.Verification = &model.Verification{DNI: strings.TrimSpace(in.DNI), Age: in.Age, Gender: strings.ToLower(strings.TrimSpace(in.Gender))}
	case plan.TresVeces:
		days, err := plan.ValidateTrainingDays(in.TrainingDays)
		if err != nil {
			return PurchaseResult{}, invalid(err)
		}
		m.TrainingDays = days
	}

	u, err := s.newUser(ctx, holder, now)
	if err != nil {
		return PurchaseResult{}, err
	}
	if err := s.memberships.CreateWithUser(ctx, &u, &m, nil); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return PurchaseResult{}, ErrEmailTaken
		}
		return PurchaseResult{}, fmt.Errorf("create membership: %w", err)
	}
	s.announce(u, m)
	return PurchaseResult{User: u, Membership: m}, nil
}

func (s *MembershipService) purchaseShared(ctx context.Context, in PurchaseInput, m model.Membership) (PurchaseResult, error) {
	if in.Person1 == nil || in.Person2 == nil {
		return PurchaseResult{}, ErrSharedIncomplete
	}
	second := normalizeEmail(in.Person2.Email)
	if second == "" || strings.TrimSpace(in.Person2.FullName) == "" {
		return PurchaseResult{}, ErrSharedIncomplete
	}
	if second == normalizeEmail(in.Person1.Email) {
		return PurchaseResult{}, ErrEmailsTaken
	}
	if _, err := s.users.GetByEmail(ctx, second); err == nil {
		return PurchaseResult{}, ErrEmailsTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return PurchaseResult{}, fmt.Errorf("lookup email: %w", err)
	}

	now := m.CreatedAt
	u, err := s.newUser(ctx, *in.Person1, now)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return PurchaseResult{}, ErrEmailsTaken
		}
		return PurchaseResult{}, err
	}

	for attempt := 1; ; attempt++ {
		code, err := plan.GenerateCode()
		if err != nil {
			return PurchaseResult{}, fmt.Errorf("generate code: %w", err)
		}
		mm := m
		mm.Shared = model.SharedInfo{IsShared: true, Code: code}
		pending := model.PendingUser{
			FullName:       strings.TrimSpace(in.Person2.FullName),
			Age:            in.Person2.Age,
			Email:          second,
			Phone:          strings.TrimSpace(in.Person2.Phone),
			Address:        strings.TrimSpace(in.Person2.Address),
			MembershipCode: code,
			CreatedAt:      now,
			ExpiresAt:      now.Add(model.PendingUserTTL),
		}
		uu := u
		err = s.memberships.CreateWithUser(ctx, &uu, &mm, &pending)
		switch {
		case err == nil:
			s.announce(uu, mm)
			s.fx.email(mailer.SharedInvite(pending.Email, pending.FullName, uu.FullName, code))
			return PurchaseResult{User: uu, Membership: mm, MembershipCode: code}, nil
		case errors.Is(err, repository.ErrConflict) && attempt < codeAttempts:
			continue
		case errors.Is(err, repository.ErrEmailExists):
			return PurchaseResult{}, ErrEmailsTaken
		default:
			return PurchaseResult{}, fmt.Errorf("create shared membership: %w", err)
		}
	}
}

// newUser validates and hashes a holder without storing it.
func (s *MembershipService) newUser(ctx context.Context, p Person, now time.Time) (model.User, error) {
	email := normalizeEmail(p.Email)
	if email == "" || p.Password == "" || strings.TrimSpace(p.FullName) == "" {
		return model.User{}, ErrMissingFields
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("lookup email: %w", err)
	}
	hash, err := utils.HashPassword(p.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	return model.User{
		FullName:     strings.TrimSpace(p.FullName),
		Email:        email,
		Phone:        strings.TrimSpace(p.Phone),
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.UserActive,
		CreatedAt:    now,
	}, nil
}

func (s *MembershipService) announce(u model.User, m model.Membership) {
	s.fx.publish(queue.QueueMembershipPurchased, queue.MembershipPurchased{
		MembershipID:  m.ID,
		UserID:        u.ID,
		PlanType:      m.PlanType,
		Price:         m.Price,
		PaymentMethod: m.PaymentMethod,
		EndDate:       m.EndDate.Format(time.RFC3339),
		Shared:        m.Shared.IsShared,
	})
	s.fx.email(mailer.Welcome(u.Email, u.FullName))
}

// CodeInfo is what the activation screen shows for a valid code.
type CodeInfo struct {
	OwnerName   string      `json:"ownerName"`
	Plan        string      `json:"plan"`
	PendingData PendingData `json:"pendingData"`
}

type PendingData struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// VerifyCode checks a shared-plan code without consuming it.
func (s *MembershipService) VerifyCode(ctx context.Context, code string) (CodeInfo, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !plan.ValidCodeFormat(code) {
		return CodeInfo{}, ErrInvalidCode
	}
	m, p, err := s.memberships.FindShareable(ctx, code, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CodeInfo{}, ErrInvalidCode
		}
		return CodeInfo{}, fmt.Errorf("find code: %w", err)
	}
	info := CodeInfo{
		Plan:        m.PlanType,
		PendingData: PendingData{FullName: p.FullName, Email: p.Email, Phone: p.Phone},
	}
	if pl, err := s.catalog.Lookup(m.PlanType); err == nil {
		info.Plan = pl.Label
	}
	if owner, err := s.users.GetByID(ctx, m.UserID); err == nil {
		info.OwnerName = owner.FullName
	}
	return info, nil
}

// ActivateWithCode creates the second person's account from their pending
// record and links it to the owner's membership. A code works once.
func (s *MembershipService) ActivateWithCode(ctx context.Context, code, password string) (model.User, model.Membership, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !plan.ValidCodeFormat(code) {
		return model.User{}, model.Membership{}, ErrInvalidCode
	}
	if password == "" {
		return model.User{}, model.Membership{}, ErrMissingFields
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.User{}, model.Membership{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := model.User{PasswordHash: hash, Role: model.RoleUser, Status: model.UserActive, CreatedAt: now}
	m, err := s.memberships.ActivateShared(ctx, code, now, &u)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return model.User{}, model.Membership{}, ErrInvalidCode
		case errors.Is(err, repository.ErrEmailExists):
			return model.User{}, model.Membership{}, ErrEmailTaken
		}
		return model.User{}, model.Membership{}, fmt.Errorf("activate shared: %w", err)
	}
	s.announce(u, m)
	return u, m, nil
}

// MembershipView is the member dashboard's membership card.
type MembershipView struct {
	model.Membership
	Label          string `json:"label"`
	DaysRemaining  int    `json:"daysRemaining"`
	IsExpiringSoon bool   `json:"isExpiringSoon"`
	IsExpired      bool   `json:"isExpired"`
}

// Current returns the caller's latest active membership.
func (s *MembershipService) Current(ctx context.Context, userID uint64) (MembershipView, error) {
	m, err := s.memberships.LatestActive(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return MembershipView{}, ErrMembershipRequired
		}
		return MembershipView{}, fmt.Errorf("latest membership: %w", err)
	}
	if m.TrainingDays == nil {
		m.TrainingDays = []string{}
	}
	st := plan.StatusAt(m.EndDate, s.now())
	v := MembershipView{Membership: m, DaysRemaining: st.DaysRemaining, IsExpiringSoon: st.IsExpiringSoon, IsExpired: st.IsExpired}
	if pl, err := s.catalog.Lookup(m.PlanType); err == nil {
		v.Label = pl.Label
	}
	return v, nil
}

// Membership status values reported at login.
const (
	StatusNone         = "none"
	StatusExpired      = "expired"
	StatusExpiringSoon = "expiring_soon"
	StatusActive       = "active"
)

// StatusCheck is the login-time membership check.
type StatusCheck struct {
	Status        string
	Message       string
	DaysRemaining int
	DaysExpired   int
}

// CheckStatus classifies userID's membership. An overdue membership is
// flipped to expired; one about to expire gets a single renewal notice.
func (s *MembershipService) CheckStatus(ctx context.Context, userID uint64) (StatusCheck, error) {
	m, err := s.memberships.LatestActive(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return StatusCheck{Status: StatusNone, Message: NoMembershipText}, nil
		}
		return StatusCheck{}, fmt.Errorf("latest membership: %w", err)
	}
	days := plan.RawDaysRemaining(m.EndDate, s.now())
	switch {
	case days <= 0:
		if err := s.memberships.SetStatus(ctx, m.ID, model.MembershipExpired); err != nil {
			return StatusCheck{}, fmt.Errorf("expire membership: %w", err)
		}
		return StatusCheck{Status: StatusExpired, Message: ExpiredText, DaysExpired: -days}, nil
	case days <= 7:
		if !m.RenewalNotificationSent {
			created, err := s.notifications.NotifyOnce(ctx, userID, model.NotifyMembershipExpiring,
				ExpiringTitle, expiringMessage(days), false)
			if err != nil {
				return StatusCheck{}, err
			}
			if created {
				if err := s.memberships.MarkRenewalNotified(ctx, m.ID); err != nil {
					return StatusCheck{}, fmt.Errorf("mark notified: %w", err)
				}
			}
		}
		return StatusCheck{Status: StatusExpiringSoon, Message: fmt.Sprintf("Your membership expires in %d days", days), DaysRemaining: days}, nil
	}
	return StatusCheck{Status: StatusActive, DaysRemaining: days}, nil
}

// Notification texts shared by the login check and the sweep.
const (
	ExpiringTitle = "Membership expiring soon"
	ExpiredTitle  = "Membership expired"
	ExpiredText   = "Your membership has expired. Renew it to keep booking classes."

	NoMembershipText = "You have no active membership"
)

func expiringMessage(days int) string {
	return fmt.Sprintf("Your membership expires in %d days. Renew it to keep enjoying our services.", days)
}
