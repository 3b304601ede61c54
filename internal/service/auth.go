package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/fitzone/internal/mailer"
	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
	"github.com/iliyamo/fitzone/internal/utils"
)

// AuthService registers and authenticates users.
type AuthService struct {
	users      UserStore
	bcryptCost int
	fx         sideEffects
	now        Clock
}

func NewAuthService(d Deps, bcryptCost int) *AuthService {
	return &AuthService{users: d.Stores.Users, bcryptCost: bcryptCost, fx: d.effects(), now: clockOr(d.Clock)}
}

// RegisterInput is the payload of a plain account registration.
type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register creates a regular user. The email is compared case-insensitively
// and only the bcrypt hash of the password is stored.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Email == "" || in.Password == "" || in.FullName == "" {
		return model.User{}, ErrMissingFields
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("lookup email: %w", err)
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.UserActive,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	s.fx.email(mailer.Welcome(u.Email, u.FullName))
	return u, nil
}

// Login checks credentials. Unknown email, inactive account and wrong
// password all yield ErrInvalidCredentials after one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.BurnCompare(password)
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) || !u.IsActive() {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// RedirectFor returns where the client should go after login.
func RedirectFor(u model.User) string {
	if u.IsAdmin() {
		return "/admin"
	}
	return "/dashboard"
}
