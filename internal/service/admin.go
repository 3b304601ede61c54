package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

// AdminService holds the back office operations on users, classes and
// memberships.
type AdminService struct {
	stores Stores
	now    Clock
}

func NewAdminService(d Deps) *AdminService {
	return &AdminService{stores: d.Stores, now: clockOr(d.Clock)}
}

// Users lists regular users, newest first.
func (s *AdminService) Users(ctx context.Context) ([]model.User, error) {
	list, err := s.stores.Users.ListByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

// UserUpdate carries the fields an admin may edit.
type UserUpdate struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
}

// UpdateUser edits a user's profile. The email must stay unique.
func (s *AdminService) UpdateUser(ctx context.Context, id uint64, in UserUpdate) (model.User, error) {
	u, err := s.stores.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	if v := strings.TrimSpace(in.FullName); v != "" {
		u.FullName = v
	}
	if v := normalizeEmail(in.Email); v != "" {
		u.Email = v
	}
	u.Phone = strings.TrimSpace(in.Phone)
	switch in.Status {
	case "":
	case model.UserActive, model.UserInactive:
		u.Status = in.Status
	default:
		return model.User{}, invalidf("invalid status %q", in.Status)
	}
	if err := s.stores.Users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return model.User{}, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// DeleteUser removes a user with their reservations and cart. Admins cannot
// delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, id uint64) error {
	if actorID == id {
		return ErrSelfDelete
	}
	if err := s.stores.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ClassInput is the admin class payload.
type ClassInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Schedule    string       `json:"schedule"`
	Slots       []model.Slot `json:"slots"`
	Instructor  string       `json:"instructor"`
	Duration    string       `json:"duration"`
	Capacity    int          `json:"capacity"`
	Color       string       `json:"color"`
}

func (in ClassInput) apply(c *model.Class) error {
	c.Name = strings.TrimSpace(in.Name)
	if c.Name == "" {
		return ErrMissingFields
	}
	if in.Capacity < 0 {
		return invalidf("invalid capacity")
	}
	for _, sl := range in.Slots {
		if _, ok := weekdayOf(sl.Day); !ok {
			return invalidf("invalid slot day %q", sl.Day)
		}
	}
	c.Description = strings.TrimSpace(in.Description)
	c.Schedule = strings.TrimSpace(in.Schedule)
	c.Slots = in.Slots
	c.Instructor = orDefault(in.Instructor, model.DefaultClassInstructor)
	c.Duration = orDefault(in.Duration, model.DefaultClassDuration)
	c.Color = orDefault(in.Color, model.DefaultClassColor)
	c.Capacity = in.Capacity
	if c.Capacity == 0 {
		c.Capacity = model.DefaultClassCapacity
	}
	return nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// CreateClass adds an active class, filling unset fields with defaults.
func (s *AdminService) CreateClass(ctx context.Context, in ClassInput) (model.Class, error) {
	c := model.Class{Active: true, CreatedAt: s.now()}
	if err := in.apply(&c); err != nil {
		return model.Class{}, err
	}
	if err := s.stores.Classes.Create(ctx, &c); err != nil {
		return model.Class{}, fmt.Errorf("create class: %w", err)
	}
	return c, nil
}

// UpdateClass replaces a class's editable fields.
func (s *AdminService) UpdateClass(ctx context.Context, id uint64, in ClassInput) (model.Class, error) {
	c, err := s.stores.Classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Class{}, ErrClassNotFound
		}
		return model.Class{}, fmt.Errorf("get class: %w", err)
	}
	if err := in.apply(&c); err != nil {
		return model.Class{}, err
	}
	if err := s.stores.Classes.Update(ctx, c); err != nil {
		return model.Class{}, fmt.Errorf("update class: %w", err)
	}
	return c, nil
}

// DeactivateClass hides a class from the schedule.
func (s *AdminService) DeactivateClass(ctx context.Context, id uint64) error {
	if err := s.stores.Classes.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClassNotFound
		}
		return fmt.Errorf("deactivate class: %w", err)
	}
	return nil
}

// Memberships lists every membership, newest first.
func (s *AdminService) Memberships(ctx context.Context) ([]model.Membership, error) {
	list, err := s.stores.Memberships.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return list, nil
}
