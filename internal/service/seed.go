package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/utils"
)

// SeedAdmin is the account created when no admin exists.
type SeedAdmin struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// DefaultClasses is the schedule loaded into an empty classes table.
func DefaultClasses() []model.Class {
	return []model.Class{
		{
			Name:     "F.E.C",
			Schedule: "Lunes y Miércoles",
			Slots: []model.Slot{
				{Day: "Lunes", Time: "10:00 - 11:00", Period: "mañana"},
				{Day: "Lunes", Time: "18:00 - 19:00", Period: "tarde"},
				{Day: "Miércoles", Time: "10:00 - 11:00", Period: "mañana"},
				{Day: "Miércoles", Time: "18:00 - 19:00", Period: "tarde"},
			},
			Capacity:   15,
			Instructor: "Carlos Mendoza",
			Color:      "#22c55e",
		},
		{
			Name:     "Yoga",
			Schedule: "Martes y Jueves",
			Slots: []model.Slot{
				{Day: "Martes", Time: "09:00 - 10:00", Period: "mañana"},
				{Day: "Martes", Time: "19:00 - 20:00", Period: "noche"},
				{Day: "Jueves", Time: "09:00 - 10:00", Period: "mañana"},
				{Day: "Jueves", Time: "19:00 - 20:00", Period: "noche"},
			},
			Capacity:   20,
			Instructor: "Ana García",
			Color:      "#ef4444",
		},
		{
			Name:     "Spinning",
			Schedule: "Miércoles y Viernes",
			Slots: []model.Slot{
				{Day: "Miércoles", Time: "08:00 - 09:00", Period: "mañana"},
				{Day: "Miércoles", Time: "19:00 - 20:00", Period: "noche"},
				{Day: "Viernes", Time: "08:00 - 09:00", Period: "mañana"},
				{Day: "Viernes", Time: "19:00 - 20:00", Period: "noche"},
			},
			Capacity:   12,
			Instructor: "Roberto Silva",
			Color:      "#3b82f6",
		},
		{
			Name:     "Pilates",
			Schedule: "Martes y Viernes",
			Slots: []model.Slot{
				{Day: "Martes", Time: "11:00 - 12:00", Period: "mañana"},
				{Day: "Martes", Time: "17:00 - 18:00", Period: "tarde"},
				{Day: "Viernes", Time: "11:00 - 12:00", Period: "mañana"},
				{Day: "Viernes", Time: "17:00 - 18:00", Period: "tarde"},
			},
			Capacity:   15,
			Instructor: "María López",
			Color:      "#f59e0b",
		},
	}
}

// Seed creates the admin account when none exists and the default classes
// when the classes table is empty. Running it again is a no-op.
func Seed(ctx context.Context, d Deps, admin SeedAdmin, bcryptCost int) error {
	now := clockOr(d.Clock)()
	admins, err := d.Stores.Users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins == 0 && admin.Email != "" && admin.Password != "" {
		hash, err := utils.HashPassword(admin.Password, bcryptCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		u := model.User{
			FullName:     orDefault(admin.FullName, "Administrador FitZone"),
			Email:        normalizeEmail(admin.Email),
			Phone:        admin.Phone,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			Status:       model.UserActive,
			CreatedAt:    now,
		}
		if err := d.Stores.Users.Create(ctx, &u); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		if d.Logger != nil {
			d.Logger.Infof("seeded admin %s", u.Email)
		}
	}

	n, err := d.Stores.Classes.Count(ctx)
	if err != nil {
		return fmt.Errorf("count classes: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, c := range DefaultClasses() {
		c.Active = true
		c.CreatedAt = now
		c.Duration = model.DefaultClassDuration
		if err := d.Stores.Classes.Create(ctx, &c); err != nil {
			return fmt.Errorf("create class %s: %w", c.Name, err)
		}
	}
	if d.Logger != nil {
		d.Logger.Infof("seeded %d default classes", len(DefaultClasses()))
	}
	return nil
}
