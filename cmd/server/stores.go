package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/fitzone/internal/config"
	"github.com/iliyamo/fitzone/internal/database"
	"github.com/iliyamo/fitzone/internal/repository"
	"github.com/iliyamo/fitzone/internal/repository/memory"
	"github.com/iliyamo/fitzone/internal/service"
)

// storage is the selected backend with its lifecycle hooks.
type storage struct {
	stores service.Stores
	ping   func(ctx context.Context) error
	close  func()
}

func openStores(ctx context.Context, cfg config.Config) (storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		m := memory.New()
		return storage{
			stores: service.Stores{
				Users:         m.Users,
				Classes:       m.Classes,
				Reservations:  m.Reservations,
				Carts:         m.Carts,
				Orders:        m.Orders,
				Memberships:   m.Memberships,
				Notifications: m.Notifications,
			},
			close: func() {},
		}, nil
	case config.DriverMySQL:
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		}
		db, err := database.Open(dsn)
		if err != nil {
			return storage{}, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return storage{}, err
		}
		return storage{
			stores: mysqlStores(db),
			ping:   db.PingContext,
			close:  func() { _ = db.Close() },
		}, nil
	}
	return storage{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}

func mysqlStores(db *sql.DB) service.Stores {
	return service.Stores{
		Users:         repository.NewUserRepo(db),
		Classes:       repository.NewClassRepo(db),
		Reservations:  repository.NewReservationRepo(db),
		Carts:         repository.NewCartRepo(db),
		Orders:        repository.NewOrderRepo(db),
		Memberships:   repository.NewMembershipRepo(db),
		Notifications: repository.NewNotificationRepo(db),
	}
}
