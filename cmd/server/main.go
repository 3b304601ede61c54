package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/fitzone/internal/config"
	"github.com/iliyamo/fitzone/internal/handler"
	"github.com/iliyamo/fitzone/internal/mailer"
	"github.com/iliyamo/fitzone/internal/middleware"
	"github.com/iliyamo/fitzone/internal/plan"
	"github.com/iliyamo/fitzone/internal/queue"
	"github.com/iliyamo/fitzone/internal/repository"
	"github.com/iliyamo/fitzone/internal/router"
	"github.com/iliyamo/fitzone/internal/scheduler"
	"github.com/iliyamo/fitzone/internal/service"
	"github.com/iliyamo/fitzone/internal/session"
)

func main() {
	cfg := config.Load()
	repository.Location = cfg.Location

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)
	if !cfg.IsProduction() {
		e.Logger.SetLevel(log.DEBUG)
	}
	logger := e.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("storage: %v", err)
	}
	defer st.close()

	catalog := plan.DefaultCatalog()
	if cfg.PlanCatalogFile != "" {
		if catalog, err = plan.LoadCatalogFile(cfg.PlanCatalogFile); err != nil {
			logger.Fatalf("plan catalog: %v", err)
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled && cfg.AMQPURL != "" {
		pub := queue.NewAMQPPublisher(cfg.AMQPURL, logger)
		defer pub.Close()
		events = pub
		go queue.NewActivityConsumer(cfg.AMQPURL, cfg.ActivityLogDir, logger).Run(ctx)
	}

	deps := service.Deps{
		Stores: st.stores,
		Events: events,
		Mail:   mailer.New(cfg.MailProvider, cfg.ResendAPIKey, cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName, logger),
		Logger: logger,
	}

	seedCtx, cancelSeed := context.WithTimeout(ctx, 30*time.Second)
	err = service.Seed(seedCtx, deps, service.SeedAdmin{
		Email:    cfg.AdminEmail,
		Phone:    "0000000000",
		Password: cfg.AdminPassword,
	}, cfg.BcryptCost)
	cancelSeed()
	if err != nil {
		logger.Fatalf("seed: %v", err)
	}

	notifications := service.NewNotificationService(deps)
	auth := service.NewAuthService(deps, cfg.BcryptCost)
	memberships := service.NewMembershipService(deps, catalog, notifications, cfg.BcryptCost)
	reservations := service.NewReservationService(deps, notifications)
	shop := service.NewShopService(deps)
	reports := service.NewReportService(deps)
	admin := service.NewAdminService(deps)
	maintenance := service.NewMaintenanceService(deps, notifications)

	sessions := session.NewManager(sessionStore(ctx, rdb, cfg, logger), cfg.SessionSecret, cfg.SessionTTL, cfg.SessionCookie, cfg.IsProduction())

	go scheduler.New("maintenance", func(ctx context.Context) {
		r := maintenance.Sweep(ctx)
		logger.Infof("maintenance: reminded=%d expired=%d bookings pruned=%d pending pruned=%d",
			r.Reminded, r.Expired, r.PrunedBookings, r.PrunedPending)
		for _, err := range r.Errors {
			logger.Errorf("maintenance: %v", err)
		}
	}, cfg.SweepInterval, cfg.SweepInitialDelay, logger).Start(ctx)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			c.Logger().Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	if cfg.CSRFEnabled {
		e.Use(middleware.CSRF(middleware.CSRFConfig{
			Key:            cfg.CSRFKey,
			Secure:         cfg.IsProduction(),
			TrustedOrigins: cfg.CSRFTrustedOrigins,
		}))
	}

	guards := router.Guards{
		Auth:      middleware.SessionAuth(sessions),
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb),
		Cache:     middleware.NewRedisCache(cfg.Cache, rdb),
	}
	invalidate := func(ctx context.Context) error { return middleware.InvalidateCache(ctx, cfg.Cache, rdb) }

	router.RegisterRoutes(e, handler.NewHealthHandler(st.ping))
	router.RegisterAuth(e, handler.NewAuthHandler(auth, sessions), guards)
	router.RegisterClasses(e, handler.NewReservationHandler(reservations), guards)
	router.RegisterShop(e, handler.NewShopHandler(shop), guards)
	router.RegisterMembership(e, handler.NewMembershipHandler(memberships), handler.NewUserHandler(notifications, reports), guards)
	router.RegisterAdmin(e, handler.NewAdminHandler(admin, reports, invalidate), guards)

	go func() {
		logger.Infof("listening on %s (env=%s, storage=%s, tz=%s)", cfg.Addr(), cfg.Env, cfg.StorageDriver, cfg.Location)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
}

// sessionStore prefers Redis. Without it sessions live in memory and a
// scheduler drops the expired ones.
func sessionStore(ctx context.Context, rdb *redis.Client, cfg config.Config, logger echo.Logger) session.Store {
	if rdb != nil {
		return session.NewRedisStore(rdb, "fitzone:sess")
	}
	mem := session.NewMemoryStore()
	go scheduler.New("session-sweep", func(context.Context) {
		if n := mem.Sweep(); n > 0 {
			logger.Debugf("session-sweep: dropped %d expired sessions", n)
		}
	}, 10*time.Minute, 10*time.Minute, logger).Start(ctx)
	return mem
}
