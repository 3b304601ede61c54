package service

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/mailer"
	"github.com/iliyamo/fitzone/internal/queue"
)

// sideEffects fans out best-effort work that must never fail a request:
// domain events and email. Both run with a short detached timeout so a slow
// broker or mail API does not hold the response.
type sideEffects struct {
	events queue.Publisher
	mail   mailer.Mailer
	logger echo.Logger
	sync   bool // run inline; used by tests
}

const sideEffectTimeout = 5 * time.Second

func (s sideEffects) run(fn func(ctx context.Context)) {
	if s.sync {
		fn(context.Background())
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (s sideEffects) warnf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Warnf(format, args...)
	}
}

func (s sideEffects) publish(q string, payload any) {
	if s.events == nil {
		return
	}
	s.run(func(ctx context.Context) {
		if err := s.events.Publish(ctx, q, payload); err != nil {
			s.warnf("event %s not published: %v", q, err)
		}
	})
}

func (s sideEffects) email(msg mailer.Message) {
	if s.mail == nil || msg.To == "" {
		return
	}
	s.run(func(ctx context.Context) {
		if err := s.mail.Send(ctx, msg); err != nil {
			s.warnf("mail %q to %s not sent: %v", msg.Subject, msg.To, err)
		}
	})
}

// Deps carries what every service shares.
type Deps struct {
	Stores Stores
	Events queue.Publisher
	Mail   mailer.Mailer
	Logger echo.Logger
	Clock  Clock
	// Inline runs events and email synchronously.
	Inline bool
}

func (d Deps) effects() sideEffects {
	return sideEffects{events: d.Events, mail: d.Mail, logger: d.Logger, sync: d.Inline}
}
