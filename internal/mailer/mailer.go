// Package mailer sends transactional email. Bodies are written in Markdown
// and rendered to HTML with goldmark; the plain text part is the Markdown
// source itself.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Message is one outgoing email.
type Message struct {
	To       string
	ToName   string
	Subject  string
	Markdown string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Raw HTML in Markdown input is escaped (WithUnsafe is not set).
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderHTML converts a Markdown body to HTML.
func RenderHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// LogMailer writes messages to the logger instead of sending them. It is the
// default when no provider is configured.
type LogMailer struct{ Logger echo.Logger }

func (m LogMailer) Send(_ context.Context, msg Message) error {
	m.Logger.Infof("mail (not sent): to=%s subject=%q body=%q", msg.To, msg.Subject, firstLine(msg.Markdown))
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Providers accepted by New.
const (
	ProviderNone     = "none"
	ProviderResend   = "resend"
	ProviderSendGrid = "sendgrid"
)

// New picks an implementation by provider name. An unknown provider or a
// missing API key falls back to LogMailer with a warning.
func New(provider, resendKey, sendgridKey, from, fromName string, logger echo.Logger) Mailer {
	switch strings.ToLower(provider) {
	case ProviderResend:
		if resendKey != "" {
			return NewResendMailer(resendKey, from, fromName, logger)
		}
		logger.Warn("mail: MAIL_PROVIDER=resend but RESEND_API_KEY is empty; logging mail instead")
	case ProviderSendGrid:
		if sendgridKey != "" {
			return NewSendGridMailer(sendgridKey, from, fromName, logger)
		}
		logger.Warn("mail: MAIL_PROVIDER=sendgrid but SENDGRID_API_KEY is empty; logging mail instead")
	case "", ProviderNone:
	default:
		logger.Warnf("mail: unknown MAIL_PROVIDER %q; logging mail instead", provider)
	}
	return LogMailer{Logger: logger}
}
