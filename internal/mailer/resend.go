package mailer

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/resend/resend-go/v2"
)

// ResendMailer sends email via the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	logger echo.Logger
}

func NewResendMailer(apiKey, from, fromName string, logger echo.Logger) *ResendMailer {
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, from)
	}
	return &ResendMailer{client: resend.NewClient(apiKey), from: from, logger: logger}
}

func (s *ResendMailer) Send(ctx context.Context, msg Message) error {
	html, err := RenderHTML(msg.Markdown)
	if err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    html,
		Text:    msg.Markdown,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Errorf("resend: send to %s failed: %v", msg.To, err)
		return fmt.Errorf("resend send failed: %w", err)
	}
	s.logger.Infof("resend: sent message_id=%s to=%s subject=%q", sent.Id, msg.To, msg.Subject)
	return nil
}
