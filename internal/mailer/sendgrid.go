package mailer

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends email via the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
	logger echo.Logger
}

func NewSendGridMailer(apiKey, from, fromName string, logger echo.Logger) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, from),
		logger: logger,
	}
}

func (s *SendGridMailer) Send(ctx context.Context, msg Message) error {
	html, err := RenderHTML(msg.Markdown)
	if err != nil {
		return err
	}
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(s.from, msg.Subject, to, msg.Markdown, html)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Errorf("sendgrid: send to %s failed: %v", msg.To, err)
		return err
	}
	if resp.StatusCode >= 400 {
		s.logger.Errorf("sendgrid: status %d body=%s", resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid: status code %d", resp.StatusCode)
	}
	s.logger.Infof("sendgrid: sent to=%s status=%d", msg.To, resp.StatusCode)
	return nil
}
