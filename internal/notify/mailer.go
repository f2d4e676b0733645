package notify

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/shDavlatbek/bmsb/pkg/config"
)

// Mailer sends a single email message
type Mailer interface {
	Send(to, subject, plainText, htmlContent string) error
}

// NewMailer picks the mail backend from configuration; unknown backends
// fall back to console
func NewMailer(cfg *config.EmailConfig, log *zap.Logger) Mailer {
	if cfg.Backend == "sendgrid" && cfg.SendgridAPIKey != "" {
		return &sendgridMailer{
			client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
			from:   sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		}
	}
	return &consoleMailer{log: log}
}

// consoleMailer logs messages instead of sending them (development)
type consoleMailer struct {
	log *zap.Logger
}

func (m *consoleMailer) Send(to, subject, plainText, _ string) error {
	m.log.Info("Email (console backend)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", plainText))
	return nil
}

// sendgridMailer delivers through the Sendgrid v3 API
type sendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func (m *sendgridMailer) Send(to, subject, plainText, htmlContent string) error {
	msg := sgmail.NewSingleEmail(m.from, subject, sgmail.NewEmail("", to), plainText, htmlContent)
	resp, err := m.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
