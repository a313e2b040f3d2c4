package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/crestbridge/ir-portal/internal/application/port"
	"go.uber.org/zap"
)

// Config holds SMTP relay settings. An empty Host disables delivery; sends
// are then logged and dropped, which keeps local development mail-free.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender implements port.EmailSender over an SMTP relay.
type Sender struct {
	cfg    Config
	logger *zap.Logger
}

// NewSender creates a new email sender
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// Send delivers a plain-text email to a single recipient.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if s.cfg.Host == "" {
		s.logger.Info("Email delivery disabled, dropping message",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := buildMessage(s.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

// Verify interface compliance
var _ port.EmailSender = (*Sender)(nil)
