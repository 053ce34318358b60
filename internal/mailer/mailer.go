package mailer

import (
	"context"
	"fmt"
	"time"

	gomail "gopkg.in/gomail.v2"

	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/config"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
	"github.com/uniconnect/uniconnect-api/pkg/metrics"
)

// Interface defines outbound email operations
type Interface interface {
	SendOTP(ctx context.Context, to, code string, expiresAt time.Time) error
}

// Mailer sends transactional email over SMTP
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	siteName string
}

// New creates a mailer from SMTP configuration. Returns ErrMisconfigured when
// the SMTP settings are incomplete, so the caller can decide whether mail is
// required in its environment.
func New(cfg config.SMTPConfig, siteName string) (*Mailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, apperrors.MisconfiguredError("SMTP host and sender address are required")
	}

	return &Mailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		siteName: siteName,
	}, nil
}

// SendOTP delivers a verification code to the student's email address
func (m *Mailer) SendOTP(ctx context.Context, to, code string, expiresAt time.Time) error {
	start := time.Now()

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("%s verification code", m.siteName))
	msg.SetBody("text/html", m.otpBody(code, expiresAt))

	err := m.dialer.DialAndSend(msg)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.EmailDispatchTotal.WithLabelValues("otp", "error").Inc()
		logger.LogAPICall(ctx, "smtp", "sendOTP", "error", duration, zap.Error(err))
		return fmt.Errorf("failed to send OTP email: %w", err)
	}

	metrics.EmailDispatchTotal.WithLabelValues("otp", "success").Inc()
	logger.LogAPICall(ctx, "smtp", "sendOTP", "success", duration)
	return nil
}

func (m *Mailer) otpBody(code string, expiresAt time.Time) string {
	minutes := int(time.Until(expiresAt).Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1a1a2e; padding: 24px;">
	<h2>%s</h2>
	<p>Use this code to verify your email and edit your profile:</p>
	<p style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">%s</p>
	<p>The code expires in %d minutes. If you did not request it, you can ignore this email.</p>
</body>
</html>`, m.siteName, code, minutes)
}
