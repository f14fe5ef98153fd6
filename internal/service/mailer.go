package service

import (
	"context"
	"fmt"

	"medilink/config"

	"github.com/go-gomail/gomail"
	"github.com/sirupsen/logrus"
)

// Mailer delivers one-time codes.
type Mailer interface {
	SendOTP(ctx context.Context, to string, purpose OTPPurpose, code string) error
}

// NewMailer returns an SMTP mailer, or a log mailer when no SMTP host is configured.
func NewMailer(cfg config.MailConfig, log *logrus.Logger) Mailer {
	if cfg.Host == "" {
		return &logMailer{log: log}
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *logrus.Logger
}

func otpSubject(purpose OTPPurpose) string {
	switch purpose {
	case OTPPurposeSignup:
		return "Confirm your MediLink account"
	default:
		return "Your MediLink sign-in code"
	}
}

func (m *smtpMailer) SendOTP(ctx context.Context, to string, purpose OTPPurpose, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", otpSubject(purpose))
	msg.SetBody("text/plain", fmt.Sprintf("Your code is %s. It expires in a few minutes.", code))

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Warnf("Failed to send OTP email to %s: %+v", to, err)
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

type logMailer struct {
	log *logrus.Logger
}

func (m *logMailer) SendOTP(ctx context.Context, to string, purpose OTPPurpose, code string) error {
	m.log.WithFields(logrus.Fields{
		"to":      to,
		"purpose": purpose,
		"code":    code,
	}).Info("OTP issued (SMTP disabled)")
	return nil
}
