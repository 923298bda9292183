package email

import (
	"context"
	"errors"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

var ErrEmailServiceNotConfigured = errors.New("email service not configured")

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// Dialer is the part of *gomail.Dialer the service uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPEmailService sends customer and operator mail. With no SMTP host
// configured every send is skipped with a warning, so a missing mail setup
// never blocks the outbox.
type SMTPEmailService struct {
	config SMTPConfig
	dialer Dialer
	logger logger.Interface
}

func NewSMTPEmailService(config SMTPConfig, logger logger.Interface) *SMTPEmailService {
	var dialer Dialer
	if config.Host != "" {
		dialer = gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	}
	return NewSMTPEmailServiceWithDialer(config, dialer, logger)
}

func NewSMTPEmailServiceWithDialer(config SMTPConfig, dialer Dialer, logger logger.Interface) *SMTPEmailService {
	return &SMTPEmailService{
		config: config,
		dialer: dialer,
		logger: logger,
	}
}

func (s *SMTPEmailService) Configured() bool {
	return s.dialer != nil
}

func (s *SMTPEmailService) SendPaymentConfirmed(_ context.Context, to string, ev payment.ConfirmedEvent) error {
	subject := fmt.Sprintf("Payment received for order %s", ev.OrderID)

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Payment confirmed</h2>
			<p>We received your Bitcoin payment for order <strong>%s</strong>.</p>
			<p>Amount: %s BTC</p>
			<p>Transaction: <code>%s</code></p>
			<p>Thank you for your purchase.</p>
		</body>
		</html>
	`, html.EscapeString(ev.OrderID), html.EscapeString(ev.AmountBTC), html.EscapeString(ev.TxID))

	plainBody := fmt.Sprintf(`
Payment confirmed

We received your Bitcoin payment for order %s.

Amount: %s BTC
Transaction: %s

Thank you for your purchase.
	`, ev.OrderID, ev.AmountBTC, ev.TxID)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) SendRefundIssued(_ context.Context, to string, ev escrow.RefundedEvent) error {
	subject := fmt.Sprintf("Refund issued for order %s", ev.OrderID)

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Refund issued</h2>
			<p>A refund of %s %s has been issued for order <strong>%s</strong>.</p>
			<p>Reason: %s</p>
			<p>If you have questions, reply to this email.</p>
		</body>
		</html>
	`, html.EscapeString(ev.Amount), html.EscapeString(ev.Currency), html.EscapeString(ev.OrderID), html.EscapeString(ev.Reason))

	plainBody := fmt.Sprintf(`
Refund issued

A refund of %s %s has been issued for order %s.
Reason: %s

If you have questions, reply to this email.
	`, ev.Amount, ev.Currency, ev.OrderID, ev.Reason)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

// SendPoolCritical tells operators that the address pool is nearly empty
// and no extended key is active to refill it.
func (s *SMTPEmailService) SendPoolCritical(to string, free int64, threshold int) error {
	subject := "[satsgate] Address pool critically low"

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Address pool critically low</h2>
			<p>Only <strong>%d</strong> free receiving addresses remain (threshold %d).</p>
			<p>No extended public key is active, so the pool cannot be replenished automatically.</p>
			<p>Activate a key or seed more addresses.</p>
		</body>
		</html>
	`, free, threshold)

	plainBody := fmt.Sprintf(`
Address pool critically low

Only %d free receiving addresses remain (threshold %d).
No extended public key is active, so the pool cannot be replenished automatically.

Activate a key or seed more addresses.
	`, free, threshold)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	if s.dialer == nil {
		s.logger.Warnw("email service not configured, email skipped", "to", to, "subject", subject)
		return nil
	}

	m := gomail.NewMessage()
	if s.config.FromName != "" {
		m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	} else {
		m.SetHeader("From", s.config.FromAddress)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
