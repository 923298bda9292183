package email

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/infrastructure/cache"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func testConfig() SMTPConfig {
	return SMTPConfig{FromAddress: "billing@shop.example", FromName: "Shop"}
}

func TestSMTPEmailService_PaymentConfirmed(t *testing.T) {
	dialer := &recordingDialer{}
	svc := NewSMTPEmailServiceWithDialer(testConfig(), dialer, logger.NewNop())

	err := svc.SendPaymentConfirmed(context.Background(), "buyer@example.com", payment.ConfirmedEvent{
		OrderID:   "order-7",
		AmountBTC: "0.00150000",
		TxID:      "abc123",
	})
	require.NoError(t, err)
	require.Len(t, dialer.sent, 1)

	assert.Equal(t, []string{"buyer@example.com"}, dialer.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Payment received for order order-7"}, dialer.sent[0].GetHeader("Subject"))
	assert.Contains(t, render(t, dialer.sent[0]), "abc123")
}

func TestSMTPEmailService_RefundAndErrors(t *testing.T) {
	dialer := &recordingDialer{err: errors.New("connection refused")}
	svc := NewSMTPEmailServiceWithDialer(testConfig(), dialer, logger.NewNop())

	err := svc.SendRefundIssued(context.Background(), "buyer@example.com", escrow.RefundedEvent{
		OrderID: "order-8", Amount: "100", Currency: "USD", Reason: "customer_request",
	})
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPEmailService_UnconfiguredSkips(t *testing.T) {
	svc := NewSMTPEmailService(SMTPConfig{}, logger.NewNop())
	assert.False(t, svc.Configured())
	assert.NoError(t, svc.SendPoolCritical("ops@shop.example", 2, 3))
}

type stubGate struct {
	acquired bool
	calls    int
}

func (g *stubGate) TryAcquireAlertLock(context.Context, cache.AlertType, string, time.Duration) (bool, error) {
	g.calls++
	return g.acquired, nil
}

func TestPoolAlerter_RespectsCooldown(t *testing.T) {
	dialer := &recordingDialer{}
	svc := NewSMTPEmailServiceWithDialer(testConfig(), dialer, logger.NewNop())

	gate := &stubGate{acquired: true}
	alerter := NewPoolAlerter(svc, gate, "ops@shop.example", time.Hour, logger.NewNop())
	require.NoError(t, alerter.PoolCritical(context.Background(), 2, 3))
	require.Len(t, dialer.sent, 1)

	gate.acquired = false
	require.NoError(t, alerter.PoolCritical(context.Background(), 1, 3))
	assert.Len(t, dialer.sent, 1)
	assert.Equal(t, 2, gate.calls)
}
