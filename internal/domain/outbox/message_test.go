package outbox

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func TestNewMessages(t *testing.T) {
	msgs, err := NewMessages("payment.confirmed", "pay_1", []byte(`{}`), 5, testNow, EffectWebhookFanout, EffectEmailNotify)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "payment.confirmed:pay_1:webhook_fanout", msgs[0].DedupKey())
	assert.Equal(t, "payment.confirmed:pay_1:email_notify", msgs[1].DedupKey())
	assert.Equal(t, StatusPending, msgs[0].Status())
	assert.Equal(t, testNow, msgs[0].NextAttemptAt())
}

func TestMessage_RetryThenFail(t *testing.T) {
	m, err := NewMessage("escrow.refunded", "esc_1", EffectEmailNotify, nil, 2, testNow)
	require.NoError(t, err)

	require.NoError(t, m.MarkAttemptFailed(errors.New("smtp down"), time.Minute, testNow))
	assert.Equal(t, StatusPending, m.Status())
	assert.Equal(t, testNow.Add(time.Minute), m.NextAttemptAt())
	assert.Equal(t, "smtp down", m.LastError())

	require.NoError(t, m.MarkAttemptFailed(errors.New("smtp down"), time.Minute, testNow))
	assert.Equal(t, StatusFailed, m.Status())
	assert.ErrorIs(t, m.MarkDone(testNow), ErrMessageFinal)
}

func TestMessage_MarkDone(t *testing.T) {
	m, err := NewMessage("payment.confirmed", "pay_1", EffectWebhookFanout, nil, 3, testNow)
	require.NoError(t, err)

	require.NoError(t, m.MarkDone(testNow))
	assert.Equal(t, StatusDone, m.Status())
	assert.Equal(t, 1, m.Attempts())
	require.NotNil(t, m.ProcessedAt())
}
