package email

import (
	"context"
	"time"

	"github.com/orris-inc/satsgate/internal/infrastructure/cache"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const poolAlertResource = "address_pool"

// AlertGate lets one instance send an alert per cooldown window.
type AlertGate interface {
	TryAcquireAlertLock(ctx context.Context, alertType cache.AlertType, resource string, ttl time.Duration) (bool, error)
}

type cooldownReader interface {
	GetRemainingCooldown(ctx context.Context, alertType cache.AlertType, resource string) (time.Duration, error)
}

// PoolAlerter emails operators when the pool is about to run dry. The alert
// is always logged; the email goes out at most once per window.
type PoolAlerter struct {
	mailer    *SMTPEmailService
	gate      AlertGate // Optional
	recipient string
	window    time.Duration
	logger    logger.Interface
}

func NewPoolAlerter(mailer *SMTPEmailService, gate AlertGate, recipient string, window time.Duration, logger logger.Interface) *PoolAlerter {
	return &PoolAlerter{
		mailer:    mailer,
		gate:      gate,
		recipient: recipient,
		window:    window,
		logger:    logger,
	}
}

func (a *PoolAlerter) PoolCritical(ctx context.Context, free int64, threshold int) error {
	a.logger.Errorw("address pool critically low and no active extended key",
		"free", free,
		"threshold", threshold,
	)

	if a.recipient == "" {
		return nil
	}

	if a.gate != nil {
		acquired, err := a.gate.TryAcquireAlertLock(ctx, cache.AlertTypePoolCritical, poolAlertResource, a.window)
		if err != nil {
			// Redis trouble should not silence the alert.
			a.logger.Warnw("alert deduplication unavailable", "error", err)
		} else if !acquired {
			a.logSuppressed(ctx)
			return nil
		}
	}

	return a.mailer.SendPoolCritical(a.recipient, free, threshold)
}

func (a *PoolAlerter) logSuppressed(ctx context.Context) {
	r, ok := a.gate.(cooldownReader)
	if !ok {
		a.logger.Debugw("pool alert suppressed, still in cooldown")
		return
	}
	remaining, err := r.GetRemainingCooldown(ctx, cache.AlertTypePoolCritical, poolAlertResource)
	if err != nil {
		remaining = 0
	}
	a.logger.Debugw("pool alert suppressed, still in cooldown", "remaining", remaining)
}
