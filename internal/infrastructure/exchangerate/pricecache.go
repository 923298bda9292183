package exchangerate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/orris-inc/satsgate/internal/application/payment/exchangerate"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const (
	defaultCacheTTL = 5 * time.Minute
	// If the cache is older than this, we refuse to use it even if every source fails.
	defaultMaxStaleAge = 15 * time.Minute
	// Maximum allowed move against the cached quote (15%)
	maxRateChangePercent = 0.15
)

var ErrPriceUnavailable = errors.New("btc price unavailable")

type quote struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// PriceCache serves BTC quotes from memory and refreshes them from the first
// source that answers. Concurrent refreshes for one currency share a fetch.
type PriceCache struct {
	sources     []Source
	clock       biztime.Clock
	ttl         time.Duration
	maxStaleAge time.Duration
	logger      logger.Interface

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]quote
}

func NewPriceCache(sources []Source, clock biztime.Clock, ttl, maxStaleAge time.Duration, logger logger.Interface) *PriceCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if maxStaleAge < ttl {
		maxStaleAge = defaultMaxStaleAge
	}
	return &PriceCache{
		sources:     sources,
		clock:       clock,
		ttl:         ttl,
		maxStaleAge: maxStaleAge,
		logger:      logger,
		cache:       make(map[string]quote),
	}
}

// Ensure PriceCache implements PriceProvider
var _ exchangerate.PriceProvider = (*PriceCache)(nil)

func (c *PriceCache) BTCPrice(ctx context.Context, currency string) (decimal.Decimal, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return decimal.Zero, fmt.Errorf("currency is required")
	}

	now := c.clock.Now()
	cached, ok := c.lookup(currency)
	if ok && now.Sub(cached.fetchedAt) < c.ttl {
		return cached.price, nil
	}

	v, err, _ := c.group.Do(currency, func() (interface{}, error) {
		return c.refresh(ctx, currency)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return v.(decimal.Decimal), nil
}

func (c *PriceCache) refresh(ctx context.Context, currency string) (decimal.Decimal, error) {
	now := c.clock.Now()
	cached, hasCached := c.lookup(currency)
	cacheAge := now.Sub(cached.fetchedAt)
	usable := hasCached && cacheAge < c.maxStaleAge

	price, source, err := c.fetch(ctx, currency)
	if err != nil {
		if usable {
			c.logger.Warnw("failed to fetch btc price, using cached value",
				"currency", currency,
				"error", err,
				"cached_price", cached.price.String(),
				"cache_age", cacheAge,
			)
			return cached.price, nil
		}
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, currency, err)
	}

	if hasCached {
		change := price.Sub(cached.price).Abs().Div(cached.price).InexactFloat64()
		if change > maxRateChangePercent {
			if !usable {
				c.logger.Errorw("btc price moved beyond threshold and cache expired, refusing quote",
					"currency", currency,
					"new_price", price.String(),
					"cached_price", cached.price.String(),
					"change_percent", change,
					"cache_age", cacheAge,
				)
				return decimal.Zero, fmt.Errorf("%w: %s moved %.2f%%", ErrPriceUnavailable, currency, change*100)
			}
			c.logger.Warnw("btc price moved beyond threshold, using cached value",
				"currency", currency,
				"new_price", price.String(),
				"cached_price", cached.price.String(),
				"change_percent", change,
			)
			return cached.price, nil
		}
	}

	c.mu.Lock()
	c.cache[currency] = quote{price: price, fetchedAt: now}
	c.mu.Unlock()

	c.logger.Debugw("fetched btc price", "currency", currency, "price", price.String(), "source", source)
	return price, nil
}

func (c *PriceCache) fetch(ctx context.Context, currency string) (decimal.Decimal, string, error) {
	var errs []error
	for _, src := range c.sources {
		price, err := src.FetchBTCPrice(ctx, currency)
		if err == nil {
			return price, src.Name(), nil
		}
		c.logger.Warnw("price source failed", "source", src.Name(), "currency", currency, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
	}
	if len(errs) == 0 {
		return decimal.Zero, "", errors.New("no price sources configured")
	}
	return decimal.Zero, "", errors.Join(errs...)
}

func (c *PriceCache) lookup(currency string) (quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.cache[currency]
	return q, ok
}
