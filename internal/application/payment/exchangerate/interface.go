package exchangerate

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceProvider quotes the BTC spot price in a fiat currency.
type PriceProvider interface {
	// BTCPrice returns the price of 1 BTC in currency (ISO 4217, e.g. "USD").
	BTCPrice(ctx context.Context, currency string) (decimal.Decimal, error)
}
