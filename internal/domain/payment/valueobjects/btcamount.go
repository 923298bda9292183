package valueobjects

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SatoshisPerBTC is the number of satoshis in one bitcoin.
const SatoshisPerBTC = 100_000_000

// BTCDecimals is the precision of an on-chain amount.
const BTCDecimals = 8

// ParseBTC validates a positive BTC amount with at most eight decimals.
func ParseBTC(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid BTC amount %q: %w", s, err)
	}
	if err := ValidateBTC(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func ValidateBTC(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("BTC amount must be positive")
	}
	if !d.Equal(d.Round(BTCDecimals)) {
		return fmt.Errorf("BTC amount has more than %d decimals", BTCDecimals)
	}
	return nil
}

// FormatBTC renders an amount for BIP21 URIs: no exponent, no trailing zeros.
func FormatBTC(d decimal.Decimal) string {
	return d.Round(BTCDecimals).String()
}

// SatsToBTC converts satoshis to BTC.
func SatsToBTC(sats int64) decimal.Decimal {
	return decimal.New(sats, -BTCDecimals)
}
