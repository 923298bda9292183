package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Maximum response body size for price APIs (64KB)
const maxPriceResponseSize = 64 << 10

// Source fetches a live BTC quote.
type Source interface {
	Name() string
	FetchBTCPrice(ctx context.Context, currency string) (decimal.Decimal, error)
}

// CoinGeckoSource reads /simple/price.
type CoinGeckoSource struct {
	baseURL    string
	httpClient *http.Client
}

func NewCoinGeckoSource(baseURL string, httpClient *http.Client) *CoinGeckoSource {
	return &CoinGeckoSource{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (s *CoinGeckoSource) Name() string { return "coingecko" }

func (s *CoinGeckoSource) FetchBTCPrice(ctx context.Context, currency string) (decimal.Decimal, error) {
	vs := strings.ToLower(currency)
	q := url.Values{"ids": {"bitcoin"}, "vs_currencies": {vs}}
	endpoint := s.baseURL + "/simple/price?" + q.Encode()

	// {"bitcoin":{"usd":64012.5}}
	var data map[string]map[string]json.Number
	if err := getJSON(ctx, s.httpClient, endpoint, &data); err != nil {
		return decimal.Zero, err
	}

	raw, ok := data["bitcoin"][vs]
	if !ok {
		return decimal.Zero, fmt.Errorf("no %s quote in response", currency)
	}
	return parsePrice(raw.String())
}

// CoinbaseSource reads /prices/BTC-<CUR>/spot.
type CoinbaseSource struct {
	baseURL    string
	httpClient *http.Client
}

func NewCoinbaseSource(baseURL string, httpClient *http.Client) *CoinbaseSource {
	return &CoinbaseSource{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (s *CoinbaseSource) Name() string { return "coinbase" }

func (s *CoinbaseSource) FetchBTCPrice(ctx context.Context, currency string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/prices/BTC-%s/spot", s.baseURL, url.PathEscape(strings.ToUpper(currency)))

	var data struct {
		Data struct {
			Amount   string `json:"amount"`
			Currency string `json:"currency"`
		} `json:"data"`
	}
	if err := getJSON(ctx, s.httpClient, endpoint, &data); err != nil {
		return decimal.Zero, err
	}
	if !strings.EqualFold(data.Data.Currency, currency) {
		return decimal.Zero, fmt.Errorf("quote currency %q does not match %q", data.Data.Currency, currency)
	}
	return parsePrice(data.Data.Amount)
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPriceResponseSize))
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPriceResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid price from API: %s", raw)
	}
	return price, nil
}
