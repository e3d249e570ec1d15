package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.coinbase.com"

// CoinbaseClient implements ports.QuoteProvider against the Coinbase
// public spot-price endpoint. The provider is treated as unreliable:
// callers collapse every error from here into a single failure kind.
type CoinbaseClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinbaseClient creates a spot-price client. An empty baseURL selects
// the public Coinbase API; the timeout bounds the whole lookup so a
// stalled provider can never hold up a ledger operation.
func NewCoinbaseClient(baseURL string, timeout time.Duration) *CoinbaseClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &CoinbaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// SpotRate fetches the spot exchange rate for base/counter
// (e.g. "USD", "EUR" -> USD-EUR).
func (c *CoinbaseClient) SpotRate(ctx context.Context, base, counter string) (decimal.Decimal, error) {
	pair := strings.ToUpper(base) + "-" + strings.ToUpper(counter)
	url := fmt.Sprintf("%s/v2/prices/%s/spot", c.baseURL, pair)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build spot request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("spot request for %s: %w", pair, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("spot request for %s: status %d", pair, resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Amount string `json:"amount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode spot response for %s: %w", pair, err)
	}

	rate, err := decimal.NewFromString(payload.Data.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse spot rate %q for %s: %w", payload.Data.Amount, pair, err)
	}
	if rate.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("non-positive spot rate %s for %s", rate, pair)
	}

	return rate, nil
}
