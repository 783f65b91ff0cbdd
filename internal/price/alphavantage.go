package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertrade/ledger/internal/domain"
)

// AlphaVantageClient fetches stock quotes from the Alpha Vantage
// GLOBAL_QUOTE endpoint. Asset IDs are ticker symbols ("AAPL").
// Quotes are assumed to be in the configured currency (USD for the
// public API).
type AlphaVantageClient struct {
	baseURL    string
	apiKey     string
	currency   string
	httpClient *http.Client
}

// NewAlphaVantageClient creates an Alpha Vantage API client.
func NewAlphaVantageClient(baseURL, apiKey, currency string) *AlphaVantageClient {
	return &AlphaVantageClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		currency:   strings.ToUpper(currency),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *AlphaVantageClient) GetPrice(ctx context.Context, _ domain.AssetType, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, ErrUnavailable
	}

	url := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("creating Alpha Vantage request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: Alpha Vantage request failed: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("%w: Alpha Vantage HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("reading Alpha Vantage response: %w", err)
	}

	// Rate-limit responses come back as 200 with a Note/Information
	// field instead of a quote.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Quote{}, fmt.Errorf("%w: parsing Alpha Vantage response: %w", ErrUnavailable, err)
	}
	if _, ok := raw["Note"]; ok {
		return Quote{}, fmt.Errorf("%w: Alpha Vantage rate limited", ErrUnavailable)
	}
	if _, ok := raw["Information"]; ok {
		return Quote{}, fmt.Errorf("%w: Alpha Vantage rate limited", ErrUnavailable)
	}

	var quote struct {
		Price string `json:"05. price"`
	}
	gq, ok := raw["Global Quote"]
	if !ok {
		return Quote{}, fmt.Errorf("%w: no quote for %s", ErrUnavailable, symbol)
	}
	if err := json.Unmarshal(gq, &quote); err != nil {
		return Quote{}, fmt.Errorf("%w: parsing quote for %s: %w", ErrUnavailable, symbol, err)
	}

	price, err := decimal.NewFromString(quote.Price)
	if err != nil || !price.IsPositive() {
		return Quote{}, fmt.Errorf("%w: bad price %q for %s", ErrUnavailable, quote.Price, symbol)
	}

	return Quote{Price: price, Currency: c.currency, FetchedAt: time.Now().UTC()}, nil
}
