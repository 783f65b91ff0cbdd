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

// CoinGeckoClient fetches crypto prices from the CoinGecko simple
// price API. Asset IDs are CoinGecko coin ids ("bitcoin", "ethereum").
type CoinGeckoClient struct {
	baseURL    string
	currency   string
	httpClient *http.Client
	delay      time.Duration
	maxRetries int
}

// NewCoinGeckoClient creates a CoinGecko API client quoting in the
// given vs-currency (lowercased on the wire, e.g. "usd").
func NewCoinGeckoClient(baseURL, currency string, delay time.Duration, maxRetries int) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    baseURL,
		currency:   strings.ToUpper(currency),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		delay:      delay,
		maxRetries: maxRetries,
	}
}

func (c *CoinGeckoClient) GetPrice(ctx context.Context, _ domain.AssetType, assetID string) (Quote, error) {
	if assetID == "" {
		return Quote{}, ErrUnavailable
	}

	vs := strings.ToLower(c.currency)
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s&precision=full", c.baseURL, assetID, vs)

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	// Parse: {"bitcoin":{"usd":45000.12}}
	var raw map[string]map[string]json.Number
	if err := json.Unmarshal(body, &raw); err != nil {
		return Quote{}, fmt.Errorf("%w: parsing CoinGecko response: %w", ErrUnavailable, err)
	}

	entry, ok := raw[assetID]
	if !ok {
		return Quote{}, fmt.Errorf("%w: unknown coin %s", ErrUnavailable, assetID)
	}
	value, ok := entry[vs]
	if !ok {
		return Quote{}, fmt.Errorf("%w: no %s quote for %s", ErrUnavailable, vs, assetID)
	}

	price, err := decimal.NewFromString(value.String())
	if err != nil || !price.IsPositive() {
		return Quote{}, fmt.Errorf("%w: bad price %q for %s", ErrUnavailable, value, assetID)
	}

	return Quote{Price: price, Currency: c.currency, FetchedAt: time.Now().UTC()}, nil
}

func (c *CoinGeckoClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.delay
			if baseDelay == 0 {
				baseDelay = 10 * time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating CoinGecko request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("CoinGecko request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading CoinGecko response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("CoinGecko rate limited (attempt %d/%d)", attempt+1, c.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("CoinGecko HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
