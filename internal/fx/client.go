package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Client fetches FX rates from a frankfurter-style API
// (GET {base}/latest?from=USD) and pushes them into a Converter.
type Client struct {
	baseURL    string
	converter  *Converter
	httpClient *http.Client
}

// NewClient creates an FX rates client feeding the given converter.
func NewClient(baseURL string, converter *Converter) *Client {
	return &Client{
		baseURL:    baseURL,
		converter:  converter,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Refresh fetches the latest rates for the converter's base currency
// and swaps the table. On failure the previous table stays in place.
func (c *Client) Refresh(ctx context.Context) error {
	url := fmt.Sprintf("%s/latest?from=%s", c.baseURL, c.converter.Base())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating FX request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("FX request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FX HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading FX response: %w", err)
	}

	// Parse: {"base":"USD","date":"2024-01-15","rates":{"EUR":0.92}}
	var raw struct {
		Base  string                 `json:"base"`
		Rates map[string]json.Number `json:"rates"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("parsing FX response: %w", err)
	}

	rates := make(RateTable, len(raw.Rates))
	for code, value := range raw.Rates {
		rate, err := decimal.NewFromString(value.String())
		if err != nil || !rate.IsPositive() {
			continue
		}
		rates[code] = rate
	}
	if len(rates) == 0 {
		return fmt.Errorf("FX response carried no usable rates")
	}

	c.converter.SetRates(rates)
	return nil
}
