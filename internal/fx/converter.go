// Package fx converts amounts between currencies using a periodically
// refreshed rate table. A missing pair degrades to ErrRateUnavailable
// rather than an error fatal to the caller's request.
package fx

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRateUnavailable means the rate table has no entry for a currency.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// RateTable maps currency codes to units per one unit of the table's
// base currency. The base currency itself is implicitly 1.
type RateTable map[string]decimal.Decimal

// Converter converts between currencies via a base-relative rate
// table. The table is swapped wholesale under a lock on refresh, so
// readers always see one consistent table.
type Converter struct {
	base string

	mu        sync.RWMutex
	rates     RateTable
	updatedAt time.Time
}

// NewConverter creates a converter with the given base currency and
// an empty rate table. Until SetRates is called only base-to-base
// conversion succeeds.
func NewConverter(base string) *Converter {
	return &Converter{
		base:  strings.ToUpper(base),
		rates: RateTable{},
	}
}

// Base returns the converter's base currency code.
func (c *Converter) Base() string { return c.base }

// SetRates replaces the rate table.
func (c *Converter) SetRates(rates RateTable) {
	normalized := make(RateTable, len(rates))
	for code, rate := range rates {
		normalized[strings.ToUpper(code)] = rate
	}

	c.mu.Lock()
	c.rates = normalized
	c.updatedAt = time.Now().UTC()
	c.mu.Unlock()
}

// UpdatedAt returns when the table was last replaced, zero if never.
func (c *Converter) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// rate returns units of code per one base unit.
func (c *Converter) rate(code string) (decimal.Decimal, bool) {
	if code == c.base {
		return decimal.NewFromInt(1), true
	}
	r, ok := c.rates[code]
	if !ok || !r.IsPositive() {
		return decimal.Decimal{}, false
	}
	return r, true
}

// Convert converts amount from one currency to another. Same-currency
// conversion is exact and never consults the table.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	fromRate, ok := c.rate(from)
	if !ok {
		return decimal.Decimal{}, errors.Join(ErrRateUnavailable, errors.New("no rate for "+from))
	}
	toRate, ok := c.rate(to)
	if !ok {
		return decimal.Decimal{}, errors.Join(ErrRateUnavailable, errors.New("no rate for "+to))
	}

	return amount.Div(fromRate).Mul(toRate), nil
}
