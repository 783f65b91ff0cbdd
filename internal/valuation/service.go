// Package valuation computes market value, unrealized P&L and
// distribution for an account against live prices and FX rates. It is
// strictly read-only over account state; refreshing prices never
// touches the ledger.
package valuation

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/papertrade/ledger/internal/domain"
	"github.com/papertrade/ledger/internal/fx"
	"github.com/papertrade/ledger/internal/price"
)

// HoldingValue is one holding priced in the display currency. When no
// usable price exists, PriceAvailable is false and the value fields
// are zero -- a pending price, not a worthless asset. Aggregates count
// such holdings as zero but the flag survives so callers can tell the
// two apart.
type HoldingValue struct {
	AssetType      domain.AssetType `json:"assetType"`
	AssetID        string           `json:"assetId"`
	Symbol         string           `json:"symbol"`
	Name           string           `json:"name"`
	Quantity       decimal.Decimal  `json:"quantity"`
	AvgBuyPrice    decimal.Decimal  `json:"avgBuyPrice"`
	TotalCost      decimal.Decimal  `json:"totalCost"`
	PriceAvailable bool             `json:"priceAvailable"`
	UnitPrice      decimal.Decimal  `json:"unitPrice"`
	Value          decimal.Decimal  `json:"value"`
	UnrealizedPnL  decimal.Decimal  `json:"unrealizedPnl"`
	PnLPercent     *decimal.Decimal `json:"pnlPercent,omitempty"`
}

// Slice is one entry of the portfolio distribution.
type Slice struct {
	Symbol       string          `json:"symbol"`
	Value        decimal.Decimal `json:"value"`
	SharePercent decimal.Decimal `json:"sharePercent"`
}

// Summary is the portfolio-level valuation in one display currency.
type Summary struct {
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	TotalValue decimal.Decimal `json:"totalValue"`
	TotalPnL   decimal.Decimal `json:"totalPnl"`
	PnLPercent decimal.Decimal `json:"pnlPercent"`
	Holdings   []HoldingValue  `json:"holdings"`
	Slices     []Slice         `json:"distribution"`
}

// Service is the valuator. Prices come from the oracle in feed-native
// currency and are converted to the requested display currency;
// ledger figures (balance, cost) are stored in the base currency.
type Service struct {
	oracle         price.Oracle
	converter      *fx.Converter
	baseCurrency   string
	initialBalance decimal.Decimal
}

// NewService creates a valuator.
func NewService(oracle price.Oracle, converter *fx.Converter, baseCurrency string, initialBalance decimal.Decimal) *Service {
	return &Service{
		oracle:         oracle,
		converter:      converter,
		baseCurrency:   baseCurrency,
		initialBalance: initialBalance,
	}
}

// HoldingValue prices one holding in displayCurrency.
func (s *Service) HoldingValue(ctx context.Context, h domain.Holding, displayCurrency string) HoldingValue {
	hv := HoldingValue{
		AssetType:   h.AssetType,
		AssetID:     h.AssetID,
		Symbol:      h.Symbol,
		Name:        h.Name,
		Quantity:    h.Quantity,
		AvgBuyPrice: h.AvgBuyPrice,
		TotalCost:   h.TotalCost,
	}

	quote, err := s.oracle.GetPrice(ctx, h.AssetType, h.AssetID)
	if err != nil {
		return hv
	}
	unitPrice, err := s.converter.Convert(quote.Price, quote.Currency, displayCurrency)
	if err != nil {
		return hv
	}
	cost, err := s.converter.Convert(h.TotalCost, s.baseCurrency, displayCurrency)
	if err != nil {
		return hv
	}

	hv.PriceAvailable = true
	hv.UnitPrice = unitPrice
	hv.Value = unitPrice.Mul(h.Quantity)
	hv.UnrealizedPnL = hv.Value.Sub(cost)
	if !cost.IsZero() {
		pct := domain.Percent(hv.UnrealizedPnL, cost)
		hv.PnLPercent = &pct
	}
	return hv
}

// Summary values the whole account in displayCurrency. Holdings with
// no usable price contribute zero to the totals but stay flagged in
// the holding list.
func (s *Service) Summary(ctx context.Context, account *domain.Account, displayCurrency string) (Summary, error) {
	balance, err := s.converter.Convert(account.Balance, s.baseCurrency, displayCurrency)
	if err != nil {
		return Summary{}, err
	}
	initial, err := s.converter.Convert(s.initialBalance, s.baseCurrency, displayCurrency)
	if err != nil {
		return Summary{}, err
	}

	holdings := lo.Map(account.Holdings, func(h domain.Holding, _ int) HoldingValue {
		return s.HoldingValue(ctx, h, displayCurrency)
	})

	totalValue := lo.Reduce(holdings, func(acc decimal.Decimal, hv HoldingValue, _ int) decimal.Decimal {
		return acc.Add(hv.Value)
	}, balance)

	totalPnL := totalValue.Sub(initial)

	return Summary{
		Currency:   displayCurrency,
		Balance:    balance,
		TotalValue: totalValue,
		TotalPnL:   totalPnL,
		PnLPercent: domain.Percent(totalPnL, initial),
		Holdings:   holdings,
		Slices:     Distribution(holdings),
	}, nil
}

// Distribution breaks priced holdings down by share of priced value.
// Holdings with unavailable or zero value are excluded rather than
// shown as zero-share; shares sum to 100% up to rounding.
func Distribution(holdings []HoldingValue) []Slice {
	priced := lo.Filter(holdings, func(hv HoldingValue, _ int) bool {
		return hv.PriceAvailable && hv.Value.IsPositive()
	})

	total := lo.Reduce(priced, func(acc decimal.Decimal, hv HoldingValue, _ int) decimal.Decimal {
		return acc.Add(hv.Value)
	}, decimal.Zero)

	return lo.Map(priced, func(hv HoldingValue, _ int) Slice {
		return Slice{
			Symbol:       hv.Symbol,
			Value:        hv.Value,
			SharePercent: domain.Percent(hv.Value, total),
		}
	})
}
