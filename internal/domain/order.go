package domain

import "github.com/shopspring/decimal"

// Order is a request for immediate market execution of one trade.
// Price is the execution price in base currency; callers are expected
// to fill it from a quote fetched immediately before execution, never
// from a stale cache.
type Order struct {
	Side      TradeSide       `json:"type"`
	AssetType AssetType       `json:"assetType"`
	AssetID   string          `json:"assetId"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Key returns the identity of the ordered asset.
func (o Order) Key() AssetKey {
	return AssetKey{Type: o.AssetType, ID: o.AssetID}
}
