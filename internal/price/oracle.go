// Package price supplies last-known unit prices for tradeable assets
// from external feeds. Feed trouble of any kind -- timeouts, unknown
// assets, malformed responses -- degrades to ErrUnavailable so the
// ledger can reject a single trade instead of failing wholesale.
package price

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertrade/ledger/internal/domain"
)

// ErrUnavailable means no usable price exists for the asset right now.
var ErrUnavailable = errors.New("price unavailable")

// Quote is a last-known unit price in its feed's native currency.
type Quote struct {
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Oracle looks up the live unit price of an asset.
type Oracle interface {
	GetPrice(ctx context.Context, assetType domain.AssetType, assetID string) (Quote, error)
}

// Router dispatches price lookups to a per-asset-type oracle.
type Router struct {
	crypto Oracle
	stock  Oracle
}

// NewRouter creates a router over the crypto and stock oracles.
func NewRouter(crypto, stock Oracle) *Router {
	return &Router{crypto: crypto, stock: stock}
}

func (r *Router) GetPrice(ctx context.Context, assetType domain.AssetType, assetID string) (Quote, error) {
	switch assetType {
	case domain.AssetTypeCrypto:
		return r.crypto.GetPrice(ctx, assetType, assetID)
	case domain.AssetTypeStock:
		return r.stock.GetPrice(ctx, assetType, assetID)
	}
	return Quote{}, ErrUnavailable
}
