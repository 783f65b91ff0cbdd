package domain

// AssetType classifies tradeable assets.
type AssetType string

const (
	AssetTypeCrypto AssetType = "crypto"
	AssetTypeStock  AssetType = "stock"
)

// Valid reports whether the asset type is one of the known kinds.
func (t AssetType) Valid() bool {
	return t == AssetTypeCrypto || t == AssetTypeStock
}

// AssetKey uniquely identifies an asset within the ledger.
// The ID is opaque but stable within its type (a CoinGecko coin id
// for crypto, a ticker symbol for stocks).
type AssetKey struct {
	Type AssetType `json:"assetType"`
	ID   string    `json:"assetId"`
}

// TradeSide is the direction of a trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// Valid reports whether the side is buy or sell.
func (s TradeSide) Valid() bool {
	return s == TradeSideBuy || s == TradeSideSell
}
