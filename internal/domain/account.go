package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a net open position in one asset. Quantity is always
// positive; a position that reaches zero is removed from the account
// rather than kept at zero. TotalCost is maintained incrementally on
// every trade instead of being derived from Quantity and AvgBuyPrice,
// so rounding drift cannot compound across trades.
type Holding struct {
	AssetType   AssetType       `json:"assetType"`
	AssetID     string          `json:"assetId"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	AvgBuyPrice decimal.Decimal `json:"avgBuyPrice"`
	TotalCost   decimal.Decimal `json:"totalCost"`
}

// Key returns the composite identity of the held asset.
func (h Holding) Key() AssetKey {
	return AssetKey{Type: h.AssetType, ID: h.AssetID}
}

// Transaction is an immutable record of one executed trade. Price is
// the execution price snapshot in base currency and is never
// recomputed. BalanceAfter is the account balance immediately after
// the trade, kept for audit replay.
type Transaction struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	Side         TradeSide       `json:"type"`
	AssetType    AssetType       `json:"assetType"`
	AssetID      string          `json:"assetId"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"total"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
}

// Account owns one user's simulated cash balance, open holdings and
// trade history. Holdings are unique by (assetType, assetId).
// Transactions are stored oldest first. Balance never goes negative.
type Account struct {
	UserID       string          `json:"userId"`
	Balance      decimal.Decimal `json:"balance"`
	Holdings     []Holding       `json:"holdings"`
	Transactions []Transaction   `json:"transactions"`
}

// NewAccount creates a fresh account with the given starting balance.
func NewAccount(userID string, initialBalance decimal.Decimal) *Account {
	return &Account{
		UserID:       userID,
		Balance:      initialBalance,
		Holdings:     []Holding{},
		Transactions: []Transaction{},
	}
}

// Holding returns the position for the given asset, if any.
func (a *Account) Holding(t AssetType, id string) (Holding, bool) {
	for _, h := range a.Holdings {
		if h.AssetType == t && h.AssetID == id {
			return h, true
		}
	}
	return Holding{}, false
}

// HeldQuantity returns the held quantity for the asset, zero if none.
func (a *Account) HeldQuantity(t AssetType, id string) decimal.Decimal {
	h, ok := a.Holding(t, id)
	if !ok {
		return decimal.Zero
	}
	return h.Quantity
}

// Clone returns a deep copy of the account. Mutating the copy never
// affects the original; decimal values are immutable so slice copies
// are sufficient.
func (a *Account) Clone() *Account {
	return &Account{
		UserID:       a.UserID,
		Balance:      a.Balance,
		Holdings:     slices.Clone(a.Holdings),
		Transactions: slices.Clone(a.Transactions),
	}
}
