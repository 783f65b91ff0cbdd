package domain

import "github.com/shopspring/decimal"

// Policy defines quantity granularity per asset type. Crypto
// quantities may be fractional down to a fixed minimum increment;
// stocks may be restricted to whole shares.
type Policy struct {
	CryptoMinIncrement decimal.Decimal
	WholeShareStocks   bool
}

// DefaultPolicy allows crypto down to 1e-8 units and whole shares
// only for stocks.
func DefaultPolicy() Policy {
	return Policy{
		CryptoMinIncrement: decimal.New(1, -8),
		WholeShareStocks:   true,
	}
}

// ValidQuantity reports whether q is a positive quantity respecting
// the granularity for the given asset type.
func (p Policy) ValidQuantity(t AssetType, q decimal.Decimal) bool {
	if !q.IsPositive() {
		return false
	}
	switch t {
	case AssetTypeStock:
		if p.WholeShareStocks && !q.IsInteger() {
			return false
		}
	case AssetTypeCrypto:
		if p.CryptoMinIncrement.IsPositive() && !q.Mod(p.CryptoMinIncrement).IsZero() {
			return false
		}
	}
	return true
}
