package domain

import "errors"

// Trade rejection reasons. All of them reject exactly one trade and
// leave the account untouched; none is fatal to the ledger.
var (
	ErrNoAssetSelected      = errors.New("no asset selected")
	ErrInvalidSide          = errors.New("invalid trade side")
	ErrPriceUnavailable     = errors.New("price unavailable")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrAssetNotHeld         = errors.New("asset not held")
)

// ReasonCode maps a trade rejection to its stable wire code, or ""
// for errors outside the trade taxonomy.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrNoAssetSelected):
		return "NoAssetSelected"
	case errors.Is(err, ErrInvalidSide):
		return "InvalidSide"
	case errors.Is(err, ErrPriceUnavailable):
		return "PriceUnavailable"
	case errors.Is(err, ErrInvalidQuantity):
		return "InvalidQuantity"
	case errors.Is(err, ErrInsufficientFunds):
		return "InsufficientFunds"
	case errors.Is(err, ErrInsufficientHoldings):
		return "InsufficientHoldings"
	case errors.Is(err, ErrAssetNotHeld):
		return "AssetNotHeld"
	}
	return ""
}
