package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/papertrade/ledger/internal/domain"
)

// Validate decides whether a trade can execute against the current
// account state at livePrice. It is the single rule set shared by the
// pre-submit gate endpoint and ExecuteTrade itself; the two must never
// diverge. Rules are checked in a fixed order and the first violation
// wins. A nil return means the trade is executable.
//
// livePrice must be the same price that will be passed to the paired
// ExecuteTrade call, otherwise validation races execution.
func Validate(account *domain.Account, order domain.Order, livePrice decimal.Decimal, policy domain.Policy) error {
	if order.AssetID == "" || !order.AssetType.Valid() {
		return domain.ErrNoAssetSelected
	}
	if !livePrice.IsPositive() {
		return domain.ErrPriceUnavailable
	}
	if !policy.ValidQuantity(order.AssetType, order.Quantity) {
		return domain.ErrInvalidQuantity
	}

	switch order.Side {
	case domain.TradeSideBuy:
		cost := order.Quantity.Mul(livePrice)
		if cost.GreaterThan(account.Balance) {
			return domain.ErrInsufficientFunds
		}
	case domain.TradeSideSell:
		holding, ok := account.Holding(order.AssetType, order.AssetID)
		if !ok {
			return domain.ErrAssetNotHeld
		}
		if order.Quantity.GreaterThan(holding.Quantity) {
			return domain.ErrInsufficientHoldings
		}
	default:
		return domain.ErrInvalidSide
	}

	return nil
}
