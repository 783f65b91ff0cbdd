package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/papertrade/ledger/internal/domain"
)

func testAccount() *domain.Account {
	account := domain.NewAccount("u1", decimal.NewFromInt(1000))
	account.Holdings = []domain.Holding{{
		AssetType:   domain.AssetTypeCrypto,
		AssetID:     "bitcoin",
		Symbol:      "BTC",
		Quantity:    decimal.NewFromInt(2),
		AvgBuyPrice: decimal.NewFromInt(100),
		TotalCost:   decimal.NewFromInt(200),
	}}
	return account
}

func TestValidateRuleOrder(t *testing.T) {
	policy := domain.DefaultPolicy()

	tests := []struct {
		name  string
		order domain.Order
		price string
		want  error
	}{
		{
			name:  "missing asset",
			order: domain.Order{Side: domain.TradeSideBuy, AssetType: domain.AssetTypeCrypto, Quantity: decimal.NewFromInt(1)},
			price: "10",
			want:  domain.ErrNoAssetSelected,
		},
		{
			name:  "invalid asset type",
			order: domain.Order{Side: domain.TradeSideBuy, AssetType: "bond", AssetID: "x", Quantity: decimal.NewFromInt(1)},
			price: "10",
			want:  domain.ErrNoAssetSelected,
		},
		{
			name:  "zero price",
			order: domain.Order{Side: domain.TradeSideBuy, AssetType: domain.AssetTypeCrypto, AssetID: "bitcoin", Quantity: decimal.NewFromInt(1)},
			price: "0",
			want:  domain.ErrPriceUnavailable,
		},
		{
			name:  "price checked before quantity",
			order: domain.Order{Side: domain.TradeSideBuy, AssetType: domain.AssetTypeCrypto, AssetID: "bitcoin", Quantity: decimal.Zero},
			price: "-1",
			want:  domain.ErrPriceUnavailable,
		},
		{
			name:  "zero quantity",
			order: domain.Order{Side: domain.TradeSideBuy, AssetType: domain.AssetTypeCrypto, AssetID: "bitcoin", Quantity: decimal.Zero},
			price: "10",
			want:  domain.ErrInvalidQuantity,
		},
		{
			name:  "fractional stock quantity",
			order: domain.Order{Side: domain.TradeSideBuy, AssetType: domain.AssetTypeStock, AssetID: "AAPL", Quantity: decimal.NewFromFloat(1.5)},
			price: "10",
			want:  domain.ErrInvalidQuantity,
		},
		{
			name:  "buy beyond balance",
			order: domain.Order{Side: domain.TradeSideBuy, AssetType: domain.AssetTypeCrypto, AssetID: "bitcoin", Quantity: decimal.NewFromInt(2)},
			price: "501",
			want:  domain.ErrInsufficientFunds,
		},
		{
			name:  "buy exactly balance ok",
			order: domain.Order{Side: domain.TradeSideBuy, AssetType: domain.AssetTypeCrypto, AssetID: "bitcoin", Quantity: decimal.NewFromInt(2)},
			price: "500",
			want:  nil,
		},
		{
			name:  "sell unheld asset",
			order: domain.Order{Side: domain.TradeSideSell, AssetType: domain.AssetTypeCrypto, AssetID: "ethereum", Quantity: decimal.NewFromInt(1)},
			price: "10",
			want:  domain.ErrAssetNotHeld,
		},
		{
			name:  "sell beyond held quantity",
			order: domain.Order{Side: domain.TradeSideSell, AssetType: domain.AssetTypeCrypto, AssetID: "bitcoin", Quantity: decimal.NewFromInt(3)},
			price: "10",
			want:  domain.ErrInsufficientHoldings,
		},
		{
			name:  "unknown side",
			order: domain.Order{Side: "hold", AssetType: domain.AssetTypeCrypto, AssetID: "bitcoin", Quantity: decimal.NewFromInt(1)},
			price: "10",
			want:  domain.ErrInvalidSide,
		},
		{
			name:  "sell full position ok",
			order: domain.Order{Side: domain.TradeSideSell, AssetType: domain.AssetTypeCrypto, AssetID: "bitcoin", Quantity: decimal.NewFromInt(2)},
			price: "10",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(testAccount(), tt.order, decimal.RequireFromString(tt.price), policy)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateSellHoldingDistinctByType(t *testing.T) {
	// A stock with the same id as a held crypto asset is still unheld.
	order := domain.Order{
		Side:      domain.TradeSideSell,
		AssetType: domain.AssetTypeStock,
		AssetID:   "bitcoin",
		Quantity:  decimal.NewFromInt(1),
	}
	err := Validate(testAccount(), order, decimal.NewFromInt(10), domain.DefaultPolicy())
	if !errors.Is(err, domain.ErrAssetNotHeld) {
		t.Errorf("Validate = %v, want ErrAssetNotHeld", err)
	}
}
