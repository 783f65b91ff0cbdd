package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidQuantity(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name      string
		assetType AssetType
		quantity  string
		want      bool
	}{
		{"zero rejected", AssetTypeCrypto, "0", false},
		{"negative rejected", AssetTypeStock, "-1", false},
		{"fractional crypto ok", AssetTypeCrypto, "0.5", true},
		{"min increment ok", AssetTypeCrypto, "0.00000001", true},
		{"below min increment rejected", AssetTypeCrypto, "0.000000001", false},
		{"whole share ok", AssetTypeStock, "3", true},
		{"fractional share rejected", AssetTypeStock, "1.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := decimal.RequireFromString(tt.quantity)
			if got := p.ValidQuantity(tt.assetType, q); got != tt.want {
				t.Errorf("ValidQuantity(%s, %s) = %v, want %v", tt.assetType, tt.quantity, got, tt.want)
			}
		})
	}
}

func TestValidQuantityFractionalShares(t *testing.T) {
	p := DefaultPolicy()
	p.WholeShareStocks = false

	if !p.ValidQuantity(AssetTypeStock, decimal.NewFromFloat(0.25)) {
		t.Error("fractional shares should be allowed when WholeShareStocks is off")
	}
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(25), decimal.NewFromInt(200))
	if !got.Equal(decimal.NewFromFloat(12.5)) {
		t.Errorf("Percent(25, 200) = %s, want 12.5", got)
	}
	if !Percent(decimal.NewFromInt(5), decimal.Zero).IsZero() {
		t.Error("Percent with zero denominator should be zero")
	}
}
