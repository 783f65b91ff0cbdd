package fx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func testConverter() *Converter {
	c := NewConverter("USD")
	c.SetRates(RateTable{
		"EUR": decimal.RequireFromString("0.92"),
		"JPY": decimal.RequireFromString("148.5"),
	})
	return c
}

func TestConvertSameCurrency(t *testing.T) {
	c := NewConverter("USD")
	got, err := c.Convert(decimal.NewFromInt(100), "EUR", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Convert = %s, want 100", got)
	}
}

func TestConvertViaBase(t *testing.T) {
	c := testConverter()

	got, err := c.Convert(decimal.NewFromInt(100), "USD", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(92)) {
		t.Errorf("100 USD = %s EUR, want 92", got)
	}

	got, err = c.Convert(decimal.NewFromInt(92), "EUR", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("92 EUR = %s USD, want 100", got)
	}
}

func TestConvertCrossRate(t *testing.T) {
	c := testConverter()

	got, err := c.Convert(decimal.NewFromInt(92), "EUR", "JPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("14850")) {
		t.Errorf("92 EUR = %s JPY, want 14850", got)
	}
}

func TestConvertRoundTripTolerance(t *testing.T) {
	c := testConverter()
	amount := decimal.RequireFromString("12345.67")

	eur, err := c.Convert(amount, "USD", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := c.Convert(eur, "EUR", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tolerance := decimal.New(1, -10)
	if back.Sub(amount).Abs().GreaterThan(tolerance) {
		t.Errorf("round trip %s -> %s -> %s drifted beyond tolerance", amount, eur, back)
	}
}

func TestConvertUnknownCurrency(t *testing.T) {
	c := testConverter()
	if _, err := c.Convert(decimal.NewFromInt(1), "USD", "CHF"); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("err = %v, want ErrRateUnavailable", err)
	}
	if _, err := c.Convert(decimal.NewFromInt(1), "CHF", "USD"); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("err = %v, want ErrRateUnavailable", err)
	}
}

func TestClientRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("from"); got != "USD" {
			t.Errorf("from = %q, want USD", got)
		}
		w.Write([]byte(`{"base":"USD","date":"2024-01-15","rates":{"EUR":0.92,"GBP":0.79}}`))
	}))
	defer server.Close()

	converter := NewConverter("USD")
	client := NewClient(server.URL, converter)
	if err := client.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	got, err := converter.Convert(decimal.NewFromInt(100), "USD", "GBP")
	if err != nil {
		t.Fatalf("Convert after refresh: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(79)) {
		t.Errorf("100 USD = %s GBP, want 79", got)
	}
}

func TestClientRefreshFailureKeepsOldTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	converter := testConverter()
	client := NewClient(server.URL, converter)
	if err := client.Refresh(context.Background()); err == nil {
		t.Fatal("expected error from failing feed")
	}

	// Previous rates still serve.
	if _, err := converter.Convert(decimal.NewFromInt(1), "USD", "EUR"); err != nil {
		t.Errorf("old table should survive a failed refresh: %v", err)
	}
}
