package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/papertrade/ledger/internal/domain"
	"github.com/papertrade/ledger/internal/store"
)

func testAccount(userID string) *domain.Account {
	account := domain.NewAccount(userID, decimal.NewFromInt(999800))
	account.Holdings = []domain.Holding{{
		AssetType:   domain.AssetTypeCrypto,
		AssetID:     "bitcoin",
		Symbol:      "BTC",
		Name:        "Bitcoin",
		Quantity:    decimal.NewFromInt(2),
		AvgBuyPrice: decimal.NewFromInt(100),
		TotalCost:   decimal.NewFromInt(200),
	}}
	account.Transactions = []domain.Transaction{{
		ID:           "t1",
		Timestamp:    time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		Side:         domain.TradeSideBuy,
		AssetType:    domain.AssetTypeCrypto,
		AssetID:      "bitcoin",
		Symbol:       "BTC",
		Name:         "Bitcoin",
		Quantity:     decimal.NewFromInt(2),
		Price:        decimal.NewFromInt(100),
		Total:        decimal.NewFromInt(200),
		BalanceAfter: decimal.NewFromInt(999800),
	}}
	return account
}

func TestBuildXLSX(t *testing.T) {
	data, err := BuildXLSX(testAccount("u1"))
	if err != nil {
		t.Fatalf("BuildXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	symbol, err := f.GetCellValue("Statement", "F2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if symbol != "BTC" {
		t.Errorf("Statement!F2 = %q, want BTC", symbol)
	}

	qty, err := f.GetCellValue("Holdings", "E2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if qty != "2" {
		t.Errorf("Holdings!E2 = %q, want 2", qty)
	}
}

type fakePortfolios struct {
	accounts map[string]*domain.Account
}

func (f *fakePortfolios) Portfolio(_ context.Context, userID string) (*domain.Account, error) {
	return f.accounts[userID], nil
}

type captureWriter struct {
	rows []Row
}

func (w *captureWriter) Write(_ context.Context, rows []Row) error {
	w.rows = rows
	return nil
}

func TestPublishFlattensAllAccounts(t *testing.T) {
	accounts := store.NewMemory()
	portfolios := &fakePortfolios{accounts: map[string]*domain.Account{
		"alice": testAccount("alice"),
		"bob":   testAccount("bob"),
	}}
	for _, account := range portfolios.accounts {
		if err := accounts.Save(context.Background(), account); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	writer := &captureWriter{}
	svc := NewService(portfolios, accounts, writer)
	if err := svc.Publish(context.Background()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(writer.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(writer.rows))
	}
	// Store lists users sorted, so alice comes first.
	if writer.rows[0].UserID != "alice" || writer.rows[1].UserID != "bob" {
		t.Errorf("row owners = %s, %s, want alice, bob", writer.rows[0].UserID, writer.rows[1].UserID)
	}
}

func TestPublishWithoutWriterFails(t *testing.T) {
	svc := NewService(&fakePortfolios{}, store.NewMemory(), nil)
	if err := svc.Publish(context.Background()); err == nil {
		t.Fatal("expected error when no writer is configured")
	}
}
