package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/papertrade/ledger/internal/domain"
)

func TestMemoryLoadNotFound(t *testing.T) {
	m := NewMemory()
	_, err := m.Load(context.Background(), "missing")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestMemorySaveLoadRoundTrip(t *testing.T) {
	m := NewMemory()
	account := domain.NewAccount("u1", decimal.NewFromInt(1000000))
	account.Holdings = append(account.Holdings, domain.Holding{
		AssetType: domain.AssetTypeCrypto,
		AssetID:   "bitcoin",
		Symbol:    "BTC",
		Quantity:  decimal.NewFromFloat(0.5),
	})

	if err := m.Save(context.Background(), account); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := m.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Balance.Equal(account.Balance) {
		t.Errorf("balance = %s, want %s", loaded.Balance, account.Balance)
	}
	if len(loaded.Holdings) != 1 || loaded.Holdings[0].AssetID != "bitcoin" {
		t.Errorf("holdings = %+v, want one bitcoin holding", loaded.Holdings)
	}
}

func TestMemorySnapshotIsolation(t *testing.T) {
	m := NewMemory()
	account := domain.NewAccount("u1", decimal.NewFromInt(100))
	if err := m.Save(context.Background(), account); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the saved original or a loaded copy must not leak into
	// the stored state.
	account.Balance = decimal.Zero
	loaded, _ := m.Load(context.Background(), "u1")
	loaded.Balance = decimal.NewFromInt(42)

	again, _ := m.Load(context.Background(), "u1")
	if !again.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("stored balance = %s, want 100", again.Balance)
	}
}

func TestMemoryUserIDsSorted(t *testing.T) {
	m := NewMemory()
	for _, id := range []string{"charlie", "alice", "bob"} {
		if err := m.Save(context.Background(), domain.NewAccount(id, decimal.Zero)); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
	}

	ids, err := m.UserIDs(context.Background())
	if err != nil {
		t.Fatalf("UserIDs: %v", err)
	}
	want := []string{"alice", "bob", "charlie"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}
