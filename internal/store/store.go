// Package store provides persistence for ledger accounts. The ledger
// treats a Store as a full-snapshot document store: Save atomically
// replaces the persisted balance, holdings and transaction history of
// one account.
package store

import (
	"context"
	"errors"

	"github.com/papertrade/ledger/internal/domain"
)

// ErrAccountNotFound is returned by Load for unknown users.
var ErrAccountNotFound = errors.New("account not found")

// Store defines persistent storage for accounts.
type Store interface {
	// Load returns the account for userID, or ErrAccountNotFound.
	Load(ctx context.Context, userID string) (*domain.Account, error)
	// Save atomically persists the full account state.
	Save(ctx context.Context, account *domain.Account) error
	// UserIDs lists all persisted account owners.
	UserIDs(ctx context.Context) ([]string, error)
}
