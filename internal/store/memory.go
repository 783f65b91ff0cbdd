package store

import (
	"context"
	"sort"
	"sync"

	"github.com/papertrade/ledger/internal/domain"
)

// Memory is an in-process Store used when no database is configured,
// and by tests. Load and Save exchange deep copies, so callers can
// never observe or mutate live state through a returned account.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]*domain.Account)}
}

func (m *Memory) Load(_ context.Context, userID string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (m *Memory) Save(_ context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accounts[account.UserID] = account.Clone()
	return nil
}

func (m *Memory) UserIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
