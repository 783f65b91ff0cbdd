// Package ledger is the sole authority over account state. Every
// mutation -- trade execution or reset -- is serialized per account,
// validated against the shared rule set, applied to a copy and then
// persisted atomically, so a rejected trade leaves no trace.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papertrade/ledger/internal/domain"
	"github.com/papertrade/ledger/internal/store"
)

// Service owns balance, holdings and transaction history for all
// accounts. Accounts are created on first access with the configured
// initial balance.
type Service struct {
	store          store.Store
	initialBalance decimal.Decimal
	policy         domain.Policy

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

// NewService creates a ledger service over the given store.
func NewService(st store.Store, initialBalance decimal.Decimal, policy domain.Policy) *Service {
	return &Service{
		store:          st,
		initialBalance: initialBalance,
		policy:         policy,
		locks:          make(map[string]*sync.Mutex),
		now:            time.Now,
	}
}

// InitialBalance returns the starting balance given to new and reset
// accounts.
func (s *Service) InitialBalance() decimal.Decimal { return s.initialBalance }

// Policy returns the quantity granularity policy in force.
func (s *Service) Policy() domain.Policy { return s.policy }

// lockFor returns the mutex serializing mutations for one user. The
// map holds one entry per user ever seen and is never evicted; each
// entry is a bare mutex, so it stays small even across many users.
func (s *Service) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// loadOrCreate returns the stored account, creating and persisting a
// fresh one on first access. Callers must hold the user lock.
func (s *Service) loadOrCreate(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.store.Load(ctx, userID)
	if errors.Is(err, store.ErrAccountNotFound) {
		account = domain.NewAccount(userID, s.initialBalance)
		if err := s.store.Save(ctx, account); err != nil {
			return nil, fmt.Errorf("creating account %s: %w", userID, err)
		}
		return account, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", userID, err)
	}
	return account, nil
}

// Portfolio returns a snapshot of the user's account.
func (s *Service) Portfolio(ctx context.Context, userID string) (*domain.Account, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.loadOrCreate(ctx, userID)
}

// Check runs the shared trade validation against current account
// state without mutating anything. It returns the same error a paired
// ExecuteTrade call at livePrice would return.
func (s *Service) Check(ctx context.Context, userID string, order domain.Order, livePrice decimal.Decimal) error {
	account, err := s.Portfolio(ctx, userID)
	if err != nil {
		return err
	}
	return Validate(account, order, livePrice, s.policy)
}

// ExecuteTrade validates the order against the account at order.Price
// and, on acceptance, applies the balance and holding mutation and
// appends the transaction record as one atomic step. Any rejection
// leaves the account completely unchanged.
func (s *Service) ExecuteTrade(ctx context.Context, userID string, order domain.Order) (*domain.Account, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	account, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := Validate(account, order, order.Price, s.policy); err != nil {
		return nil, err
	}

	// Mutate a copy and persist it in one store transaction; the
	// previous state stays intact if anything fails along the way.
	updated := account.Clone()
	switch order.Side {
	case domain.TradeSideBuy:
		applyBuy(updated, order)
	case domain.TradeSideSell:
		applySell(updated, order)
	}

	updated.Transactions = append(updated.Transactions, domain.Transaction{
		ID:           uuid.NewString(),
		Timestamp:    s.now().UTC(),
		Side:         order.Side,
		AssetType:    order.AssetType,
		AssetID:      order.AssetID,
		Symbol:       order.Symbol,
		Name:         order.Name,
		Quantity:     order.Quantity,
		Price:        order.Price,
		Total:        order.Quantity.Mul(order.Price),
		BalanceAfter: updated.Balance,
	})

	if err := s.store.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("persisting trade for %s: %w", userID, err)
	}
	return updated, nil
}

// Reset recreates the account from scratch: initial balance, no
// holdings, no transactions. Unconditional.
func (s *Service) Reset(ctx context.Context, userID string) (*domain.Account, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	account := domain.NewAccount(userID, s.initialBalance)
	if err := s.store.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("resetting account %s: %w", userID, err)
	}
	return account, nil
}

// applyBuy deducts cost and folds the purchase into the holding using
// weighted average cost. Validate has already guaranteed affordability.
func applyBuy(account *domain.Account, order domain.Order) {
	cost := order.Quantity.Mul(order.Price)
	account.Balance = account.Balance.Sub(cost)

	for i, h := range account.Holdings {
		if h.AssetType == order.AssetType && h.AssetID == order.AssetID {
			newQuantity := h.Quantity.Add(order.Quantity)
			newTotalCost := h.TotalCost.Add(cost)
			account.Holdings[i].Quantity = newQuantity
			account.Holdings[i].TotalCost = newTotalCost
			account.Holdings[i].AvgBuyPrice = newTotalCost.Div(newQuantity)
			account.Holdings[i].Symbol = order.Symbol
			account.Holdings[i].Name = order.Name
			return
		}
	}

	account.Holdings = append(account.Holdings, domain.Holding{
		AssetType:   order.AssetType,
		AssetID:     order.AssetID,
		Symbol:      order.Symbol,
		Name:        order.Name,
		Quantity:    order.Quantity,
		AvgBuyPrice: order.Price,
		TotalCost:   cost,
	})
}

// applySell credits proceeds and reduces the cost basis by the average
// cost of the sold units, not by the proceeds; AvgBuyPrice is
// unchanged by a sell. A position sold down to zero is removed.
// Validate has already guaranteed the holding exists and covers the
// quantity.
func applySell(account *domain.Account, order domain.Order) {
	proceeds := order.Quantity.Mul(order.Price)
	account.Balance = account.Balance.Add(proceeds)

	for i, h := range account.Holdings {
		if h.AssetType != order.AssetType || h.AssetID != order.AssetID {
			continue
		}
		remaining := h.Quantity.Sub(order.Quantity)
		if remaining.IsZero() {
			account.Holdings = append(account.Holdings[:i], account.Holdings[i+1:]...)
			return
		}
		account.Holdings[i].Quantity = remaining
		account.Holdings[i].TotalCost = h.TotalCost.Sub(order.Quantity.Mul(h.AvgBuyPrice))
		return
	}
}
