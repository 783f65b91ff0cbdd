package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/papertrade/ledger/internal/domain"
)

// Postgres implements Store with PostgreSQL. Each Save runs in one
// transaction that rewrites the account row, its holdings and its
// transaction history, so a partially applied trade is never visible
// to concurrent readers.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL-backed account store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Load(ctx context.Context, userID string) (*domain.Account, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	account := &domain.Account{UserID: userID, Holdings: []domain.Holding{}, Transactions: []domain.Transaction{}}

	err = tx.QueryRow(ctx,
		`SELECT balance FROM accounts WHERE user_id = $1`,
		userID).Scan(&account.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", userID, err)
	}

	rows, err := tx.Query(ctx,
		`SELECT asset_type, asset_id, symbol, name, quantity, avg_buy_price, total_cost
		 FROM holdings WHERE user_id = $1 ORDER BY asset_type, asset_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("loading holdings for %s: %w", userID, err)
	}
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.AssetType, &h.AssetID, &h.Symbol, &h.Name,
			&h.Quantity, &h.AvgBuyPrice, &h.TotalCost); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning holding: %w", err)
		}
		account.Holdings = append(account.Holdings, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating holdings: %w", err)
	}

	rows, err = tx.Query(ctx,
		`SELECT id, ts, side, asset_type, asset_id, symbol, name, quantity, price, total, balance_after
		 FROM transactions WHERE user_id = $1 ORDER BY ts, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("loading transactions for %s: %w", userID, err)
	}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Side, &t.AssetType, &t.AssetID,
			&t.Symbol, &t.Name, &t.Quantity, &t.Price, &t.Total, &t.BalanceAfter); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		account.Transactions = append(account.Transactions, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing read transaction: %w", err)
	}
	return account, nil
}

func (s *Postgres) Save(ctx context.Context, account *domain.Account) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO accounts (user_id, balance, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET balance = $2, updated_at = NOW()`,
		account.UserID, account.Balance)
	if err != nil {
		return fmt.Errorf("saving account %s: %w", account.UserID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM holdings WHERE user_id = $1`, account.UserID); err != nil {
		return fmt.Errorf("clearing holdings for %s: %w", account.UserID, err)
	}
	for _, h := range account.Holdings {
		_, err := tx.Exec(ctx,
			`INSERT INTO holdings (user_id, asset_type, asset_id, symbol, name, quantity, avg_buy_price, total_cost)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			account.UserID, h.AssetType, h.AssetID, h.Symbol, h.Name, h.Quantity, h.AvgBuyPrice, h.TotalCost)
		if err != nil {
			return fmt.Errorf("saving holding %s/%s: %w", h.AssetType, h.AssetID, err)
		}
	}

	// Transactions are append-only between resets, but a reset clears
	// the history, so the whole set is reconciled rather than only
	// appended.
	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, account.UserID); err != nil {
		return fmt.Errorf("clearing transactions for %s: %w", account.UserID, err)
	}
	for _, t := range account.Transactions {
		_, err := tx.Exec(ctx,
			`INSERT INTO transactions (id, user_id, ts, side, asset_type, asset_id, symbol, name, quantity, price, total, balance_after)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			t.ID, account.UserID, t.Timestamp, t.Side, t.AssetType, t.AssetID,
			t.Symbol, t.Name, t.Quantity, t.Price, t.Total, t.BalanceAfter)
		if err != nil {
			return fmt.Errorf("saving transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing account %s: %w", account.UserID, err)
	}
	return nil
}

func (s *Postgres) UserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_id FROM accounts ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
