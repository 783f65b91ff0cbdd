// Package export renders account statements: transaction history as a
// downloadable XLSX workbook, and optionally a periodically published
// Google Sheet covering every account.
package export

import (
	"context"
	"fmt"

	"github.com/papertrade/ledger/internal/domain"
	"github.com/papertrade/ledger/internal/store"
)

// Row is one statement line: a transaction attributed to its owner.
type Row struct {
	UserID      string
	Transaction domain.Transaction
}

// statementColumns is the shared header for all statement renderings.
var statementColumns = []string{
	"User", "Timestamp", "Type", "Asset Type", "Asset ID",
	"Symbol", "Name", "Quantity", "Price", "Total", "Balance After",
}

func rowValues(r Row) []any {
	t := r.Transaction
	return []any{
		r.UserID,
		t.Timestamp.Format("2006-01-02 15:04:05"),
		string(t.Side),
		string(t.AssetType),
		t.AssetID,
		t.Symbol,
		t.Name,
		t.Quantity.String(),
		t.Price.String(),
		t.Total.String(),
		t.BalanceAfter.String(),
	}
}

// Writer publishes statement rows to an external destination.
type Writer interface {
	Write(ctx context.Context, rows []Row) error
}

// Portfolios loads account snapshots; satisfied by the ledger service.
type Portfolios interface {
	Portfolio(ctx context.Context, userID string) (*domain.Account, error)
}

// Service builds statements from ledger state.
type Service struct {
	portfolios Portfolios
	accounts   store.Store
	writer     Writer // optional
}

// NewService creates an export service. writer may be nil when no
// external destination is configured; Publish then refuses to run.
func NewService(portfolios Portfolios, accounts store.Store, writer Writer) *Service {
	return &Service{
		portfolios: portfolios,
		accounts:   accounts,
		writer:     writer,
	}
}

// Statement renders one user's transaction history as an XLSX
// workbook.
func (s *Service) Statement(ctx context.Context, userID string) ([]byte, error) {
	account, err := s.portfolios.Portfolio(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading portfolio for %s: %w", userID, err)
	}
	return BuildXLSX(account)
}

// Publish writes the statements of all known accounts to the
// configured writer. Implements the report worker's export contract.
func (s *Service) Publish(ctx context.Context) error {
	if s.writer == nil {
		return fmt.Errorf("no statement writer configured")
	}

	userIDs, err := s.accounts.UserIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	var rows []Row
	for _, userID := range userIDs {
		account, err := s.portfolios.Portfolio(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading portfolio for %s: %w", userID, err)
		}
		for _, t := range account.Transactions {
			rows = append(rows, Row{UserID: userID, Transaction: t})
		}
	}

	return s.writer.Write(ctx, rows)
}
