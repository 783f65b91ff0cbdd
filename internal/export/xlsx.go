package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/papertrade/ledger/internal/domain"
)

// BuildXLSX renders an account as a two-sheet workbook: the full
// transaction statement plus current holdings.
func BuildXLSX(account *domain.Account) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const statementSheet = "Statement"
	f.SetSheetName("Sheet1", statementSheet)

	if err := writeGrid(f, statementSheet, statementGrid(account)); err != nil {
		return nil, err
	}

	const holdingsSheet = "Holdings"
	if _, err := f.NewSheet(holdingsSheet); err != nil {
		return nil, fmt.Errorf("creating holdings sheet: %w", err)
	}
	if err := writeGrid(f, holdingsSheet, holdingsGrid(account)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func statementGrid(account *domain.Account) [][]any {
	grid := make([][]any, 0, len(account.Transactions)+1)

	header := make([]any, len(statementColumns))
	for i, col := range statementColumns {
		header[i] = col
	}
	grid = append(grid, header)

	for _, t := range account.Transactions {
		grid = append(grid, rowValues(Row{UserID: account.UserID, Transaction: t}))
	}
	return grid
}

func holdingsGrid(account *domain.Account) [][]any {
	grid := [][]any{
		{"Asset Type", "Asset ID", "Symbol", "Name", "Quantity", "Avg Buy Price", "Total Cost"},
	}
	for _, h := range account.Holdings {
		grid = append(grid, []any{
			string(h.AssetType), h.AssetID, h.Symbol, h.Name,
			h.Quantity.String(), h.AvgBuyPrice.String(), h.TotalCost.String(),
		})
	}
	return grid
}

func writeGrid(f *excelize.File, sheet string, grid [][]any) error {
	for r, row := range grid {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("addressing cell %d/%d: %w", c+1, r+1, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("writing cell %s: %w", cell, err)
			}
		}
	}
	return nil
}
