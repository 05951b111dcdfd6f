package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ledgerline/statement-parser/internal/models"
)

// CSVWriter writes a parsed statement to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the statement to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, stmt *models.Statement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, stmt)
}

// Write writes the statement in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, stmt *models.Statement) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	// Write metadata as comment rows ahead of the data
	if w.IncludeHeader {
		if stmt.Period != "" {
			writer.Write([]string{"# Statement Period", stmt.Period})
		}
		writer.Write([]string{"# Transactions", strconv.Itoa(len(stmt.Transactions))})
	}

	header := []string{"Date", "Type", "Description", "Merchant", "Amount", "Balance", "Category", "Period"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range stmt.Transactions {
		balance := ""
		if txn.Balance != nil {
			balance = txn.Balance.StringFixed(2)
		}
		row := []string{
			txn.Date.String(),
			string(txn.Direction),
			txn.Description,
			txn.Merchant,
			txn.Amount.StringFixed(2),
			balance,
			txn.Category,
			txn.Period,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}
