package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/ledger-insights/internal/ledger"
	"github.com/insightdelivered/ledger-insights/internal/normalize"
)

// CSVWriter writes a ledger's delta table to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the delta table to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, res ledger.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, res)
}

// Write writes the delta table in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, res ledger.Result) error {
	writer := csv.NewWriter(out)

	// Write metadata as comments (CSV header rows)
	if w.IncludeHeader {
		writer.Write([]string{"# Ledger", string(res.Kind)})
		writer.Write([]string{"# Series", string(res.Mode)})
		if n := res.SkipCount(); n > 0 {
			writer.Write([]string{"# Skipped Rows", strconv.Itoa(n)})
		}
	}

	header := []string{"Date", "Label", "Amount", "Balance", "Value", "Cumulative", "Difference", "Percent Change"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range res.Records {
		balance := ""
		if rec.Balance.Valid {
			balance = formatAmount(rec.Balance.Decimal)
		}
		pct := strconv.FormatFloat(rec.PercentChange, 'f', 2, 64)
		if rec.PercentUndefined {
			pct = "N/A"
		}
		row := []string{
			normalize.FormatLedgerDate(rec.Date),
			rec.Label,
			formatAmount(rec.Amount),
			balance,
			formatAmount(rec.Value),
			formatAmount(rec.Cumulative),
			formatAmount(rec.Difference),
			pct,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
