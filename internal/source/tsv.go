// Package source reads raw ledger sheets from disk. Ledgers are exported
// as tab-delimited text, or as PDFs printed from the same sheets.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

// Table is a ledger sheet: its header row and the data rows keyed by it.
type Table struct {
	Headers []string
	Rows    []models.RawRow
}

// ReadTSV parses a tab-delimited ledger. The first non-empty line is the
// header row. Short rows get "" for their missing cells, extra cells are
// dropped, every cell is trimmed, and rows with no content are skipped.
func ReadTSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var t Table
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read ledger line: %w", err)
		}

		if t.Headers == nil {
			if isBlank(record) {
				continue
			}
			t.Headers = make([]string, len(record))
			for i, h := range record {
				t.Headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			}
			continue
		}

		if isBlank(record) {
			continue
		}
		row := make(models.RawRow, len(t.Headers))
		for i, h := range t.Headers {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	if t.Headers == nil {
		return Table{}, fmt.Errorf("ledger has no header row")
	}
	return t, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
