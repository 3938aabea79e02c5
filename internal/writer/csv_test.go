package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/ledger-insights/internal/ledger"
	"github.com/insightdelivered/ledger-insights/internal/models"
)

func savingsResult(t *testing.T) ledger.Result {
	t.Helper()
	rows := []models.RawRow{
		{"Date": "01-01-2024", "Balance after spend (INR)": "0"},
		{"Date": "02-01-2024", "Balance after spend (INR)": "1,200.5"},
		{"Date": "03-01-2024", "Balance after spend (INR)": "900"},
		{"Date": "bad", "Balance after spend (INR)": "900"},
	}
	a, err := ledger.New(models.LedgerSavings)
	if err != nil {
		t.Fatal(err)
	}
	return ledger.Transform(a, rows)
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, savingsResult(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "# Ledger,savings") {
		t.Error("expected ledger metadata header")
	}
	if !strings.Contains(output, "# Skipped Rows,1") {
		t.Error("expected skipped row count")
	}
	if !strings.Contains(output, "Date,Label,Amount,Balance,Value,Cumulative,Difference,Percent Change") {
		t.Error("expected column headers")
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 3 metadata lines + 1 header + 3 records = 7
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d", len(lines))
	}

	tests := []struct {
		line     int
		expected string
	}{
		{4, "01-01-2024,,0.00,0.00,0.00,0.00,0.00,0.00"},
		{5, "02-01-2024,,0.00,1200.50,1200.50,0.00,1200.50,N/A"},
		{6, "03-01-2024,,0.00,900.00,900.00,0.00,-300.50,-25.03"},
	}
	for _, tt := range tests {
		if lines[tt.line] != tt.expected {
			t.Errorf("line %d: got %q, want %q", tt.line, lines[tt.line], tt.expected)
		}
	}
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	if err := w.Write(&buf, ledger.Result{Kind: models.LedgerMain}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "# Ledger") {
		t.Error("should not have ledger metadata when header=false")
	}
	if strings.TrimSpace(output) != "Date,Label,Amount,Balance,Value,Cumulative,Difference,Percent Change" {
		t.Errorf("expected only column headers, got %q", output)
	}
}

func TestCSVWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savings.csv")
	w := &CSVWriter{}
	if err := w.WriteToFile(path, savingsResult(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "\n"); got != 4 {
		t.Errorf("expected 4 lines, got %d", got)
	}

	if err := w.WriteToFile(filepath.Join(t.TempDir(), "missing", "x.csv"), savingsResult(t)); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"25.99", "25.99"},
		{"1234.5", "1234.50"},
		{"0", "0.00"},
		{"-2500", "-2500.00"},
		{"0.005", "0.01"},
	}

	for _, tt := range tests {
		got := formatAmount(decimal.RequireFromString(tt.input))
		if got != tt.expected {
			t.Errorf("formatAmount(%s): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}
