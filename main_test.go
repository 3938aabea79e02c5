package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/insightdelivered/ledger-insights/internal/analytics"
	"github.com/insightdelivered/ledger-insights/internal/config"
	"github.com/insightdelivered/ledger-insights/internal/dashboard"
	"github.com/insightdelivered/ledger-insights/internal/models"
)

type memLedgers map[models.LedgerKind][]models.RawRow

func (m memLedgers) Load(ctx context.Context) (map[models.LedgerKind][]models.RawRow, error) {
	return m, nil
}

type memBudget config.Budget

func (m memBudget) Budget(ctx context.Context) (config.Budget, error) {
	return config.Budget(m), nil
}

func testLedgers() memLedgers {
	return memLedgers{
		models.LedgerMain: {
			{"Date": "01-01-2024", "Type": "Expense", "Category": "Food", "Payment method": "UPI", "Amount (INR)": "100", "Balance after spend (INR)": "900"},
			{"Date": "02-01-2024", "Type": "Lend", "Category": "Loan Given", "Payment method": "UPI", "Amount (INR)": "300", "Balance after spend (INR)": "600", "Loan ID": "x1"},
			{"Date": "xx-01-2024", "Type": "Expense", "Category": "Food", "Payment method": "UPI", "Amount (INR)": "1", "Balance after spend (INR)": "599"},
		},
		models.LedgerSavings: {
			{"Date": "01-01-2024", "Balance after spend (INR)": "1000"},
			{"Date": "02-01-2024", "Balance after spend (INR)": "1500"},
		},
	}
}

func TestPrintReport(t *testing.T) {
	r := dashboard.Build(dashboard.Input{
		Ledgers: testLedgers(),
		Budget:  config.Budget{dashboard.MetricSavingsBalance: 1000},
		Today:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	})

	var buf bytes.Buffer
	printReport(&buf, r)
	output := buf.String()

	for _, want := range []string{
		"Ledger report for 10 Jan 2024 (month)",
		"Main",
		"Savings",
		"Lending:",
		"Spend by type:",
		"Budget:",
		"savings.balance",
		"reached",
		"1 row(s) skipped:",
		"main line 4:",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in report:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Pocket money:") {
		t.Error("pocket money section should be omitted without a spend ledger")
	}
}

func TestRun_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savings.csv")
	today := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	err := run(context.Background(), testLedgers(), memBudget{}, today, analytics.PeriodMonth, models.LedgerSavings, path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[2], ",50.00") {
		t.Errorf("expected 50%% change on the last line, got %q", lines[2])
	}
}

func TestRun_ExportNeedsKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	err := run(context.Background(), testLedgers(), memBudget{}, time.Now(), analytics.PeriodMonth, "", path, true)
	if err == nil {
		t.Error("expected error when -kind is missing")
	}
}

func TestServiceOptions_PinsToday(t *testing.T) {
	opts, err := serviceOptions("10-01-2024", analytics.PeriodWeek)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	svc := dashboard.NewService(testLedgers(), memBudget{}, nil, opts)
	r, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !r.Today.Equal(want) {
		t.Errorf("today: got %v, want %v", r.Today, want)
	}
	if r.Period != analytics.PeriodWeek {
		t.Errorf("period: got %q, want %q", r.Period, analytics.PeriodWeek)
	}
}

func TestServiceOptions(t *testing.T) {
	opts, err := serviceOptions("", analytics.PeriodMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Now == nil || time.Since(opts.Now()) > time.Minute {
		t.Error("blank -today should follow the clock")
	}
	if _, err := serviceOptions("2024-01-10", analytics.PeriodMonth); err == nil {
		t.Error("expected error for a malformed date")
	}
}
