package ledger

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/ledger-insights/internal/models"
	"github.com/insightdelivered/ledger-insights/internal/normalize"
)

func savingsRow(date, balance string) models.RawRow {
	return models.RawRow{"Date": date, "Balance after spend (INR)": balance}
}

func mainRow(date, typ, category, amount, balance string) models.RawRow {
	return models.RawRow{
		"Date":                      date,
		"Type":                      typ,
		"Category":                  category,
		"Payment method":            "UPI",
		"Description":               "test",
		"Amount (INR)":              amount,
		"Balance after spend (INR)": balance,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTransform_BalanceDeltas(t *testing.T) {
	rows := []models.RawRow{
		savingsRow("03-01-2024", "90"),
		savingsRow("01-01-2024", "100"),
		savingsRow("02-01-2024", "120"),
	}

	res := Transform(&SavingsAdapter{}, rows)
	if res.SkipCount() != 0 {
		t.Fatalf("skipped: got %d, want 0", res.SkipCount())
	}
	if len(res.Records) != 3 {
		t.Fatalf("records: got %d, want 3", len(res.Records))
	}

	tests := []struct {
		value string
		diff  string
		pct   float64
	}{
		{"100", "0", 0},
		{"120", "20", 20},
		{"90", "-30", -25},
	}
	for i, tt := range tests {
		rec := res.Records[i]
		if !rec.Value.Equal(dec(tt.value)) {
			t.Errorf("records[%d].Value: got %s, want %s", i, rec.Value, tt.value)
		}
		if !rec.Difference.Equal(dec(tt.diff)) {
			t.Errorf("records[%d].Difference: got %s, want %s", i, rec.Difference, tt.diff)
		}
		if rec.PercentChange != tt.pct {
			t.Errorf("records[%d].PercentChange: got %f, want %f", i, rec.PercentChange, tt.pct)
		}
		if rec.PercentUndefined {
			t.Errorf("records[%d].PercentUndefined: got true, want false", i)
		}
	}

	first := res.Records[0].Date
	if !first.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first date: got %v, want 2024-01-01", first)
	}
}

func TestTransform_SkipsUnparseableRows(t *testing.T) {
	rows := []models.RawRow{
		mainRow("01-01-2024", "Expense", "Food", "100", "1,000"),
		mainRow("02-01-2024", "Expense", "Food", "abc", "900"),
		mainRow("31-02-2024", "Expense", "Food", "50", "850"),
		mainRow("04-01-2024", "Expense", "Food", "50", "800"),
	}

	res := Transform(&MainAdapter{}, rows)
	if res.SkipCount() != 2 {
		t.Fatalf("skipped: got %d, want 2", res.SkipCount())
	}
	if len(res.Records) != 2 {
		t.Fatalf("records: got %d, want 2", len(res.Records))
	}

	if res.Skipped[0].Row != 1 || !errors.Is(res.Skipped[0].Err, normalize.ErrInvalidAmount) {
		t.Errorf("skipped[0]: got row %d err %v, want row 1 amount error", res.Skipped[0].Row, res.Skipped[0].Err)
	}
	if res.Skipped[1].Row != 2 || !errors.Is(res.Skipped[1].Err, normalize.ErrInvalidDate) {
		t.Errorf("skipped[1]: got row %d err %v, want row 2 date error", res.Skipped[1].Row, res.Skipped[1].Err)
	}
	if got := res.Skipped[1].Line(); got != 4 {
		t.Errorf("skipped[1].Line: got %d, want 4", got)
	}
	if !res.Records[1].Difference.Equal(dec("-200")) {
		t.Errorf("difference: got %s, want -200", res.Records[1].Difference)
	}
}

func TestTransform_OnlyBadRow(t *testing.T) {
	res := Transform(&MainAdapter{}, []models.RawRow{mainRow("01-01-2024", "Expense", "Food", "abc", "10")})
	if res.SkipCount() != 1 {
		t.Errorf("skipped: got %d, want 1", res.SkipCount())
	}
	if len(res.Records) != 0 {
		t.Errorf("records: got %d, want 0", len(res.Records))
	}
}

func TestTransform_StableSameDay(t *testing.T) {
	rows := []models.RawRow{
		savingsRow("02-01-2024", "300"),
		savingsRow("01-01-2024", "100"),
		savingsRow("01-01-2024", "150"),
		savingsRow("01-01-2024", "120"),
	}

	res := Transform(&SavingsAdapter{}, rows)
	want := []string{"100", "150", "120", "300"}
	for i, w := range want {
		if !res.Records[i].Value.Equal(dec(w)) {
			t.Errorf("records[%d].Value: got %s, want %s", i, res.Records[i].Value, w)
		}
	}
	wantRows := []int{1, 2, 3, 0}
	for i, w := range wantRows {
		if res.Observations[i].Row != w {
			t.Errorf("observations[%d].Row: got %d, want %d", i, res.Observations[i].Row, w)
		}
	}
}

func TestTransform_ZeroPreviousValue(t *testing.T) {
	rows := []models.RawRow{
		savingsRow("01-01-2024", "0"),
		savingsRow("02-01-2024", "500"),
	}

	res := Transform(&SavingsAdapter{}, rows)
	rec := res.Records[1]
	if rec.PercentChange != 0 {
		t.Errorf("PercentChange: got %f, want 0", rec.PercentChange)
	}
	if !rec.PercentUndefined {
		t.Error("PercentUndefined: got false, want true")
	}
	if !rec.Difference.Equal(dec("500")) {
		t.Errorf("Difference: got %s, want 500", rec.Difference)
	}
}

func TestTransform_TelescopingSum(t *testing.T) {
	rows := []models.RawRow{
		savingsRow("05-01-2024", "1,250.75"),
		savingsRow("01-01-2024", "1,000"),
		savingsRow("03-01-2024", "980.10"),
		savingsRow("04-01-2024", "2,000"),
		savingsRow("02-01-2024", "0"),
	}

	res := Transform(&SavingsAdapter{}, rows)
	sum := decimal.Zero
	for _, rec := range res.Records[1:] {
		sum = sum.Add(rec.Difference)
	}
	want := res.Records[len(res.Records)-1].Value.Sub(res.Records[0].Value)
	if !sum.Equal(want) {
		t.Errorf("sum of differences: got %s, want %s", sum, want)
	}
}

func TestTransform_FlowCumulative(t *testing.T) {
	rows := []models.RawRow{
		{"Date": "01-02-2024", "Fund Name": "Index Fund", "Amount": "1,000", "NAV (INR)": "50"},
		{"Date": "01-01-2024", "Fund Name": "Index Fund", "Amount": "500", "Units Purchased": "10.5", "Growth": "4.2%"},
		{"Date": "01-03-2024", "Fund Name": "Small Cap", "Amount": "1,500"},
	}

	res := Transform(&SIPAdapter{}, rows)
	if res.Mode != models.SeriesFlow {
		t.Fatalf("mode: got %s, want flow", res.Mode)
	}

	tests := []struct {
		amount, cumulative, diff string
		pct                      float64
	}{
		{"500", "500", "0", 0},
		{"1000", "1500", "1000", 200},
		{"1500", "3000", "1500", 100},
	}
	for i, tt := range tests {
		rec := res.Records[i]
		if !rec.Amount.Equal(dec(tt.amount)) {
			t.Errorf("records[%d].Amount: got %s, want %s", i, rec.Amount, tt.amount)
		}
		if !rec.Cumulative.Equal(dec(tt.cumulative)) || !rec.Value.Equal(dec(tt.cumulative)) {
			t.Errorf("records[%d].Cumulative: got %s (value %s), want %s", i, rec.Cumulative, rec.Value, tt.cumulative)
		}
		if !rec.Difference.Equal(dec(tt.diff)) {
			t.Errorf("records[%d].Difference: got %s, want %s", i, rec.Difference, tt.diff)
		}
		if rec.PercentChange != tt.pct {
			t.Errorf("records[%d].PercentChange: got %f, want %f", i, rec.PercentChange, tt.pct)
		}
	}

	if got := res.Observations[0].Growth; !got.Equal(dec("4.2")) {
		t.Errorf("growth: got %s, want 4.2", got)
	}
	if got := res.Observations[1].Units; !got.Equal(dec("20")) {
		t.Errorf("derived units: got %s, want 20", got)
	}
	if res.Records[0].Label != "Index Fund" {
		t.Errorf("label: got %q, want %q", res.Records[0].Label, "Index Fund")
	}
}

func TestTransform_Idempotent(t *testing.T) {
	rows := []models.RawRow{
		savingsRow("03-01-2024", "90"),
		savingsRow("01-01-2024", "100"),
		savingsRow("bad", "100"),
	}
	snapshot := make([]models.RawRow, len(rows))
	copy(snapshot, rows)

	a := Transform(&SavingsAdapter{}, rows)
	b := Transform(&SavingsAdapter{}, rows)
	if !reflect.DeepEqual(a.Records, b.Records) {
		t.Error("records differ between runs on the same input")
	}
	if a.SkipCount() != b.SkipCount() {
		t.Errorf("skip count differs: %d vs %d", a.SkipCount(), b.SkipCount())
	}
	if !reflect.DeepEqual(rows, snapshot) {
		t.Error("input rows were modified")
	}
}

func TestTransform_Empty(t *testing.T) {
	res := Transform(&SpendAdapter{}, nil)
	if len(res.Records) != 0 || res.SkipCount() != 0 {
		t.Errorf("got %d records %d skipped, want 0 and 0", len(res.Records), res.SkipCount())
	}
}

func TestDeltas(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	records := Deltas(
		[]time.Time{d(1), d(2), d(3)},
		[]decimal.Decimal{dec("100"), dec("120"), dec("90")},
	)
	if len(records) != 3 {
		t.Fatalf("records: got %d, want 3", len(records))
	}
	if records[0].PercentChange != 0 || !records[0].Difference.IsZero() {
		t.Errorf("first record: got diff %s pct %f, want zeros", records[0].Difference, records[0].PercentChange)
	}
	if records[2].PercentChange != -25 {
		t.Errorf("records[2].PercentChange: got %f, want -25", records[2].PercentChange)
	}
}

func TestChange(t *testing.T) {
	tests := []struct {
		name      string
		prev, cur string
		diff      string
		pct       float64
		ok        bool
	}{
		{"increase", "100", "120", "20", 20, true},
		{"decrease", "120", "90", "-30", -25, true},
		{"from zero", "0", "50", "50", 0, false},
		{"negative base", "-100", "-50", "50", -50, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff, pct, ok := Change(dec(tt.prev), dec(tt.cur))
			if !diff.Equal(dec(tt.diff)) || pct != tt.pct || ok != tt.ok {
				t.Errorf("got (%s, %f, %v), want (%s, %f, %v)", diff, pct, ok, tt.diff, tt.pct, tt.ok)
			}
		})
	}
}
