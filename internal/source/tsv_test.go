package source

import (
	"strings"
	"testing"
)

func TestReadTSV(t *testing.T) {
	input := "\ufeffDate\tType\tAmount (INR)\tBalance after spend (INR)\n" +
		"01-01-2024\tExpense\t 1,200 \t10,000\n" +
		"\n" +
		"02-01-2024\tIncome\n" +
		"03-01-2024\tExpense\t50\t9,950\textra\n" +
		"\t\t\t\n"

	tbl, err := ReadTSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantHeaders := []string{"Date", "Type", "Amount (INR)", "Balance after spend (INR)"}
	if len(tbl.Headers) != len(wantHeaders) {
		t.Fatalf("headers: got %v, want %v", tbl.Headers, wantHeaders)
	}
	for i, h := range wantHeaders {
		if tbl.Headers[i] != h {
			t.Errorf("headers[%d]: got %q, want %q", i, tbl.Headers[i], h)
		}
	}

	if len(tbl.Rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(tbl.Rows))
	}

	tests := []struct {
		row  int
		col  string
		want string
	}{
		{0, "Amount (INR)", "1,200"},
		{0, "Balance after spend (INR)", "10,000"},
		{1, "Type", "Income"},
		{1, "Amount (INR)", ""},
		{2, "Balance after spend (INR)", "9,950"},
	}
	for _, tt := range tests {
		if got := tbl.Rows[tt.row][tt.col]; got != tt.want {
			t.Errorf("rows[%d][%q]: got %q, want %q", tt.row, tt.col, got, tt.want)
		}
	}
	if _, ok := tbl.Rows[1]["Balance after spend (INR)"]; !ok {
		t.Error("missing cell should be present as empty string")
	}
}

func TestReadTSV_Quotes(t *testing.T) {
	input := "Date\tDescription\n01-01-2024\tDinner at \"Joe's\"\n"
	tbl, err := ReadTSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tbl.Rows[0]["Description"]; got != `Dinner at "Joe's"` {
		t.Errorf("got %q", got)
	}
}

func TestReadTSV_Empty(t *testing.T) {
	for _, input := range []string{"", "\n\n", "\t\t\n"} {
		if _, err := ReadTSV(strings.NewReader(input)); err == nil {
			t.Errorf("ReadTSV(%q): expected error for missing header", input)
		}
	}
}

func TestReadTSV_HeaderOnly(t *testing.T) {
	tbl, err := ReadTSV(strings.NewReader("Date\tAmount\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tbl.Rows) != 0 {
		t.Errorf("rows: got %d, want 0", len(tbl.Rows))
	}
}
