package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is one tab-delimited ledger line keyed by column header.
type RawRow map[string]string

// Get returns the first non-empty value among the candidate columns.
func (r RawRow) Get(cols ...string) string {
	for _, c := range cols {
		if v, ok := r[c]; ok && v != "" {
			return v
		}
	}
	return ""
}

// LedgerKind represents the supported ledger layouts.
type LedgerKind string

const (
	LedgerMain    LedgerKind = "main"
	LedgerSavings LedgerKind = "savings"
	LedgerSpend   LedgerKind = "spend"
	LedgerSIP     LedgerKind = "sip"
	LedgerLend    LedgerKind = "lend"
)

// LedgerKinds lists every kind in display order.
var LedgerKinds = []LedgerKind{LedgerMain, LedgerSavings, LedgerSpend, LedgerSIP, LedgerLend}

// SeriesMode selects which column a ledger's tracked value follows.
type SeriesMode string

const (
	// SeriesBalance tracks the balance column of each row.
	SeriesBalance SeriesMode = "balance"
	// SeriesFlow tracks the running cumulative sum of the amount column.
	SeriesFlow SeriesMode = "flow"
)

// Observation is one normalised, dated data point derived from a single ledger row.
type Observation struct {
	Row           int                 `json:"row"`
	Date          time.Time           `json:"date"`
	Amount        decimal.Decimal     `json:"amount"`
	Balance       decimal.NullDecimal `json:"balance"`
	Label         string              `json:"label,omitempty"`
	Type          string              `json:"type,omitempty"`
	Category      string              `json:"category,omitempty"`
	Description   string              `json:"description,omitempty"`
	PaymentMethod string              `json:"paymentMethod,omitempty"`
	LoanID        string              `json:"loanId,omitempty"`
	Fund          string              `json:"fund,omitempty"`
	Units         decimal.Decimal     `json:"units"`
	Growth        decimal.Decimal     `json:"growth"`
}

// DeltaRecord is an observation augmented with its change against the
// previous chronological record.
type DeltaRecord struct {
	Date       time.Time           `json:"date"`
	Label      string              `json:"label,omitempty"`
	Amount     decimal.Decimal     `json:"amount"`
	Balance    decimal.NullDecimal `json:"balance"`
	Value      decimal.Decimal     `json:"value"`
	Cumulative decimal.Decimal     `json:"cumulative"`
	Difference decimal.Decimal     `json:"difference"`
	// PercentChange is 0 when the previous value is 0; PercentUndefined
	// marks that case so a view can render "N/A".
	PercentChange    float64 `json:"percentChange"`
	PercentUndefined bool    `json:"percentUndefined,omitempty"`
}

// SkippedRow records a row excluded from a derived sequence. Row is the
// 0-based index into the data rows, below the header.
type SkippedRow struct {
	Row int   `json:"row"`
	Err error `json:"-"`
}

// Line is the 1-based sheet line of the row, counting the header line.
// Blank lines dropped by the reader are not counted.
func (s SkippedRow) Line() int {
	return s.Row + 2
}

// Reason is the skip error text, for logs and JSON.
func (s SkippedRow) Reason() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}
