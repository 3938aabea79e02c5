// Package normalize parses the locale-formatted amounts and DD-MM-YYYY
// dates found in ledger sheets into canonical values.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount format")
	ErrInvalidDate   = errors.New("invalid date format")
)

// plainNumber is the only amount notation ledgers use; exponents are rejected.
var plainNumber = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// LedgerDateLayout is the layout ledger dates are written in.
const LedgerDateLayout = "02-01-2006"

// NumericParseError reports a currency/number cell that is not numeric
// after separators are removed.
type NumericParseError struct {
	Raw string
	Err error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("amount %q: %v", e.Raw, e.Err)
}

func (e *NumericParseError) Unwrap() error { return ErrInvalidAmount }

// DateParseError reports a malformed or out-of-range ledger date.
type DateParseError struct {
	Raw    string
	Reason string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("date %q: %s", e.Raw, e.Reason)
}

func (e *DateParseError) Unwrap() error { return ErrInvalidDate }

// ParseAmount converts a string like "1,23,456.50" or "₹2,500" to a decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if s == "" {
		return decimal.Zero, &NumericParseError{Raw: raw, Err: errors.New("empty value")}
	}

	if !plainNumber.MatchString(s) {
		return decimal.Zero, &NumericParseError{Raw: raw, Err: errors.New("not a plain decimal number")}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &NumericParseError{Raw: raw, Err: err}
	}
	return d, nil
}

// ParseOptionalAmount is ParseAmount for columns that may be left blank.
// A blank cell yields ok=false and no error.
func ParseOptionalAmount(raw string) (d decimal.Decimal, ok bool, err error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, false, nil
	}
	d, err = ParseAmount(raw)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

// ParseLedgerDate parses a DD-MM-YYYY date into UTC midnight of that day.
func ParseLedgerDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, &DateParseError{Raw: raw, Reason: "want DD-MM-YYYY"}
	}

	for _, p := range parts {
		if !isDigits(p) {
			return time.Time{}, &DateParseError{Raw: raw, Reason: "segments must be digits only"}
		}
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, &DateParseError{Raw: raw, Reason: "day is not a number"}
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, &DateParseError{Raw: raw, Reason: "month is not a number"}
	}
	if len(parts[2]) != 4 {
		return time.Time{}, &DateParseError{Raw: raw, Reason: "year must have four digits"}
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, &DateParseError{Raw: raw, Reason: "year is not a number"}
	}

	if year < 1 {
		return time.Time{}, &DateParseError{Raw: raw, Reason: "year 0000 out of range"}
	}
	if month < 1 || month > 12 {
		return time.Time{}, &DateParseError{Raw: raw, Reason: fmt.Sprintf("month %d out of range", month)}
	}
	if day < 1 || day > DaysInMonth(year, time.Month(month)) {
		return time.Time{}, &DateParseError{Raw: raw, Reason: fmt.Sprintf("day %d out of range", day)}
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatLedgerDate renders t back into the ledger's DD-MM-YYYY layout.
func FormatLedgerDate(t time.Time) string {
	return t.Format(LedgerDateLayout)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
