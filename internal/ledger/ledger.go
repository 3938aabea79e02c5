package ledger

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

// Adapter turns the raw rows of one ledger layout into observations.
type Adapter interface {
	// Kind returns the ledger this adapter reads.
	Kind() models.LedgerKind
	// Mode returns which column the ledger's tracked value follows.
	Mode() models.SeriesMode
	// Observe normalises one row. ok is false for rows that belong to a
	// different ledger; err is set for rows that fail normalisation.
	Observe(row models.RawRow) (obs models.Observation, ok bool, err error)
}

// New returns the adapter for the given ledger kind.
func New(kind models.LedgerKind) (Adapter, error) {
	switch kind {
	case models.LedgerMain:
		return &MainAdapter{}, nil
	case models.LedgerSavings:
		return &SavingsAdapter{}, nil
	case models.LedgerSpend:
		return &SpendAdapter{}, nil
	case models.LedgerSIP:
		return &SIPAdapter{}, nil
	case models.LedgerLend:
		return &LendAdapter{}, nil
	default:
		return nil, fmt.Errorf("unsupported ledger kind: %q", kind)
	}
}

// ParseKind maps a user-supplied ledger name onto a LedgerKind.
func ParseKind(name string) (models.LedgerKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "main", "account", "kotak", "balance":
		return models.LedgerMain, nil
	case "savings", "saving":
		return models.LedgerSavings, nil
	case "spend", "pocket":
		return models.LedgerSpend, nil
	case "sip", "sips":
		return models.LedgerSIP, nil
	case "lend", "loans":
		return models.LedgerLend, nil
	default:
		return "", fmt.Errorf("unknown ledger %q. Supported: main, savings, spend, sip, lend", name)
	}
}

// AutoDetect identifies the ledger layout from its header row.
// The lend ledger is never detected: it is derived from main-account rows.
func AutoDetect(headers []string) (models.LedgerKind, error) {
	has := make(map[string]bool, len(headers))
	for _, h := range headers {
		has[strings.ToLower(strings.TrimSpace(h))] = true
	}

	switch {
	case (has["fund name"] || has["fund"]) && (has["units purchased"] || has["nav (inr)"] || has["growth"] || has["growth %"]):
		return models.LedgerSIP, nil
	case has["balance after transaction"]:
		return models.LedgerSpend, nil
	case has["balance after spend (inr)"] && has["payment method"]:
		return models.LedgerMain, nil
	case has["balance after spend (inr)"]:
		return models.LedgerSavings, nil
	}

	return "", fmt.Errorf("could not auto-detect ledger from headers %v; please specify the ledger kind", headers)
}
