package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/ledger-insights/internal/models"
	"github.com/insightdelivered/ledger-insights/internal/normalize"
)

// Columns names the candidate headers for each canonical field. The first
// non-empty cell among the candidates wins.
type Columns struct {
	Date    []string
	Amount  []string
	Balance []string
	Label   []string
}

// Shared column names across the ledger sheets.
const (
	colDate          = "Date"
	colType          = "Type"
	colCategory      = "Category"
	colDescription   = "Description"
	colLoanID        = "Loan ID"
	colMainAmount    = "Amount (INR)"
	colMainBalance   = "Balance after spend (INR)"
	colSpendAmount   = "Amount"
	colSpendBalance  = "Balance after transaction"
	colSIPBalance    = "Balance After Investment (INR)"
	colSIPUnits      = "Units Purchased"
	colSIPNAV        = "NAV (INR)"
	lendType         = "Lend"
	disbursementMark = "x"
	repaymentMark    = "y"
)

var (
	colPaymentMethod = []string{"Payment method", "Payment Method"}
	colFund          = []string{"Fund", "Fund Name"}
	colGrowth        = []string{"Growth", "Growth %"}
)

// fieldRules says which of amount/balance must be present for a row to count.
type fieldRules struct {
	amountRequired  bool
	balanceRequired bool
}

// observe normalises the canonical fields of a row and copies the typed
// attributes the analytics read.
func observe(row models.RawRow, cols Columns, rules fieldRules) (models.Observation, error) {
	date, err := normalize.ParseLedgerDate(row.Get(cols.Date...))
	if err != nil {
		return models.Observation{}, err
	}

	obs := models.Observation{
		Date:          date,
		Label:         row.Get(cols.Label...),
		Type:          row.Get(colType),
		Category:      row.Get(colCategory),
		Description:   row.Get(colDescription),
		PaymentMethod: row.Get(colPaymentMethod...),
		LoanID:        row.Get(colLoanID),
		Fund:          row.Get(colFund...),
	}

	rawAmount := row.Get(cols.Amount...)
	if rules.amountRequired {
		obs.Amount, err = normalize.ParseAmount(rawAmount)
	} else {
		obs.Amount, _, err = normalize.ParseOptionalAmount(rawAmount)
	}
	if err != nil {
		return models.Observation{}, err
	}

	rawBalance := row.Get(cols.Balance...)
	if rules.balanceRequired {
		bal, err := normalize.ParseAmount(rawBalance)
		if err != nil {
			return models.Observation{}, err
		}
		obs.Balance = decimal.NewNullDecimal(bal)
	} else {
		bal, ok, err := normalize.ParseOptionalAmount(rawBalance)
		if err != nil {
			return models.Observation{}, err
		}
		obs.Balance = decimal.NullDecimal{Decimal: bal, Valid: ok}
	}

	return obs, nil
}

// MainAdapter reads the main bank account ledger:
//
//	Date | Type | Category | Payment method | Description | Amount (INR) | Balance after spend (INR) | Loan ID
//
// The tracked value is the balance after each transaction.
type MainAdapter struct{}

var mainColumns = Columns{
	Date:    []string{colDate},
	Amount:  []string{colMainAmount},
	Balance: []string{colMainBalance},
	Label:   []string{colCategory},
}

func (a *MainAdapter) Kind() models.LedgerKind { return models.LedgerMain }
func (a *MainAdapter) Mode() models.SeriesMode { return models.SeriesBalance }

func (a *MainAdapter) Observe(row models.RawRow) (models.Observation, bool, error) {
	obs, err := observe(row, mainColumns, fieldRules{amountRequired: true, balanceRequired: true})
	if err != nil {
		return models.Observation{}, false, err
	}
	return obs, true, nil
}

// SavingsAdapter reads the savings ledger. Only the balance column is
// required; an amount column is read when present.
type SavingsAdapter struct{}

var savingsColumns = Columns{
	Date:    []string{colDate},
	Amount:  []string{colMainAmount, colSpendAmount},
	Balance: []string{colMainBalance},
	Label:   []string{colCategory, colDescription},
}

func (a *SavingsAdapter) Kind() models.LedgerKind { return models.LedgerSavings }
func (a *SavingsAdapter) Mode() models.SeriesMode { return models.SeriesBalance }

func (a *SavingsAdapter) Observe(row models.RawRow) (models.Observation, bool, error) {
	obs, err := observe(row, savingsColumns, fieldRules{balanceRequired: true})
	if err != nil {
		return models.Observation{}, false, err
	}
	return obs, true, nil
}

// SpendAdapter reads the pocket-money spend ledger:
//
//	Date | Type | Category | Description | Amount | Balance after transaction
type SpendAdapter struct{}

var spendColumns = Columns{
	Date:    []string{colDate},
	Amount:  []string{colSpendAmount},
	Balance: []string{colSpendBalance},
	Label:   []string{colCategory},
}

func (a *SpendAdapter) Kind() models.LedgerKind { return models.LedgerSpend }
func (a *SpendAdapter) Mode() models.SeriesMode { return models.SeriesBalance }

func (a *SpendAdapter) Observe(row models.RawRow) (models.Observation, bool, error) {
	obs, err := observe(row, spendColumns, fieldRules{amountRequired: true, balanceRequired: true})
	if err != nil {
		return models.Observation{}, false, err
	}
	return obs, true, nil
}

// SIPAdapter reads the SIP / lump-sum investment ledger:
//
//	Date | Fund Name | Amount | Units Purchased | NAV (INR) | Growth | Balance After Investment (INR)
//
// The tracked value is the cumulative amount invested. Units left blank are
// derived from Amount / NAV when a NAV is recorded.
type SIPAdapter struct{}

var sipColumns = Columns{
	Date:    []string{colDate},
	Amount:  []string{colSpendAmount, colMainAmount},
	Balance: []string{colSIPBalance},
	Label:   colFund,
}

func (a *SIPAdapter) Kind() models.LedgerKind { return models.LedgerSIP }
func (a *SIPAdapter) Mode() models.SeriesMode { return models.SeriesFlow }

func (a *SIPAdapter) Observe(row models.RawRow) (models.Observation, bool, error) {
	obs, err := observe(row, sipColumns, fieldRules{amountRequired: true})
	if err != nil {
		return models.Observation{}, false, err
	}

	growth := strings.TrimSuffix(strings.TrimSpace(row.Get(colGrowth...)), "%")
	if obs.Growth, _, err = normalize.ParseOptionalAmount(growth); err != nil {
		return models.Observation{}, false, err
	}

	units, ok, err := normalize.ParseOptionalAmount(row.Get(colSIPUnits))
	if err != nil {
		return models.Observation{}, false, err
	}
	if !ok {
		nav, hasNAV, err := normalize.ParseOptionalAmount(row.Get(colSIPNAV))
		if err != nil {
			return models.Observation{}, false, err
		}
		if hasNAV {
			units = UnitsFor(obs.Amount, nav)
		}
	}
	obs.Units = units

	return obs, true, nil
}

// UnitsFor returns the fund units bought for amount at the given NAV,
// rounded to two places. A zero NAV buys nothing.
func UnitsFor(amount, nav decimal.Decimal) decimal.Decimal {
	if nav.IsZero() {
		return decimal.Zero
	}
	return amount.Div(nav).Round(2)
}

// LendAdapter reads loan disbursements out of the main-account ledger:
// rows of type Lend whose Loan ID starts with "x". The tracked value is the
// cumulative amount lent.
type LendAdapter struct{}

var lendColumns = Columns{
	Date:    []string{colDate},
	Amount:  []string{colMainAmount},
	Balance: []string{colMainBalance},
	Label:   []string{colLoanID},
}

func (a *LendAdapter) Kind() models.LedgerKind { return models.LedgerLend }
func (a *LendAdapter) Mode() models.SeriesMode { return models.SeriesFlow }

func (a *LendAdapter) Observe(row models.RawRow) (models.Observation, bool, error) {
	if !isDisbursement(row) {
		return models.Observation{}, false, nil
	}
	obs, err := observe(row, lendColumns, fieldRules{amountRequired: true})
	if err != nil {
		return models.Observation{}, false, err
	}
	return obs, true, nil
}

func isDisbursement(row models.RawRow) bool {
	return row.Get(colType) == lendType && strings.HasPrefix(row.Get(colLoanID), disbursementMark)
}

func isRepayment(row models.RawRow) bool {
	return strings.HasPrefix(row.Get(colLoanID), repaymentMark)
}
