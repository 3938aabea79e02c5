package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

// LoanBook partitions main-account rows into loan disbursements ("x" ids on
// Lend rows) and repayments ("y" ids).
//
// Disbursements and repayments are summed independently: a repayment is not
// matched against the loan it settles, so Outstanding is the net position
// across all loans, not a per-loan balance.
type LoanBook struct {
	Disbursements  []models.Observation `json:"disbursements"`
	Repayments     []models.Observation `json:"repayments"`
	TotalDisbursed decimal.Decimal      `json:"totalDisbursed"`
	TotalRepaid    decimal.Decimal      `json:"totalRepaid"`
	Outstanding    decimal.Decimal      `json:"outstanding"`
	Skipped        []models.SkippedRow  `json:"-"`
}

// BuildLoanBook reads disbursements and repayments from main-account rows.
func BuildLoanBook(rows []models.RawRow) LoanBook {
	book := LoanBook{
		Disbursements:  []models.Observation{},
		Repayments:     []models.Observation{},
		TotalDisbursed: decimal.Zero,
		TotalRepaid:    decimal.Zero,
	}

	for i, row := range rows {
		disbursement := isDisbursement(row)
		if !disbursement && !isRepayment(row) {
			continue
		}
		obs, err := observe(row, lendColumns, fieldRules{amountRequired: true})
		if err != nil {
			book.Skipped = append(book.Skipped, models.SkippedRow{Row: i, Err: err})
			continue
		}
		obs.Row = i
		if disbursement {
			book.Disbursements = append(book.Disbursements, obs)
			book.TotalDisbursed = book.TotalDisbursed.Add(obs.Amount)
		} else {
			book.Repayments = append(book.Repayments, obs)
			book.TotalRepaid = book.TotalRepaid.Add(obs.Amount)
		}
	}

	SortObservations(book.Disbursements)
	SortObservations(book.Repayments)
	book.Outstanding = book.TotalDisbursed.Sub(book.TotalRepaid)
	return book
}
