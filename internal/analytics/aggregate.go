package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

// Transaction types and categories with special handling in TypeTotals.
const (
	TypeIncome         = "Income"
	TypeNothing        = "Nothing"
	TypeLend           = "Lend"
	CategoryTransfer   = "Transfer"
	CategoryLoanGiven  = "Loan Given"
	CategoryLendReturn = "Lend Return"
)

// KeyFunc selects the grouping key of an observation.
type KeyFunc func(models.Observation) string

var (
	ByType          KeyFunc = func(o models.Observation) string { return o.Type }
	ByCategory      KeyFunc = func(o models.Observation) string { return o.Category }
	ByPaymentMethod KeyFunc = func(o models.Observation) string { return o.PaymentMethod }
	ByFund          KeyFunc = func(o models.Observation) string { return o.Fund }
)

// GroupBy sums and counts amounts per key.
func GroupBy(obs []models.Observation, key KeyFunc) map[string]models.Bucket {
	buckets := make(map[string]models.Bucket)
	for _, o := range obs {
		k := key(o)
		b := buckets[k]
		b.Count++
		b.Sum = b.Sum.Add(o.Amount)
		buckets[k] = b
	}
	for k, b := range buckets {
		b.Average = average(b.Sum, b.Count)
		buckets[k] = b
	}
	return buckets
}

func average(sum decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}

// TypeBreakdown is the per-type spend view of the main ledger.
type TypeBreakdown struct {
	Buckets    map[string]models.Bucket `json:"buckets"`
	LoanGiven  decimal.Decimal          `json:"loanGiven"`
	LendReturn decimal.Decimal          `json:"lendReturn"`
}

// Lend is the net amount still lent out.
func (t TypeBreakdown) Lend() decimal.Decimal {
	return t.Buckets[TypeLend].Sum
}

// TypeTotals groups main-ledger transactions by type. Income, Nothing and
// Transfer-category rows are left out. Lend rows never enter the generic
// sum: they accumulate into LoanGiven or LendReturn by category, and the
// Lend bucket is set once afterwards to LoanGiven - LendReturn.
func TypeTotals(obs []models.Observation) TypeBreakdown {
	t := TypeBreakdown{
		Buckets:    make(map[string]models.Bucket),
		LoanGiven:  decimal.Zero,
		LendReturn: decimal.Zero,
	}

	lendCount := 0
	for _, o := range obs {
		if o.Type == TypeIncome || o.Type == TypeNothing || o.Category == CategoryTransfer {
			continue
		}
		if o.Type == TypeLend {
			switch o.Category {
			case CategoryLoanGiven:
				t.LoanGiven = t.LoanGiven.Add(o.Amount)
				lendCount++
			case CategoryLendReturn:
				t.LendReturn = t.LendReturn.Add(o.Amount)
				lendCount++
			}
			continue
		}
		b := t.Buckets[o.Type]
		b.Count++
		b.Sum = b.Sum.Add(o.Amount)
		t.Buckets[o.Type] = b
	}

	for k, b := range t.Buckets {
		b.Average = average(b.Sum, b.Count)
		t.Buckets[k] = b
	}

	net := t.LoanGiven.Sub(t.LendReturn)
	t.Buckets[TypeLend] = models.Bucket{Count: lendCount, Sum: net, Average: average(net, lendCount)}
	return t
}

// SortedKeys returns the bucket keys in lexical order.
func SortedKeys(buckets map[string]models.Bucket) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
