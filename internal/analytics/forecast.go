package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/ledger-insights/internal/models"
	"github.com/insightdelivered/ledger-insights/internal/normalize"
)

// DefaultAllotmentCategory marks top-ups of the pocket-money ledger.
const DefaultAllotmentCategory = "Fund allotted"

// Period is the budgeting period the recommendations are spread over.
type Period string

const (
	PeriodMonth Period = "month"
	PeriodWeek  Period = "week"
)

// ParsePeriod accepts "month" or "week"; blank means month.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case "", PeriodMonth:
		return PeriodMonth, nil
	case PeriodWeek:
		return PeriodWeek, nil
	default:
		return "", fmt.Errorf("unknown period %q: use month or week", s)
	}
}

// daysIn returns the length of the period containing day and day's
// 1-based position within it. Weeks start on Monday.
func (p Period) daysIn(day time.Time) (length, position int) {
	if p == PeriodWeek {
		wd := int(day.Weekday())
		if wd == 0 {
			wd = 7
		}
		return 7, wd
	}
	return normalize.DaysInMonth(day.Year(), day.Month()), day.Day()
}

// ForecastOptions parameterises SpendForecast.
type ForecastOptions struct {
	// Today is the reference date; only its calendar day is used.
	Today  time.Time
	Period Period
	// AllotmentCategory overrides DefaultAllotmentCategory when set.
	AllotmentCategory string
}

// Forecast is the pocket-money outlook derived from the spend ledger.
type Forecast struct {
	PocketMoney                   float64 `json:"pocketMoney"`
	TotalSpend                    float64 `json:"totalSpend"`
	TotalSpendFromPocketMoney     float64 `json:"totalSpendFromPocketMoney"`
	Transactions                  int     `json:"transactions"`
	DaysSinceFirst                int     `json:"daysSinceFirst"`
	AvgDailySpend                 float64 `json:"avgDailySpend"`
	AvgTransactionSize            float64 `json:"avgTransactionSize"`
	RemainingDaysInPeriod         int     `json:"remainingDaysInPeriod"`
	RecommendedAvgDailySpend      float64 `json:"recommendedAvgDailySpend"`
	DaysUntilDepleted             int     `json:"daysUntilDepleted"`
	AvgTransactionsPerDay         float64 `json:"avgTransactionsPerDay"`
	RecommendedAvgTransactionSize float64 `json:"recommendedAvgTransactionSize"`
}

// SpendForecast projects when the pocket money runs out and how much can be
// spent per day and per transaction for the rest of the period. obs must be
// sorted by date. Pocket money is the balance of the last observation.
// Every division guards its zero denominator.
func SpendForecast(obs []models.Observation, opts ForecastOptions) Forecast {
	if len(obs) == 0 {
		return Forecast{}
	}

	allotment := opts.AllotmentCategory
	if allotment == "" {
		allotment = DefaultAllotmentCategory
	}
	period := opts.Period
	if period == "" {
		period = PeriodMonth
	}
	today := normalize.Day(opts.Today)

	var f Forecast
	f.PocketMoney = obs[len(obs)-1].Balance.Decimal.InexactFloat64()

	totalSpend := decimal.Zero
	fromPocket := decimal.Zero
	for _, o := range obs {
		if o.Category == allotment {
			continue
		}
		fromPocket = fromPocket.Add(o.Amount)
		if o.Type == TypeIncome {
			continue
		}
		totalSpend = totalSpend.Add(o.Amount)
		f.Transactions++
	}
	f.TotalSpend = totalSpend.InexactFloat64()
	f.TotalSpendFromPocketMoney = fromPocket.InexactFloat64()

	first := normalize.Day(obs[0].Date)
	elapsed := int(math.Floor(today.Sub(first).Hours() / 24))
	f.DaysSinceFirst = max(1, elapsed+1)

	f.AvgDailySpend = f.TotalSpend / float64(f.DaysSinceFirst)
	if f.Transactions > 0 {
		f.AvgTransactionSize = f.TotalSpend / float64(f.Transactions)
	}

	length, position := period.daysIn(today)
	f.RemainingDaysInPeriod = max(1, length-position)
	f.RecommendedAvgDailySpend = f.PocketMoney / float64(f.RemainingDaysInPeriod)

	f.DaysUntilDepleted = DaysUntilDepleted(f.PocketMoney, f.AvgDailySpend)

	f.AvgTransactionsPerDay = float64(f.Transactions) / float64(f.DaysSinceFirst)
	f.RecommendedAvgTransactionSize = f.RecommendedAvgDailySpend / math.Max(f.AvgTransactionsPerDay, 1)

	return f
}

// DaysUntilDepleted is floor(pocketMoney / avgDailySpend), or 0 when
// nothing is being spent.
func DaysUntilDepleted(pocketMoney, avgDailySpend float64) int {
	if avgDailySpend <= 0 {
		return 0
	}
	return int(math.Floor(pocketMoney / avgDailySpend))
}
