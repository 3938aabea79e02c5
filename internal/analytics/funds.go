package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

// FundStats summarises one fund of the SIP ledger.
type FundStats struct {
	Fund          string          `json:"fund"`
	Transactions  int             `json:"transactions"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalUnits    decimal.Decimal `json:"totalUnits"`
	AverageGrowth float64         `json:"averageGrowth"`
}

// FundOverview is the per-fund view plus the cross-fund growth average.
type FundOverview struct {
	Funds                []FundStats `json:"funds"`
	OverallAverageGrowth float64     `json:"overallAverageGrowth"`
}

// FundSummary groups SIP observations by fund, in order of first
// appearance. Rows without a fund name are ignored. OverallAverageGrowth is
// the mean of the per-fund averages.
func FundSummary(obs []models.Observation) FundOverview {
	index := make(map[string]int)
	growth := make(map[string]decimal.Decimal)
	overview := FundOverview{Funds: []FundStats{}}

	for _, o := range obs {
		if o.Fund == "" {
			continue
		}
		i, ok := index[o.Fund]
		if !ok {
			i = len(overview.Funds)
			index[o.Fund] = i
			overview.Funds = append(overview.Funds, FundStats{Fund: o.Fund})
		}
		f := &overview.Funds[i]
		f.Transactions++
		f.TotalInvested = f.TotalInvested.Add(o.Amount)
		f.TotalUnits = f.TotalUnits.Add(o.Units)
		growth[o.Fund] = growth[o.Fund].Add(o.Growth)
	}

	var sum float64
	for i := range overview.Funds {
		f := &overview.Funds[i]
		f.AverageGrowth = average(growth[f.Fund], f.Transactions).InexactFloat64()
		sum += f.AverageGrowth
	}
	if n := len(overview.Funds); n > 0 {
		overview.OverallAverageGrowth = sum / float64(n)
	}
	return overview
}

// FundField selects the per-fund value plotted by SeriesMatrix.
type FundField string

const (
	FieldGrowth  FundField = "growth"
	FieldBalance FundField = "balance"
	FieldUnits   FundField = "units"
)

func (f FundField) value(o models.Observation) float64 {
	switch f {
	case FieldBalance:
		return o.Balance.Decimal.InexactFloat64()
	case FieldUnits:
		return o.Units.InexactFloat64()
	default:
		return o.Growth.InexactFloat64()
	}
}

// MatrixRow is one date of a fund matrix: fund -> value.
type MatrixRow struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// SeriesMatrix lays the chosen field out per date and fund for multi-line
// charts. A fund with no entry on a date carries its last known value
// forward, or 0 before its first entry. When a fund has several entries on
// one date the first one counts.
func SeriesMatrix(obs []models.Observation, field FundField) []MatrixRow {
	var funds []string
	seenFund := make(map[string]bool)
	byDate := make(map[time.Time]map[string]float64)
	var dates []time.Time

	for _, o := range obs {
		if o.Fund == "" {
			continue
		}
		if !seenFund[o.Fund] {
			seenFund[o.Fund] = true
			funds = append(funds, o.Fund)
		}
		row, ok := byDate[o.Date]
		if !ok {
			row = make(map[string]float64)
			byDate[o.Date] = row
			dates = append(dates, o.Date)
		}
		if _, dup := row[o.Fund]; !dup {
			row[o.Fund] = field.value(o)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	last := make(map[string]float64, len(funds))
	matrix := make([]MatrixRow, 0, len(dates))
	for _, d := range dates {
		values := make(map[string]float64, len(funds))
		for _, f := range funds {
			if v, ok := byDate[d][f]; ok {
				last[f] = v
			}
			values[f] = last[f]
		}
		matrix = append(matrix, MatrixRow{Date: d, Values: values})
	}
	return matrix
}
