// Package dashboard derives the full ledger dashboard from raw ledger rows
// and keeps the latest snapshot cached for readers.
package dashboard

import (
	"time"

	"github.com/insightdelivered/ledger-insights/internal/analytics"
	"github.com/insightdelivered/ledger-insights/internal/config"
	"github.com/insightdelivered/ledger-insights/internal/ledger"
	"github.com/insightdelivered/ledger-insights/internal/models"
	"github.com/insightdelivered/ledger-insights/internal/normalize"
)

// Metric names accepted as budget targets.
const (
	MetricMainBalance     = "main.balance"
	MetricSavingsBalance  = "savings.balance"
	MetricSIPInvested     = "sip.invested"
	MetricSpendTotal      = "spend.total"
	MetricPocketBalance   = "pocket.balance"
	MetricLendOutstanding = "lend.outstanding"
)

// polarity says whether a rising series is good news for each ledger.
var polarity = map[models.LedgerKind]analytics.Polarity{
	models.LedgerMain:    analytics.RisingIsGood,
	models.LedgerSavings: analytics.RisingIsGood,
	models.LedgerSpend:   analytics.RisingIsGood,
	models.LedgerSIP:     analytics.RisingIsGood,
	models.LedgerLend:    analytics.RisingIsBad,
}

// Input is everything Build needs. Ledgers holds the raw rows per kind;
// the lend ledger is always derived from the main ledger rows.
type Input struct {
	Ledgers    map[models.LedgerKind][]models.RawRow
	Budget     config.Budget
	Today      time.Time
	Period     analytics.Period
	Range      analytics.RangeOptions
	Thresholds *analytics.TrendThresholds
}

// LedgerView is one ledger's delta table with its trend.
type LedgerView struct {
	Kind         models.LedgerKind    `json:"kind"`
	Mode         models.SeriesMode    `json:"mode"`
	Records      []models.DeltaRecord `json:"records"`
	Latest       float64              `json:"latest"`
	Trend        models.Trend         `json:"trend"`
	TrendPercent float64              `json:"trendPercent"`
	Sentiment    models.Sentiment     `json:"sentiment"`
}

// SkipDetail is one row left out of a ledger.
type SkipDetail struct {
	Row    int    `json:"row"`
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// LedgerDiagnostics reports how a ledger's rows were used.
type LedgerDiagnostics struct {
	Rows         int          `json:"rows"`
	Observations int          `json:"observations"`
	Skipped      int          `json:"skipped"`
	Details      []SkipDetail `json:"details,omitempty"`
}

// Report is one immutable dashboard snapshot.
type Report struct {
	GeneratedAt time.Time                               `json:"generatedAt"`
	Today       time.Time                               `json:"today"`
	Period      analytics.Period                        `json:"period"`
	Ledgers     map[models.LedgerKind]LedgerView        `json:"ledgers"`
	Loans       ledger.LoanBook                         `json:"loans"`
	Types       analytics.TypeBreakdown                 `json:"types"`
	Categories  map[string]models.Bucket                `json:"categories"`
	Outliers    analytics.Range                         `json:"outliers"`
	Methods     analytics.MethodUsage                   `json:"methods"`
	Funds       analytics.FundOverview                  `json:"funds"`
	FundGrowth  []analytics.MatrixRow                   `json:"fundGrowth"`
	FundBalance []analytics.MatrixRow                   `json:"fundBalance"`
	FundUnits   []analytics.MatrixRow                   `json:"fundUnits"`
	Forecast    analytics.Forecast                      `json:"forecast"`
	Metrics     map[string]float64                      `json:"metrics"`
	Budget      map[string]analytics.Progress           `json:"budget"`
	Diagnostics map[models.LedgerKind]LedgerDiagnostics `json:"diagnostics"`

	results map[models.LedgerKind]ledger.Result
}

// Result returns the full transform result of one ledger.
func (r *Report) Result(kind models.LedgerKind) (ledger.Result, bool) {
	res, ok := r.results[kind]
	return res, ok
}

// OutliersWith recomputes the transaction range of the main ledger with other
// inclusion toggles.
func (r *Report) OutliersWith(opts analytics.RangeOptions) analytics.Range {
	return analytics.TransactionRange(r.results[models.LedgerMain].Observations, opts)
}

// SkipCount is the total number of rows skipped across all ledgers.
func (r *Report) SkipCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		n += d.Skipped
	}
	return n
}

// Build derives a Report from in-memory ledger rows. It performs no I/O
// and never fails: bad rows are skipped and counted in Diagnostics.
func Build(in Input) *Report {
	thresholds := analytics.DefaultTrendThresholds()
	if in.Thresholds != nil {
		thresholds = *in.Thresholds
	}
	period := in.Period
	if period == "" {
		period = analytics.PeriodMonth
	}
	today := normalize.Day(in.Today)

	r := &Report{
		GeneratedAt: time.Now().UTC(),
		Today:       today,
		Period:      period,
		Ledgers:     make(map[models.LedgerKind]LedgerView, len(models.LedgerKinds)),
		Diagnostics: make(map[models.LedgerKind]LedgerDiagnostics, len(models.LedgerKinds)),
		results:     make(map[models.LedgerKind]ledger.Result, len(models.LedgerKinds)),
	}

	mainRows := in.Ledgers[models.LedgerMain]
	for _, kind := range models.LedgerKinds {
		rows := in.Ledgers[kind]
		if kind == models.LedgerLend {
			rows = mainRows
		}
		a, err := ledger.New(kind)
		if err != nil {
			continue
		}
		res := ledger.Transform(a, rows)
		r.results[kind] = res
		r.Ledgers[kind] = view(res, thresholds)
		// Lend rows are a subset of main rows; their skips are already
		// reported under main.
		if kind == models.LedgerLend {
			r.Diagnostics[kind] = LedgerDiagnostics{Rows: len(rows), Observations: len(res.Observations)}
			continue
		}
		r.Diagnostics[kind] = diagnose(len(rows), len(res.Observations), res.Skipped)
	}

	mainObs := r.results[models.LedgerMain].Observations
	sipObs := r.results[models.LedgerSIP].Observations

	r.Loans = ledger.BuildLoanBook(mainRows)
	r.Types = analytics.TypeTotals(mainObs)
	r.Categories = analytics.GroupBy(mainObs, analytics.ByCategory)
	r.Outliers = analytics.TransactionRange(mainObs, in.Range)
	r.Methods = analytics.MethodActivity(mainObs)
	r.Funds = analytics.FundSummary(sipObs)
	r.FundGrowth = analytics.SeriesMatrix(sipObs, analytics.FieldGrowth)
	r.FundBalance = analytics.SeriesMatrix(sipObs, analytics.FieldBalance)
	r.FundUnits = analytics.SeriesMatrix(sipObs, analytics.FieldUnits)
	r.Forecast = analytics.SpendForecast(r.results[models.LedgerSpend].Observations, analytics.ForecastOptions{
		Today:  today,
		Period: period,
	})

	r.Metrics = map[string]float64{
		MetricMainBalance:     r.Ledgers[models.LedgerMain].Latest,
		MetricSavingsBalance:  r.Ledgers[models.LedgerSavings].Latest,
		MetricSIPInvested:     r.Ledgers[models.LedgerSIP].Latest,
		MetricSpendTotal:      r.Forecast.TotalSpend,
		MetricPocketBalance:   r.Forecast.PocketMoney,
		MetricLendOutstanding: r.Loans.Outstanding.InexactFloat64(),
	}
	r.Budget = analytics.EvaluateTargets(r.Metrics, in.Budget)

	return r
}

func view(res ledger.Result, th analytics.TrendThresholds) LedgerView {
	values := analytics.Floats(res.Values())
	trend := th.Classify(values)
	pct, _ := analytics.TrendPercent(values)

	v := LedgerView{
		Kind:         res.Kind,
		Mode:         res.Mode,
		Records:      res.Records,
		Trend:        trend,
		TrendPercent: pct,
		Sentiment:    analytics.SentimentOf(trend, polarity[res.Kind]),
	}
	if v.Records == nil {
		v.Records = []models.DeltaRecord{}
	}
	if n := len(values); n > 0 {
		v.Latest = values[n-1]
	}
	return v
}

func diagnose(rows, observations int, skipped []models.SkippedRow) LedgerDiagnostics {
	d := LedgerDiagnostics{Rows: rows, Observations: observations, Skipped: len(skipped)}
	for _, s := range skipped {
		d.Details = append(d.Details, SkipDetail{Row: s.Row, Line: s.Line(), Reason: s.Reason()})
	}
	return d
}
