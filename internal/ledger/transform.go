package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Result is the derived view of one ledger.
type Result struct {
	Kind         models.LedgerKind    `json:"kind"`
	Mode         models.SeriesMode    `json:"mode"`
	Observations []models.Observation `json:"-"`
	Records      []models.DeltaRecord `json:"records"`
	Skipped      []models.SkippedRow  `json:"-"`
}

// SkipCount is the number of rows excluded because they failed to normalise.
func (r Result) SkipCount() int {
	return len(r.Skipped)
}

// Values returns the tracked value of every record, in date order.
func (r Result) Values() []decimal.Decimal {
	out := make([]decimal.Decimal, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Value
	}
	return out
}

// Transform normalises rows with the adapter, sorts them by date and
// computes each record's change against its predecessor. Rows that fail to
// normalise are reported in Result.Skipped; Row is the index into rows.
// The input slice is never modified.
func Transform(a Adapter, rows []models.RawRow) Result {
	res := Result{Kind: a.Kind(), Mode: a.Mode()}

	obs := make([]models.Observation, 0, len(rows))
	for i, row := range rows {
		o, ok, err := a.Observe(row)
		if err != nil {
			res.Skipped = append(res.Skipped, models.SkippedRow{Row: i, Err: err})
			continue
		}
		if !ok {
			continue
		}
		o.Row = i
		obs = append(obs, o)
	}

	SortObservations(obs)
	res.Observations = obs
	res.Records = buildRecords(a.Mode(), obs)
	return res
}

// SortObservations orders observations by date. Same-day observations keep
// their source order.
func SortObservations(obs []models.Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})
}

func buildRecords(mode models.SeriesMode, obs []models.Observation) []models.DeltaRecord {
	records := make([]models.DeltaRecord, len(obs))
	cumulative := decimal.Zero
	for i, o := range obs {
		cumulative = cumulative.Add(o.Amount)
		value := cumulative
		if mode == models.SeriesBalance {
			value = o.Balance.Decimal
		}
		records[i] = models.DeltaRecord{
			Date:       o.Date,
			Label:      o.Label,
			Amount:     o.Amount,
			Balance:    o.Balance,
			Value:      value,
			Cumulative: cumulative,
		}
	}
	applyDeltas(records)
	return records
}

// applyDeltas fills Difference and PercentChange from each record's Value.
func applyDeltas(records []models.DeltaRecord) {
	for i := range records {
		if i == 0 {
			records[i].Difference = decimal.Zero
			records[i].PercentChange = 0
			continue
		}
		diff, pct, ok := Change(records[i-1].Value, records[i].Value)
		records[i].Difference = diff
		records[i].PercentChange = pct
		records[i].PercentUndefined = !ok
	}
}

// Change returns cur-prev and the percent change relative to prev. When prev
// is zero the percentage falls back to 0 and ok is false.
func Change(prev, cur decimal.Decimal) (diff decimal.Decimal, pct float64, ok bool) {
	diff = cur.Sub(prev)
	if prev.IsZero() {
		return diff, 0, false
	}
	return diff, diff.Div(prev).Mul(hundred).InexactFloat64(), true
}

// Deltas builds delta records for an arbitrary dated series. dates and
// values must have the same length and already be in date order.
func Deltas(dates []time.Time, values []decimal.Decimal) []models.DeltaRecord {
	n := len(values)
	if len(dates) < n {
		n = len(dates)
	}
	records := make([]models.DeltaRecord, n)
	for i := 0; i < n; i++ {
		records[i] = models.DeltaRecord{Date: dates[i], Value: values[i], Cumulative: values[i]}
	}
	applyDeltas(records)
	return records
}
