package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

// DefaultSelfTransfer is the description of transfers between the owner's
// own accounts in the main ledger.
const DefaultSelfTransfer = "Bank Kotak - Bank SBI Self Transfer"

// RangeOptions chooses which transaction groups enter the statistics. The
// zero value excludes all of them.
type RangeOptions struct {
	IncludeSelfTransfers  bool
	IncludeLend           bool
	IncludeHomeEssentials bool
	// SelfTransferDescriptions overrides DefaultSelfTransfer when set.
	SelfTransferDescriptions []string
}

// RangePoint is one retained transaction.
type RangePoint struct {
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	IsOutlier   bool      `json:"isOutlier"`
}

// Range is the one-standard-deviation band over the retained transactions.
type Range struct {
	Mean     float64      `json:"mean"`
	StdDev   float64      `json:"stdDev"`
	Lower    float64      `json:"lower"`
	Upper    float64      `json:"upper"`
	Retained int          `json:"retained"`
	Outliers int          `json:"outliers"`
	Points   []RangePoint `json:"points"`
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (o RangeOptions) retains(obs models.Observation) bool {
	typ := normalizeLabel(obs.Type)
	if typ == "income" {
		return false
	}
	if !o.IncludeHomeEssentials && typ == "home essentials" {
		return false
	}
	if !o.IncludeLend && typ == "lend" {
		return false
	}
	if !o.IncludeSelfTransfers {
		descs := o.SelfTransferDescriptions
		if len(descs) == 0 {
			descs = []string{DefaultSelfTransfer}
		}
		for _, d := range descs {
			if obs.Description == d {
				return false
			}
		}
	}
	return true
}

// TransactionRange computes the population mean and standard deviation of
// the retained amounts and flags every transaction farther than one
// standard deviation from the mean. Income is never retained.
func TransactionRange(obs []models.Observation, opts RangeOptions) Range {
	retained := make([]models.Observation, 0, len(obs))
	for _, o := range obs {
		if opts.retains(o) {
			retained = append(retained, o)
		}
	}
	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].Date.Before(retained[j].Date)
	})

	r := Range{Points: []RangePoint{}}
	if len(retained) == 0 {
		return r
	}

	amounts := make([]float64, len(retained))
	for i, o := range retained {
		amounts[i] = o.Amount.InexactFloat64()
	}
	r.Mean, r.StdDev = MeanStdDev(amounts)
	r.Lower = r.Mean - r.StdDev
	r.Upper = r.Mean + r.StdDev
	r.Retained = len(retained)

	r.Points = make([]RangePoint, len(retained))
	for i, o := range retained {
		outlier := math.Abs(amounts[i]-r.Mean) > r.StdDev
		if outlier {
			r.Outliers++
		}
		r.Points[i] = RangePoint{
			Date:        o.Date,
			Amount:      amounts[i],
			Type:        o.Type,
			Description: o.Description,
			IsOutlier:   outlier,
		}
	}
	return r
}

// MeanStdDev returns the mean and population standard deviation (divided
// by N). An empty slice yields zeros.
func MeanStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	n := float64(len(values))
	uniform := true
	for _, v := range values {
		mean += v
		uniform = uniform && v == values[0]
	}
	// Identical values have no spread; skip the float noise of sum/n.
	if uniform {
		return values[0], 0
	}
	mean /= n

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / n)
}
