package analytics

import (
	"sort"
	"time"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

// MethodDay counts transactions per payment method on one date.
type MethodDay struct {
	Date   time.Time      `json:"date"`
	Counts map[string]int `json:"counts"`
}

// MethodUsage is the payment-method activity of the main ledger.
type MethodUsage struct {
	Methods []string           `json:"methods"`
	Days    []MethodDay        `json:"days"`
	Average map[string]float64 `json:"average"`
}

// MethodActivity counts transactions per payment method for every distinct
// date, and averages each method's count over the number of distinct dates.
// Methods are listed in order of first appearance.
func MethodActivity(obs []models.Observation) MethodUsage {
	usage := MethodUsage{
		Methods: []string{},
		Days:    []MethodDay{},
		Average: map[string]float64{},
	}

	seen := make(map[string]bool)
	totals := make(map[string]int)
	counts := make(map[time.Time]map[string]int)
	var dates []time.Time

	for _, o := range obs {
		if !seen[o.PaymentMethod] {
			seen[o.PaymentMethod] = true
			usage.Methods = append(usage.Methods, o.PaymentMethod)
		}
		day, ok := counts[o.Date]
		if !ok {
			day = make(map[string]int)
			counts[o.Date] = day
			dates = append(dates, o.Date)
		}
		day[o.PaymentMethod]++
		totals[o.PaymentMethod]++
	}

	if len(dates) == 0 {
		return usage
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for _, d := range dates {
		row := make(map[string]int, len(usage.Methods))
		for _, m := range usage.Methods {
			row[m] = counts[d][m]
		}
		usage.Days = append(usage.Days, MethodDay{Date: d, Counts: row})
	}

	for _, m := range usage.Methods {
		usage.Average[m] = float64(totals[m]) / float64(len(dates))
	}
	return usage
}
