// Package analytics derives the dashboard statistics from normalised
// ledger observations. Every function is pure: it reads its inputs, never
// modifies them, and keeps no state between calls.
package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

// Percent change thresholds beyond which a series counts as moving.
const (
	TrendUpThreshold   = 2.0
	TrendDownThreshold = -2.0
)

// TrendThresholds bounds the flat band of the classifier, in percent.
type TrendThresholds struct {
	Up   float64
	Down float64
}

// DefaultTrendThresholds returns the ±2% band.
func DefaultTrendThresholds() TrendThresholds {
	return TrendThresholds{Up: TrendUpThreshold, Down: TrendDownThreshold}
}

// ClassifyTrend classifies values with the default thresholds.
func ClassifyTrend(values []float64) models.Trend {
	return DefaultTrendThresholds().Classify(values)
}

// Classify compares the last value against the first. Fewer than two points
// or a zero first value is flat.
func (t TrendThresholds) Classify(values []float64) models.Trend {
	pct, ok := TrendPercent(values)
	if !ok {
		return models.TrendFlat
	}
	switch {
	case pct > t.Up:
		return models.TrendUp
	case pct < t.Down:
		return models.TrendDown
	default:
		return models.TrendFlat
	}
}

// TrendPercent returns (last-first)/first*100. ok is false when the change
// is undefined: fewer than two points or a zero first value.
func TrendPercent(values []float64) (pct float64, ok bool) {
	if len(values) < 2 {
		return 0, false
	}
	first, last := values[0], values[len(values)-1]
	if first == 0 {
		return 0, false
	}
	return (last - first) / first * 100, true
}

// Polarity says whether a rising series is good news at a call site.
// A rising savings balance is positive; rising money lent out is negative.
type Polarity int

const (
	RisingIsGood Polarity = iota
	RisingIsBad
)

// SentimentOf maps a trend onto its reading for the given polarity.
func SentimentOf(trend models.Trend, polarity Polarity) models.Sentiment {
	switch {
	case trend == models.TrendFlat:
		return models.SentimentNeutral
	case (trend == models.TrendUp) == (polarity == RisingIsGood):
		return models.SentimentPositive
	default:
		return models.SentimentNegative
	}
}

// Floats converts decimals for the float-valued statistics.
func Floats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.InexactFloat64()
	}
	return out
}
