package analytics

import "math"

// Progress is how far a metric has come towards its configured limit.
type Progress struct {
	Value       float64  `json:"value"`
	Limit       *float64 `json:"limit,omitempty"`
	Ratio       float64  `json:"ratio"`
	GoalReached bool     `json:"goalReached"`
}

// HasLimit reports whether a limit was configured.
func (p Progress) HasLimit() bool {
	return p.Limit != nil
}

// EvaluateBudget compares value against limit. Without a positive limit
// the ratio is a full 1; the goal is reached only when a limit exists and
// value meets it.
func EvaluateBudget(value float64, limit *float64) Progress {
	p := Progress{Value: value, Limit: limit, Ratio: 1}
	if limit != nil && *limit > 0 {
		p.Ratio = math.Min(value / *limit, 1)
	}
	p.GoalReached = limit != nil && value >= *limit
	return p
}

// EvaluateTargets evaluates every metric against its limit, if any. Metrics
// without a configured limit get the neutral no-op progress.
func EvaluateTargets(metrics map[string]float64, limits map[string]float64) map[string]Progress {
	out := make(map[string]Progress, len(metrics))
	for name, value := range metrics {
		var limit *float64
		if l, ok := limits[name]; ok {
			limit = &l
		}
		out[name] = EvaluateBudget(value, limit)
	}
	return out
}
