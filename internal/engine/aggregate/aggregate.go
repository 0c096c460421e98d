// internal/engine/aggregate/aggregate.go

// Package aggregate sums factor contributions and normalizes them against
// the registry's validated total weight.
package aggregate

import (
	"loan-engine/internal/engine/scorer"
)

// Result carries the three aggregate score figures.
type Result struct {
	LoanEngineScore           float64 `json:"loanEngineScore"`
	LoanEngineScoreMax        float64 `json:"loanEngineScoreMax"`
	LoanEngineScoreNormalized float64 `json:"loanEngineScoreNormalized"`
}

// Aggregate sums contributionPercent across the results and normalizes into
// [0, 100] against totalWeight, the registry's startup-validated constant.
// The min(100, ...) clamp holds even though the per-scorer bound already
// guarantees the unclamped value cannot exceed 100 under correct
// configuration.
func Aggregate(results []scorer.ContributionResult, totalWeight float64) Result {
	var sum float64
	for _, r := range results {
		sum += r.ContributionPercent
	}

	normalized := 0.0
	if totalWeight > 0 {
		normalized = (sum / totalWeight) * 100
		if normalized > 100 {
			normalized = 100
		}
	}

	return Result{
		LoanEngineScore:           sum,
		LoanEngineScoreMax:        totalWeight,
		LoanEngineScoreNormalized: normalized,
	}
}
