// internal/engine/scorer/registry.go
package scorer

import (
	"fmt"

	"loan-engine/internal/common/errors"
	"loan-engine/internal/common/logger"
	"loan-engine/internal/common/metrics"
)

// Registry holds the fixed scorer set. Built once at process startup and
// never mutated; safe for concurrent use across requests.
type Registry struct {
	scorers     []FactorScorer
	totalWeight float64
	logger      logger.Logger
}

// NewRegistry validates that the declared weights sum to exactly
// TotalEngineWeight and refuses to construct otherwise. This is the only
// place the weight invariant is checked; per-request code relies on it.
func NewRegistry(scorers []FactorScorer, log logger.Logger) (*Registry, error) {
	if len(scorers) == 0 {
		return nil, errors.NewRegistryMisconfiguredError("no scorers registered")
	}

	seen := make(map[string]bool, len(scorers))
	var sum float64
	for _, s := range scorers {
		if seen[s.FactorName()] {
			return nil, errors.NewRegistryMisconfiguredError(
				fmt.Sprintf("duplicate scorer registration: %s", s.FactorName()),
			)
		}
		seen[s.FactorName()] = true

		if s.MaxWeight() <= 0 {
			return nil, errors.NewRegistryMisconfiguredError(
				fmt.Sprintf("scorer %s declares non-positive maxWeight %v", s.FactorName(), s.MaxWeight()),
			)
		}
		sum += s.MaxWeight()
	}

	if sum != TotalEngineWeight {
		return nil, errors.NewRegistryMisconfiguredError(
			fmt.Sprintf("declared weights sum to %v, expected %v", sum, TotalEngineWeight),
		)
	}

	return &Registry{
		scorers:     scorers,
		totalWeight: sum,
		logger:      log,
	}, nil
}

// NewDefaultRegistry constructs the registry with the production scorer set.
func NewDefaultRegistry(log logger.Logger) (*Registry, error) {
	return NewRegistry([]FactorScorer{
		CreditScoreBandScorer{},
		DebtToIncomeScorer{},
		CreditUtilizationScorer{},
		AdverseListingsScorer{},
		EmploymentTenureScorer{},
		IncomeStabilityScorer{},
		ContractTypeScorer{},
		EmploymentCategoryScorer{},
		DeviceTrustScorer{},
		RepaymentHistoryScorer{},
		DataRetrievalScorer{},
	}, log)
}

// TotalWeight returns the validated sum of all declared maximum weights.
func (r *Registry) TotalWeight() float64 {
	return r.totalWeight
}

// FactorNames returns the registered factor names in registration order.
func (r *Registry) FactorNames() []string {
	names := make([]string, 0, len(r.scorers))
	for _, s := range r.scorers {
		names = append(names, s.FactorName())
	}
	return names
}

// Evaluate runs every scorer against the inputs. A scorer fault never fails
// the request: the panic is recovered, the factor contributes zero, and the
// degradation is recorded in the result and the metrics.
func (r *Registry) Evaluate(in Inputs) []ContributionResult {
	results := make([]ContributionResult, 0, len(r.scorers))
	for _, s := range r.scorers {
		results = append(results, r.evaluateOne(s, in))
	}
	return results
}

func (r *Registry) evaluateOne(s FactorScorer, in Inputs) (result ContributionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("scorer panicked, degrading factor", map[string]interface{}{
				"factor": s.FactorName(),
				"panic":  fmt.Sprintf("%v", rec),
			})
			metrics.FactorDegradations.WithLabelValues(s.FactorName()).Inc()

			result = ContributionResult{
				FactorName:          s.FactorName(),
				Diagnostic:          DiagnosticFactorUnavailable,
				DiagnosticValue:     nil,
				ContributionPercent: 0,
				MaxWeight:           s.MaxWeight(),
			}
		}
	}()

	result = s.Score(in)

	// Enforce the per-scorer bound even against a misbehaving implementation.
	result.ContributionPercent = clamp(result.ContributionPercent, s.MaxWeight())
	return result
}
