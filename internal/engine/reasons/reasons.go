// internal/engine/reasons/reasons.go

// Package reasons derives the human-readable risk flags attached to a score
// report. Rules are fixed-order threshold checks on canonical values; the
// thresholds are engine constants, not derived.
package reasons

import (
	"loan-engine/internal/engine/applicant"
	"loan-engine/internal/engine/bureau"
	"loan-engine/internal/engine/scorer"
)

// Reason messages, fixed wording consumed by downstream decisioning.
const (
	ReasonLowCreditScore   = "Low credit score"
	ReasonHighUtilization  = "High credit utilization"
	ReasonAdverseListings  = "Adverse listings present"
	ReasonHighDebtToIncome = "High debt-to-income ratio"
	ReasonShortTenure      = "Short employment tenure"
)

// Thresholds for the reason rules.
const (
	lowCreditScoreThreshold  = 580
	highUtilizationThreshold = 75.0 // percent
	highDTIThreshold         = 50.0 // percent
	shortTenureThreshold     = 6.0  // months
)

// Generate evaluates the threshold rules in their fixed order: low score,
// high utilization, adverse listings, high DTI, short tenure. Utilization
// and DTI come from the breakdown diagnostics so the reasons always agree
// with what the scorers actually measured.
func Generate(profile *applicant.Profile, report *bureau.Report, breakdown map[string]scorer.ContributionResult) []string {
	reasons := make([]string, 0, 5)

	if report.CreditScoreValue < lowCreditScoreThreshold {
		reasons = append(reasons, ReasonLowCreditScore)
	}

	if ratio := diagnostic(breakdown, scorer.FactorCreditUtilization); ratio != nil && *ratio > highUtilizationThreshold {
		reasons = append(reasons, ReasonHighUtilization)
	}

	if report.AdverseListingsCount > 0 {
		reasons = append(reasons, ReasonAdverseListings)
	}

	if dti := diagnostic(breakdown, scorer.FactorDebtToIncome); dti != nil && *dti > highDTIThreshold {
		reasons = append(reasons, ReasonHighDebtToIncome)
	}

	if profile.MonthsInCurrentJob < shortTenureThreshold {
		reasons = append(reasons, ReasonShortTenure)
	}

	return reasons
}

func diagnostic(breakdown map[string]scorer.ContributionResult, factor string) *float64 {
	if result, ok := breakdown[factor]; ok {
		return result.DiagnosticValue
	}
	return nil
}
