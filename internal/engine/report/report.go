// internal/engine/report/report.go

// Package report assembles the final score report returned to collaborators.
package report

import (
	"time"

	"github.com/google/uuid"

	"loan-engine/internal/engine/aggregate"
	"loan-engine/internal/engine/applicant"
	"loan-engine/internal/engine/bureau"
	"loan-engine/internal/engine/scorer"
)

// EngineScoreReport is the final artifact of one scoring request. Built
// once, returned to the caller, then discarded; the engine holds no
// cross-request state.
type EngineScoreReport struct {
	ReportID      string `json:"reportId"`
	ApplicationID string `json:"applicationId,omitempty"`

	Breakdown                 map[string]scorer.ContributionResult `json:"breakdown"`
	LoanEngineScore           float64                              `json:"loanEngineScore"`
	LoanEngineScoreMax        float64                              `json:"loanEngineScoreMax"`
	LoanEngineScoreNormalized float64                              `json:"loanEngineScoreNormalized"`
	Reasons                   []string                             `json:"reasons"`
	CreditExposure            bureau.AccountExposure               `json:"creditExposure"`

	// Pass-through attachments for collaborators; opaque to the scoring core.
	RawBureauPayload  map[string]interface{} `json:"rawBureauPayload,omitempty"`
	EmploymentHistory []interface{}          `json:"employmentHistory,omitempty"`
	ScoredBy          string                 `json:"scoredBy,omitempty"`
	ScoredAt          time.Time              `json:"scoredAt"`
}

// BuildBreakdown keys the contribution results by factor name.
func BuildBreakdown(results []scorer.ContributionResult) map[string]scorer.ContributionResult {
	breakdown := make(map[string]scorer.ContributionResult, len(results))
	for _, r := range results {
		breakdown[r.FactorName] = r
	}
	return breakdown
}

// Assemble composes the report. Pure composition, no I/O, no validation:
// everything here has already been validated upstream.
func Assemble(
	applicationID string,
	profile *applicant.Profile,
	bureauReport *bureau.Report,
	breakdown map[string]scorer.ContributionResult,
	agg aggregate.Result,
	reasonList []string,
	scoredBy string,
) *EngineScoreReport {
	return &EngineScoreReport{
		ReportID:      uuid.New().String(),
		ApplicationID: applicationID,

		Breakdown:                 breakdown,
		LoanEngineScore:           agg.LoanEngineScore,
		LoanEngineScoreMax:        agg.LoanEngineScoreMax,
		LoanEngineScoreNormalized: agg.LoanEngineScoreNormalized,
		Reasons:                   reasonList,
		CreditExposure:            bureauReport.AccountExposure,

		RawBureauPayload:  bureauReport.RawPayload,
		EmploymentHistory: bureauReport.EmploymentHistory,
		ScoredBy:          scoredBy,
		ScoredAt:          time.Now().UTC(),
	}
}
