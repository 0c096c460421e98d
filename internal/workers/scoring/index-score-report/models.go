// internal/workers/scoring/index-score-report/models.go
package indexscorereport

import (
	"loan-engine/internal/engine/report"
)

type Input struct {
	Report *report.EngineScoreReport `json:"scoreReport"`
}

type Output struct {
	ReportID  string `json:"reportId"`
	Index     string `json:"index"`
	IndexedAt string `json:"indexedAt"`
}

// auditDocument is the shape indexed for search and audit. The raw bureau
// payload rides along verbatim; it is the only place it is retained.
type auditDocument struct {
	ReportID                  string                 `json:"reportId"`
	ApplicationID             string                 `json:"applicationId"`
	LoanEngineScore           float64                `json:"loanEngineScore"`
	LoanEngineScoreMax        float64                `json:"loanEngineScoreMax"`
	LoanEngineScoreNormalized float64                `json:"loanEngineScoreNormalized"`
	Reasons                   []string               `json:"reasons"`
	Breakdown                 interface{}            `json:"breakdown"`
	RawBureauPayload          map[string]interface{} `json:"rawBureauPayload,omitempty"`
	ScoredBy                  string                 `json:"scoredBy,omitempty"`
	ScoredAt                  string                 `json:"scoredAt"`
	IndexedAt                 string                 `json:"indexedAt"`
}
