// internal/workers/scoring/score-credit-risk/models.go
package scorecreditrisk

import (
	"loan-engine/internal/engine/report"
)

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	Applicant     map[string]interface{} `json:"applicant"`
	CallerToken   string                 `json:"callerToken,omitempty"`
}

type Output struct {
	Report *report.EngineScoreReport `json:"scoreReport"`
}
