// internal/workers/scoring/persist-score-report/models.go
package persistscorereport

import (
	"loan-engine/internal/engine/report"
)

type Input struct {
	Report *report.EngineScoreReport `json:"scoreReport"`
}

type Output struct {
	ReportID  string `json:"reportId"`
	Persisted bool   `json:"persisted"`
	CreatedAt string `json:"createdAt"`
}
