// internal/workers/scoring/persist-score-report/handler.go
package persistscorereport

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"loan-engine/internal/common/errors"
	"loan-engine/internal/common/logger"
	"loan-engine/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "persist-score-report"
)

type Handler struct {
	config       *Config
	db           *sql.DB
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		errorHandler: errors.NewErrorHandler(workerLog),
		logger:       workerLog,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, errors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		return nil
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PERSIST_FAILED").Inc()
		return nil
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	r := input.Report
	if r == nil {
		return nil, errors.NewValidationFailedError("scoreReport is missing")
	}

	// One report per application.
	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM score_reports
			WHERE application_id = $1
		)`, r.ApplicationID).Scan(&exists)
	if err != nil {
		return nil, errors.NewReportInsertFailedError(fmt.Errorf("duplicate check failed: %w", err))
	}
	if exists {
		return nil, errors.NewDuplicateReportError(r.ApplicationID)
	}

	breakdownJSON, err := json.Marshal(r.Breakdown)
	if err != nil {
		return nil, errors.NewReportInsertFailedError(fmt.Errorf("failed to marshal breakdown: %w", err))
	}
	reasonsJSON, err := json.Marshal(r.Reasons)
	if err != nil {
		return nil, errors.NewReportInsertFailedError(fmt.Errorf("failed to marshal reasons: %w", err))
	}
	exposureJSON, err := json.Marshal(r.CreditExposure)
	if err != nil {
		return nil, errors.NewReportInsertFailedError(fmt.Errorf("failed to marshal credit exposure: %w", err))
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO score_reports (
			id, application_id, score, score_max, score_normalized,
			breakdown, reasons, credit_exposure, scored_by, scored_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ReportID,
		r.ApplicationID,
		r.LoanEngineScore,
		r.LoanEngineScoreMax,
		r.LoanEngineScoreNormalized,
		breakdownJSON,
		reasonsJSON,
		exposureJSON,
		r.ScoredBy,
		r.ScoredAt.UTC().Format(time.RFC3339),
		createdAt,
	)
	if err != nil {
		return nil, errors.NewReportInsertFailedError(err)
	}

	h.logger.Info("score report persisted", map[string]interface{}{
		"reportId":      r.ReportID,
		"applicationId": r.ApplicationID,
	})

	return &Output{
		ReportID:  r.ReportID,
		Persisted: true,
		CreatedAt: createdAt,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}

	if _, err = cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}
