// internal/workers/scoring/index-score-report/handler.go
package indexscorereport

import (
	"context"
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
	TaskType = "index-score-report"
)

// DocumentIndexer is the Elasticsearch boundary, narrowed for mocking.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, index, documentID string, doc interface{}) error
}

type Handler struct {
	config       *Config
	indexer      DocumentIndexer
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, indexer DocumentIndexer, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		indexer:      indexer,
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
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "INDEXING_FAILED").Inc()
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

	indexedAt := time.Now().UTC().Format(time.RFC3339)

	doc := auditDocument{
		ReportID:                  r.ReportID,
		ApplicationID:             r.ApplicationID,
		LoanEngineScore:           r.LoanEngineScore,
		LoanEngineScoreMax:        r.LoanEngineScoreMax,
		LoanEngineScoreNormalized: r.LoanEngineScoreNormalized,
		Reasons:                   r.Reasons,
		Breakdown:                 r.Breakdown,
		RawBureauPayload:          r.RawBureauPayload,
		ScoredBy:                  r.ScoredBy,
		ScoredAt:                  r.ScoredAt.UTC().Format(time.RFC3339),
		IndexedAt:                 indexedAt,
	}

	if err := h.indexer.IndexDocument(ctx, h.config.Index, r.ReportID, doc); err != nil {
		return nil, errors.NewIndexingFailedError(err)
	}

	h.logger.Info("score report indexed", map[string]interface{}{
		"reportId": r.ReportID,
		"index":    h.config.Index,
	})

	return &Output{
		ReportID:  r.ReportID,
		Index:     h.config.Index,
		IndexedAt: indexedAt,
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
