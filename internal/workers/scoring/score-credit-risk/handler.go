// internal/workers/scoring/score-credit-risk/handler.go
package scorecreditrisk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-engine/internal/common/errors"
	"loan-engine/internal/common/logger"
	"loan-engine/internal/common/metrics"
	"loan-engine/internal/engine/report"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-credit-risk"
)

// ScoreService is the engine boundary, narrowed for mocking.
type ScoreService interface {
	Score(ctx context.Context, applicationID string, rawApplicant map[string]interface{}, scoredBy string) (*report.EngineScoreReport, error)
}

// IdentityResolver resolves the caller behind an opaque token for the
// scoredBy attribution. Attribution is best-effort and never blocks scoring.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type Handler struct {
	config       *Config
	engine       ScoreService
	identity     IdentityResolver
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engine ScoreService, identity IdentityResolver, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		identity:     identity,
		errorHandler: errors.NewErrorHandler(workerLog),
		logger:       workerLog,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

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
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode(err)).Inc()
		return nil
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	scoredBy := h.resolveCaller(ctx, input.CallerToken)

	scoreReport, err := h.engine.Score(ctx, input.ApplicationID, input.Applicant, scoredBy)
	if err != nil {
		return nil, err
	}

	return &Output{Report: scoreReport}, nil
}

// resolveCaller attributes the request to a caller identity. Failures fall
// back to empty attribution rather than failing the scoring job.
func (h *Handler) resolveCaller(ctx context.Context, token string) string {
	if token == "" || h.identity == nil {
		return ""
	}

	caller, err := h.identity.Resolve(ctx, token)
	if err != nil {
		h.logger.Warn("caller attribution failed", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	return caller
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

func errorCode(err error) string {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "INTERNAL_ERROR"
}
