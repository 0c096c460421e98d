// internal/workers/scoring/send-decision-notification/handler.go
package senddecisionnotification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"loan-engine/internal/common/errors"
	"loan-engine/internal/common/logger"
	"loan-engine/internal/common/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-decision-notification"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config       *Config
	sesClient    SESService
	snsClient    SNSService
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandlerWithClients wires explicit SES/SNS clients so the manager can
// share the common AWS clients and tests can substitute mocks.
func NewHandlerWithClients(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sesClient:    sesClient,
		snsClient:    snsClient,
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
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "NOTIFICATION_SEND_FAILED").Inc()
		return nil
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled && input.ApplicantEmail != "" {
		if err := h.sendDecisionEmail(ctx, input); err != nil {
			return nil, errors.NewNotificationSendFailedError("email", err)
		}
		emailSent = true
	}

	// Scores below the review threshold page a loan officer by SMS.
	if h.config.SMSEnabled && input.OfficerPhone != "" && input.NormalizedScore < h.config.ReviewThreshold {
		if err := h.sendReviewSMS(ctx, input); err != nil {
			return nil, errors.NewNotificationSendFailedError("sms", err)
		}
		smsSent = true
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	h.logger.Info("decision notification processed", map[string]interface{}{
		"notificationId": notificationID,
		"applicationId":  input.ApplicationID,
		"status":         status,
		"emailSent":      emailSent,
		"smsSent":        smsSent,
	})

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		EmailSent:      emailSent,
		SMSSent:        smsSent,
		SentAt:         sentAt,
	}, nil
}

func (h *Handler) sendDecisionEmail(ctx context.Context, input *Input) error {
	subject := fmt.Sprintf("Credit decision update for application %s", input.ApplicationID)

	body := fmt.Sprintf(
		"Your application %s has been assessed.\n\nEngine score: %.0f/100\n",
		input.ApplicationID, input.NormalizedScore,
	)
	if len(input.Reasons) > 0 {
		body += "\nRisk flags:\n- " + strings.Join(input.Reasons, "\n- ") + "\n"
	}

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{input.ApplicantEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	return err
}

func (h *Handler) sendReviewSMS(ctx context.Context, input *Input) error {
	message := fmt.Sprintf(
		"Manual review needed: application %s scored %.0f/100 (report %s)",
		input.ApplicationID, input.NormalizedScore, input.ReportID,
	)

	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(input.OfficerPhone),
		Message:     aws.String(message),
	})
	return err
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
