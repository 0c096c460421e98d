// Package errors provides standardized error handling for the loan scoring workflow.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeBureauUnavailable ErrorCode = "BUREAU_UNAVAILABLE"
	ErrCodeBureauTimeout     ErrorCode = "BUREAU_TIMEOUT"

	ErrCodeFactorUnavailable     ErrorCode = "FACTOR_UNAVAILABLE"
	ErrCodeRegistryMisconfigured ErrorCode = "REGISTRY_MISCONFIGURED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeReportInsertFailed       ErrorCode = "REPORT_INSERT_FAILED"
	ErrCodeDuplicateReport          ErrorCode = "DUPLICATE_REPORT"

	ErrCodeIndexingFailed ErrorCode = "INDEXING_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable input validation error.
// The bureau lookup is never attempted when this is raised.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Applicant data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBureauUnavailableError creates a retryable bureau transport error.
func NewBureauUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBureauUnavailable,
		Message:   "Credit bureau lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBureauTimeoutError creates a retryable bureau timeout error.
func NewBureauTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeBureauTimeout,
		Message:   "Credit bureau lookup timed out",
		Details:   "lookup exceeded the configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFactorUnavailableError records a degraded factor computation. It is never
// surfaced as a job failure; the factor's contribution is zeroed instead.
func NewFactorUnavailableError(factorName, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFactorUnavailable,
		Message:   fmt.Sprintf("Factor '%s' unavailable", factorName),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryMisconfiguredError creates the startup-only fatal configuration error.
func NewRegistryMisconfiguredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryMisconfigured,
		Message:   "Scorer registry weight total mismatch",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportInsertFailedError creates a retryable report persistence error.
func NewReportInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportInsertFailed,
		Message:   "Score report insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateReportError creates a non-retryable duplicate report error.
func NewDuplicateReportError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateReport,
		Message:   "Score report already exists for application",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a retryable audit indexing error.
func NewIndexingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexingFailed,
		Message:   "Score report indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(resource, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource '%s' not found", resource),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:         "VALIDATION_FAILED",
	ErrCodeBureauUnavailable:        "BUREAU_UNAVAILABLE",
	ErrCodeBureauTimeout:            "BUREAU_TIMEOUT",
	ErrCodeFactorUnavailable:        "FACTOR_UNAVAILABLE",
	ErrCodeRegistryMisconfigured:    "REGISTRY_MISCONFIGURED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeReportInsertFailed:       "REPORT_INSERT_FAILED",
	ErrCodeDuplicateReport:          "DUPLICATE_REPORT",
	ErrCodeIndexingFailed:           "INDEXING_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeBureauUnavailable,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeReportInsertFailed,
		ErrCodeIndexingFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeBureauTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "BUREAU"):
		return "BUREAU"
	case strings.Contains(codeStr, "FACTOR") || strings.Contains(codeStr, "REGISTRY"):
		return "SCORING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "REPORT"):
		return "DATABASE"
	case strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
