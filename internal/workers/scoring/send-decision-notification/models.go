// internal/workers/scoring/send-decision-notification/models.go
package senddecisionnotification

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

type Input struct {
	ApplicationID   string   `json:"applicationId"`
	ReportID        string   `json:"reportId"`
	NormalizedScore float64  `json:"loanEngineScoreNormalized"`
	Reasons         []string `json:"reasons"`
	ApplicantEmail  string   `json:"applicantEmail,omitempty"`
	OfficerPhone    string   `json:"officerPhone,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"`
}
