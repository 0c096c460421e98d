// internal/workers/scoring/send-decision-notification/config.go
package senddecisionnotification

import "time"

type Config struct {
	Timeout         time.Duration
	EmailEnabled    bool
	SMSEnabled      bool
	FromEmail       string
	ReviewThreshold float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         15 * time.Second,
		EmailEnabled:    true,
		SMSEnabled:      true,
		FromEmail:       "decisions@loan-engine.example.com",
		ReviewThreshold: 40,
	}
}
