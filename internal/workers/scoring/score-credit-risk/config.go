// internal/workers/scoring/score-credit-risk/config.go
package scorecreditrisk

import "time"

type Config struct {
	Timeout       time.Duration
	LookupTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		LookupTimeout: 8 * time.Second,
	}
}
