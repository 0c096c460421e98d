// internal/workers/scoring/index-score-report/config.go
package indexscorereport

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Index:   "score-reports",
	}
}
