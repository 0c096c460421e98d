// internal/workers/scoring/persist-score-report/config.go
package persistscorereport

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
