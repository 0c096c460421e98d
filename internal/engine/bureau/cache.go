// internal/engine/bureau/cache.go
package bureau

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-engine/internal/common/database"
	"loan-engine/internal/common/logger"
	"loan-engine/internal/common/metrics"
	"loan-engine/internal/engine/applicant"
)

// CachedLookup decorates a LookupService with a Redis read-through cache
// keyed on identity number. Cache failures are logged and fall through to
// the underlying lookup; the cache is an optimization, not a dependency.
type CachedLookup struct {
	inner  LookupService
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedLookup(inner LookupService, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedLookup {
	return &CachedLookup{
		inner:  inner,
		redis:  redis,
		ttl:    ttl,
		logger: log,
	}
}

func cacheKey(identityNumber string) string {
	return fmt.Sprintf("bureau:report:%s", identityNumber)
}

func (c *CachedLookup) Lookup(ctx context.Context, profile *applicant.Profile) (map[string]interface{}, error) {
	key := cacheKey(profile.IdentityNumber)

	if cached, err := c.redis.Get(ctx, key); err == nil {
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(cached), &payload); err == nil {
			metrics.BureauLookups.WithLabelValues("hit").Inc()
			c.logger.Debug("bureau cache hit", map[string]interface{}{
				"identityNumber": profile.IdentityNumber,
			})
			return payload, nil
		}
		// Corrupt entry: drop it and re-fetch.
		_ = c.redis.Del(ctx, key)
	}

	metrics.BureauLookups.WithLabelValues("miss").Inc()

	payload, err := c.inner.Lookup(ctx, profile)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(payload); err == nil {
		if err := c.redis.Set(ctx, key, string(data), c.ttl); err != nil {
			c.logger.Warn("failed to cache bureau payload", map[string]interface{}{
				"identityNumber": profile.IdentityNumber,
				"error":          err.Error(),
			})
		}
	}

	return payload, nil
}
