package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"github.com/ClareAI/astra-outbound-caller/pkg/redis"
	"go.uber.org/zap"
)

// CallCache remembers which lead each dialed call belongs to, keyed by the
// telephony call SID. Entries expire after ttl.
type CallCache struct {
	redis redis.RedisServiceInterface
	ttl   time.Duration
}

// NewCallCache creates a call-attempt store on top of Redis
func NewCallCache(r redis.RedisServiceInterface, ttl time.Duration) *CallCache {
	return &CallCache{redis: r, ttl: ttl}
}

// SaveAttempt stores attempt under its call SID
func (c *CallCache) SaveAttempt(ctx context.Context, attempt domain.CallAttempt) error {
	if attempt.CallSID == "" {
		return fmt.Errorf("call attempt has no call SID")
	}

	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to marshal call attempt: %w", err)
	}

	key := c.redis.GenerateKey(redis.CALL_ATTEMPT, attempt.CallSID)
	if err := c.redis.SetValue(ctx, key, string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to store call attempt: %w", err)
	}

	logger.Debug(ctx, "Stored call attempt", zap.String("call_sid", attempt.CallSID), zap.Duration("ttl", c.ttl))
	return nil
}

// LookupAttempt returns the attempt for callSID. found is false when the
// entry is missing or expired.
func (c *CallCache) LookupAttempt(ctx context.Context, callSID string) (attempt domain.CallAttempt, found bool, err error) {
	if callSID == "" {
		return domain.CallAttempt{}, false, nil
	}

	val, err := c.redis.GetValue(ctx, c.redis.GenerateKey(redis.CALL_ATTEMPT, callSID))
	if err != nil {
		if redis.IsNotExist(err) {
			return domain.CallAttempt{}, false, nil
		}
		return domain.CallAttempt{}, false, fmt.Errorf("failed to load call attempt: %w", err)
	}

	if err := json.Unmarshal([]byte(val), &attempt); err != nil {
		return domain.CallAttempt{}, false, fmt.Errorf("failed to unmarshal call attempt: %w", err)
	}
	return attempt, true, nil
}
