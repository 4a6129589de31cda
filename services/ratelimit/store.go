package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuotaStore is a shared counter with atomic consume-with-capacity-check
type QuotaStore interface {
	Consume(ctx context.Context) (Decision, error)
}

// DefaultQuotaKey is the resource key every instance shares
const DefaultQuotaKey = "llm_rpd:llm_api"

// consumeScript increments the counter and starts the window on first use.
// Returns {count, pttl}.
var consumeScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisQuotaStore keeps a fixed window counter in Redis so all instances share one budget
type RedisQuotaStore struct {
	client redis.Scripter
	key    string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisQuotaStore creates a store allowing limit points per window
func NewRedisQuotaStore(client redis.Scripter, key string, limit int64, window time.Duration) *RedisQuotaStore {
	if key == "" {
		key = DefaultQuotaKey
	}
	return &RedisQuotaStore{
		client: client,
		key:    key,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Consume takes one point. Over-limit calls still count, so a burst of
// rejected callers cannot reopen the window early.
func (s *RedisQuotaStore) Consume(ctx context.Context) (Decision, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.key}, s.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("quota store: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, errors.New("quota store: unexpected script reply")
	}

	used, ttl := res[0], res[1]
	remaining := s.limit - used
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   used <= s.limit,
		Used:      used,
		Limit:     s.limit,
		Remaining: remaining,
		ResetAt:   s.now().Add(time.Duration(ttl) * time.Millisecond),
	}, nil
}
