package ratelimit

import (
	"fmt"
	"time"
)

// RateLimitWindow represents the time window for rate limiting
type RateLimitWindow string

const (
	WindowMinute RateLimitWindow = "minute"
	WindowDay    RateLimitWindow = "day"
)

// Decision is the outcome of consuming one point from a quota window
type Decision struct {
	Allowed   bool
	Used      int64
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// QuotaExceededError is returned when the long window has no capacity left.
// Callers may retry once ResetAt has passed.
type QuotaExceededError struct {
	Window  RateLimitWindow
	Limit   int64
	ResetAt time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota of %d requests exceeded, resets at %s", e.Window, e.Limit, e.ResetAt.UTC().Format(time.RFC3339))
}

// RetryAfter returns the time left until the window resets
func (e *QuotaExceededError) RetryAfter(now time.Time) time.Duration {
	if d := e.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
