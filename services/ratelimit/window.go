package ratelimit

import (
	"sync"
	"time"
)

// LocalWindow is an in-process fixed window counter
type LocalWindow struct {
	mu       sync.Mutex
	limit    int
	duration time.Duration
	start    time.Time
	used     int
	now      func() time.Time
}

// NewLocalWindow creates a window allowing limit points per duration
func NewLocalWindow(limit int, duration time.Duration) *LocalWindow {
	return &LocalWindow{
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Reserve consumes a point if one is free. Otherwise it returns how long
// until the window rolls over.
func (w *LocalWindow) Reserve() (time.Duration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	start, _ := w.getWindowBounds(now)
	if !start.Equal(w.start) {
		w.start = start
		w.used = 0
	}

	if w.used < w.limit {
		w.used++
		return 0, true
	}
	_, reset := w.getWindowBounds(now)
	return reset.Sub(now), false
}

// getWindowBounds returns the current window's start and reset times. The
// first window opens on first use and later windows follow back to back.
func (w *LocalWindow) getWindowBounds(now time.Time) (start time.Time, reset time.Time) {
	if w.start.IsZero() || now.Before(w.start) {
		return now, now.Add(w.duration)
	}
	elapsed := now.Sub(w.start)
	start = w.start.Add(elapsed - elapsed%w.duration)
	return start, start.Add(w.duration)
}
