package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLocalWindow_Reserve(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 15, 14, 30, 45, 0, time.UTC)}
	w := NewLocalWindow(2, time.Minute)
	w.now = clock.now

	_, ok := w.Reserve()
	assert.True(t, ok)
	clock.advance(10 * time.Second)
	_, ok = w.Reserve()
	assert.True(t, ok)

	clock.advance(5 * time.Second)
	wait, ok := w.Reserve()
	assert.False(t, ok)
	assert.Equal(t, 45*time.Second, wait)

	clock.advance(wait)
	_, ok = w.Reserve()
	assert.True(t, ok, "window should roll over at its boundary")
}

func TestLocalWindow_GetWindowBounds(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 15, 14, 30, 45, 0, time.UTC)}
	w := NewLocalWindow(1, time.Minute)
	w.now = clock.now

	t.Run("before first use", func(t *testing.T) {
		start, reset := w.getWindowBounds(clock.t)
		assert.Equal(t, clock.t, start)
		assert.Equal(t, clock.t.Add(time.Minute), reset)
	})

	w.Reserve()
	origin := clock.t

	t.Run("later windows are back to back", func(t *testing.T) {
		start, reset := w.getWindowBounds(origin.Add(150 * time.Second))
		assert.Equal(t, origin.Add(2*time.Minute), start)
		assert.Equal(t, origin.Add(3*time.Minute), reset)
	})
}
