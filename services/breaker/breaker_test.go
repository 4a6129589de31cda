package breaker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/upb/llm-datagen/internal/observability"
	"github.com/upb/llm-datagen/services/providers"
)

type fakeStrategy struct {
	name  string
	calls atomic.Int32

	mu    sync.Mutex
	fail  bool
	delay time.Duration
	gate  chan struct{}
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeStrategy) Generate(ctx context.Context, prompt string) (*providers.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	fail, delay, gate := f.fail, f.delay, f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, providers.NewProviderError(f.name, providers.CodeRequestFailed, "boom", 500, true, nil)
	}
	return &providers.Result{Text: "ok:" + prompt, Provider: f.name}, nil
}

func testConfig() Config {
	return Config{
		ErrorThreshold: 0.10,
		MinRequests:    1,
		Window:         time.Minute,
		Cooldown:       50 * time.Millisecond,
		CallTimeout:    time.Second,
	}
}

func TestBreaker_PassesThroughWhenClosed(t *testing.T) {
	strategy := &fakeStrategy{name: "gemini"}
	b := New(strategy, testConfig(), zaptest.NewLogger(t), nil)

	res, err := b.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok:hi", res.Text)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "gemini", b.Name())
}

func TestBreaker_OpensAboveThreshold(t *testing.T) {
	strategy := &fakeStrategy{name: "openai"}
	cfg := testConfig()
	cfg.MinRequests = 5
	cfg.ErrorThreshold = 0.5
	b := New(strategy, cfg, zaptest.NewLogger(t), nil)

	// 4 successes then failures: ratio crosses 0.5 only after enough failures
	for i := 0; i < 4; i++ {
		_, err := b.Generate(context.Background(), "p")
		require.NoError(t, err)
	}
	strategy.setFail(true)
	for i := 0; i < 4; i++ {
		_, err := b.Generate(context.Background(), "p")
		require.Error(t, err)
		assert.Equal(t, StateClosed, b.State(), "ratio %d/%d should not trip", i+1, i+5)
	}

	_, err := b.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_OpenRejectsWithoutCallingProvider(t *testing.T) {
	strategy := &fakeStrategy{name: "gemini", fail: true}
	b := New(strategy, testConfig(), zaptest.NewLogger(t), nil)

	_, err := b.Generate(context.Background(), "p")
	require.Error(t, err)
	require.Equal(t, StateOpen, b.State())

	before := strategy.calls.Load()
	start := time.Now()
	_, err = b.Generate(context.Background(), "p")

	var openErr *CircuitOpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, "gemini", openErr.Provider)
	assert.Equal(t, before, strategy.calls.Load())
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestBreaker_HalfOpenAdmitsExactlyOneTrial(t *testing.T) {
	strategy := &fakeStrategy{name: "gemini", fail: true}
	b := New(strategy, testConfig(), zaptest.NewLogger(t), nil)

	_, _ = b.Generate(context.Background(), "p")
	require.Equal(t, StateOpen, b.State())

	time.Sleep(70 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, b.State())

	gate := make(chan struct{})
	strategy.mu.Lock()
	strategy.fail = false
	strategy.gate = gate
	strategy.mu.Unlock()
	before := strategy.calls.Load()

	const callers = 5
	var wg sync.WaitGroup
	var succeeded, rejected atomic.Int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Generate(context.Background(), "p")
			var openErr *CircuitOpenError
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.As(err, &openErr):
				rejected.Add(1)
			}
		}()
	}

	// Let the rejected callers return before releasing the trial
	require.Eventually(t, func() bool { return rejected.Load() == callers-1 }, time.Second, 5*time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, before+1, strategy.calls.Load())
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	strategy := &fakeStrategy{name: "gemini", fail: true}
	b := New(strategy, testConfig(), zaptest.NewLogger(t), nil)

	_, _ = b.Generate(context.Background(), "p")
	time.Sleep(70 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	_, err := b.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_TimeoutCountsAsFailure(t *testing.T) {
	strategy := &fakeStrategy{name: "slow", delay: time.Second}
	cfg := testConfig()
	cfg.CallTimeout = 20 * time.Millisecond
	b := New(strategy, cfg, zaptest.NewLogger(t), nil)

	start := time.Now()
	_, err := b.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrCallTimeout)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_CallerCancellationNotCounted(t *testing.T) {
	strategy := &fakeStrategy{name: "slow", delay: time.Second}
	b := New(strategy, testConfig(), zaptest.NewLogger(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := b.Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_CancelledTrialDoesNotClose(t *testing.T) {
	strategy := &fakeStrategy{name: "gemini", fail: true}
	b := New(strategy, testConfig(), zaptest.NewLogger(t), nil)

	_, _ = b.Generate(context.Background(), "p")
	require.Equal(t, StateOpen, b.State())
	time.Sleep(70 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	strategy.mu.Lock()
	strategy.delay = time.Second
	strategy.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := b.Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEqual(t, StateClosed, b.State())
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_ReportsStateToMetrics(t *testing.T) {
	metrics := observability.NewPrometheusMetrics()
	strategy := &fakeStrategy{name: "gemini", fail: true}
	b := New(strategy, testConfig(), zaptest.NewLogger(t), metrics)

	_, _ = b.Generate(context.Background(), "p")
	require.Equal(t, StateOpen, b.State())

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "llm_circuit_breaker_state" {
			found = true
			assert.Equal(t, float64(StateOpen), f.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0.10, cfg.ErrorThreshold)
	assert.Equal(t, 30*time.Second, cfg.Cooldown)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
}
