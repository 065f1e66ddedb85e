package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testPolicy(attempts int) (Policy, *observer.ObservedLogs, *[]time.Duration) {
	core, logs := observer.New(zapcore.DebugLevel)
	var slept []time.Duration
	p := Policy{
		Attempts: attempts,
		Delay:    time.Second,
		Logger:   zap.New(core),
		sleep:    func(d time.Duration) { slept = append(slept, d) },
	}
	return p, logs, &slept
}

func TestDoSucceedsOnNthAttempt(t *testing.T) {
	for n := 1; n <= ChatAttempts; n++ {
		p, logs, slept := testPolicy(ChatAttempts)

		calls := 0
		got, err := Do(context.Background(), p, "gemini_response", func(context.Context) (string, error) {
			calls++
			if calls < n {
				return "", errors.New("upstream unavailable")
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, n, calls)

		retries := logs.FilterMessage("retrying call").All()
		assert.Len(t, retries, n-1)
		for _, entry := range retries {
			assert.Equal(t, "gemini_response", entry.ContextMap()["operation"])
		}
		assert.Len(t, *slept, n-1)
		assert.Zero(t, logs.FilterMessage("retry attempts exhausted").Len())
	}
}

func TestDoExhaustion(t *testing.T) {
	p, logs, slept := testPolicy(IndexingAttempts)
	cause := errors.New("quota exceeded")

	calls := 0
	_, err := Do(context.Background(), p, "embed", func(context.Context) ([]float32, error) {
		calls++
		return nil, cause
	})

	assert.ErrorIs(t, err, ErrRetryTimeout)
	assert.NotErrorIs(t, err, cause)
	assert.Equal(t, IndexingAttempts, calls)
	assert.Len(t, *slept, IndexingAttempts-1)
	assert.Equal(t, IndexingAttempts-1, logs.FilterMessage("retrying call").Len())
	assert.Equal(t, 1, logs.FilterMessage("retry attempts exhausted").Len())
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	p, _, _ := testPolicy(0)
	calls := 0
	_, err := Do(context.Background(), p, "op", func(context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	assert.ErrorIs(t, err, ErrRetryTimeout)
	assert.Equal(t, 1, calls)
}

func TestDoPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	p, _, _ := testPolicy(1)

	got, err := Do(ctx, p, "op", func(ctx context.Context) (string, error) {
		return ctx.Value(key{}).(string), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestPresetPolicies(t *testing.T) {
	assert.Equal(t, 5, ChatPolicy(nil).Attempts)
	assert.Equal(t, 3, IndexingPolicy(nil).Attempts)
	assert.Equal(t, time.Second, ChatPolicy(nil).Delay)
}
