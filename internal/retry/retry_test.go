package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient failure")
var errTerminal = errors.New("terminal failure")

// fastPolicy keeps test runs quick while exercising the full schedule.
func fastPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   time.Millisecond,
		Multiplier:  2,
		Jitter:      0.2,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), fastPolicy(), func(error) bool { return true }, func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), fastPolicy(), func(error) bool { return true }, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errTransient
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustionReturnsLastErrorUnchanged(t *testing.T) {
	calls := 0
	lastErr := errors.New("attempt-specific failure")
	_, err := Do(context.Background(), fastPolicy(), func(error) bool { return true }, func() (int, error) {
		calls++
		if calls == 4 {
			return 0, lastErr
		}
		return 0, errTransient
	})
	assert.Equal(t, 4, calls)
	// The final error must surface verbatim, not wrapped.
	assert.Same(t, lastErr, err) //nolint:testifylint // identity is the contract
}

func TestDoTerminalErrorShortCircuits(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(), func(err error) bool { return !errors.Is(err, errTerminal) }, func() (int, error) {
		calls++
		return 0, errTerminal
	})
	assert.Equal(t, 1, calls)
	assert.Same(t, errTerminal, err)
}

func TestDoNotifyCalledPerRetry(t *testing.T) {
	p := fastPolicy()
	var notified int
	p.Notify = func(err error, next time.Duration) {
		notified++
		assert.Equal(t, errTransient, err)
		assert.Positive(t, next)
	}

	calls := 0
	_, err := Do(context.Background(), p, func(error) bool { return true }, func() (int, error) {
		calls++
		return 0, errTransient
	})
	assert.Error(t, err)
	assert.Equal(t, 4, calls)
	// Notify fires before each wait, so one fewer than attempts.
	assert.Equal(t, 3, notified)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := fastPolicy()
	p.BaseDelay = time.Hour // force a long wait so cancellation wins

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, p, func(error) bool { return true }, func() (int, error) {
			calls++
			return 0, errTransient
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}
