package retry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkstash-app/linkstash/internal/retry"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	out, err := retry.Do(context.Background(), retry.Config{MaxAttempts: 4}, func() (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	out, err := retry.Do(context.Background(), retry.Config{MaxAttempts: 4}, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), retry.Config{MaxAttempts: 4}, func() (int, error) {
		calls++
		return 0, errors.New("always fails")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrAttemptsExceeded)
	assert.Equal(t, 4, calls)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	_, err := retry.Do(context.Background(), retry.Config{
		MaxAttempts: 4,
		IsRetryable: func(err error) bool { return !errors.Is(err, fatal) },
	}, func() (int, error) {
		calls++
		return 0, fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := retry.Do(ctx, retry.Config{MaxAttempts: 4}, func() (int, error) {
		t.Fatal("fn should not run with a cancelled context")
		return 0, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}
