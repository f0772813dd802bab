package acquire

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func temporary(msg string) error {
	return fmt.Errorf("%w: %s", ErrTemporary, msg)
}

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return temporary("connection reset")
		}
		return nil
	}

	err := RetryWithBackoff(context.Background(), operation, 5, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := temporary("service unavailable")
	operation := func() error {
		attempts++
		return expectedErr
	}

	err := RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_PermanentErrorNotRetried(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return fmt.Errorf("%w: bad request", ErrPermanent)
	}

	err := RetryWithBackoff(context.Background(), operation, 5, 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermanent)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_UnclassifiedErrorNotRetried(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("boom")
	}

	err := RetryWithBackoff(context.Background(), operation, 5, 10*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	operation := func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return temporary("error")
	}

	err := RetryWithBackoff(ctx, operation, 10, 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "should return context.Canceled")
	assert.LessOrEqual(t, attempts, 2, "should stop when context is canceled")
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		err := RetryWithBackoff(context.Background(), func() error { return nil }, n, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	}
}

func TestRetryWithBackoff_ExponentialDelay(t *testing.T) {
	var times []time.Time
	operation := func() error {
		times = append(times, time.Now())
		return temporary("error")
	}

	baseDelay := 20 * time.Millisecond
	_ = RetryWithBackoff(context.Background(), operation, 3, baseDelay)

	require.Len(t, times, 3)
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), baseDelay)
	assert.GreaterOrEqual(t, times[2].Sub(times[1]), 2*baseDelay)
}

func TestStatusErrorClassification(t *testing.T) {
	tests := []struct {
		code      int
		retryable bool
	}{
		{400, false},
		{404, false},
		{410, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tt := range tests {
		err := fmt.Errorf("fetching: %w", &StatusError{StatusCode: tt.code, URL: "http://x/y"})
		assert.Equal(t, tt.retryable, IsRetryable(err), "status %d", tt.code)
		assert.Equal(t, !tt.retryable, errors.Is(err, ErrPermanent), "status %d", tt.code)
	}
	assert.Contains(t, (&StatusError{StatusCode: 503, URL: "http://x/y"}).Error(), "503 Service Unavailable")
}
