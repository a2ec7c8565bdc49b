package errors

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 3 {
		t.Errorf("Expected MaxAttempts to be 3, got %d", config.MaxAttempts)
	}

	if config.InitialDelay != 50*time.Millisecond {
		t.Errorf("Expected InitialDelay to be 50ms, got %v", config.InitialDelay)
	}

	if config.MaxDelay != 1*time.Second {
		t.Errorf("Expected MaxDelay to be 1s, got %v", config.MaxDelay)
	}

	if config.BackoffFactor != 2.0 {
		t.Errorf("Expected BackoffFactor to be 2.0, got %f", config.BackoffFactor)
	}

	if !config.Jitter {
		t.Error("Expected Jitter to be true")
	}

	expectedCodes := []ErrorCode{ErrCodeBusy, ErrCodeTimeout}
	if len(config.RetryableErrors) != len(expectedCodes) {
		t.Errorf("Expected %d retryable error codes, got %d", len(expectedCodes), len(config.RetryableErrors))
	}
}

func TestWithRetry_Success(t *testing.T) {
	ctx := context.Background()
	config := DefaultRetryConfig()

	callCount := 0
	operation := func() error {
		callCount++
		return nil // Success on first try
	}

	err := WithRetry(ctx, config, operation)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if callCount != 1 {
		t.Errorf("Expected operation to be called once, got %d", callCount)
	}
}

func TestWithRetry_SuccessAfterRetries(t *testing.T) {
	ctx := context.Background()
	config := DefaultRetryConfig()
	config.InitialDelay = 1 * time.Millisecond // Speed up test
	config.Jitter = false                      // Remove jitter for predictable timing

	callCount := 0
	operation := func() error {
		callCount++
		if callCount < 3 {
			return NewAutomationError("activate_tab", errors.New("provider busy"), ErrCodeBusy)
		}
		return nil // Success on third try
	}

	err := WithRetry(ctx, config, operation)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if callCount != 3 {
		t.Errorf("Expected operation to be called 3 times, got %d", callCount)
	}
}

func TestWithRetry_NonRetryableError(t *testing.T) {
	ctx := context.Background()
	config := DefaultRetryConfig()

	callCount := 0
	operation := func() error {
		callCount++
		// Stale elements never come back, so this must not be retried
		return NewAutomationError("read_name", errors.New("element vanished"), ErrCodeStaleElement)
	}

	err := WithRetry(ctx, config, operation)
	if err == nil {
		t.Error("Expected error for non-retryable failure")
	}

	if callCount != 1 {
		t.Errorf("Expected operation to be called once, got %d", callCount)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	ctx := context.Background()
	config := DefaultRetryConfig()
	config.InitialDelay = 1 * time.Millisecond
	config.Jitter = false

	callCount := 0
	operation := func() error {
		callCount++
		return NewAutomationError("activate_tab", errors.New("provider busy"), ErrCodeBusy)
	}

	err := WithRetry(ctx, config, operation)
	if err == nil {
		t.Error("Expected error after exhausting attempts")
	}

	if callCount != config.MaxAttempts {
		t.Errorf("Expected %d attempts, got %d", config.MaxAttempts, callCount)
	}

	if !strings.Contains(err.Error(), "failed after") {
		t.Errorf("Expected exhaustion message, got %v", err)
	}
}

func TestWithRetry_PlainErrorNotRetried(t *testing.T) {
	ctx := context.Background()

	callCount := 0
	operation := func() error {
		callCount++
		return errors.New("unclassified failure")
	}

	err := WithRetry(ctx, DefaultRetryConfig(), operation)
	if err == nil {
		t.Error("Expected error")
	}
	if callCount != 1 {
		t.Errorf("Plain errors must not be retried, got %d calls", callCount)
	}
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := DefaultRetryConfig()
	config.InitialDelay = 100 * time.Millisecond
	config.Jitter = false

	callCount := 0
	operation := func() error {
		callCount++
		if callCount == 1 {
			cancel() // Cancel during the first retry delay
		}
		return NewAutomationError("activate_tab", errors.New("provider busy"), ErrCodeBusy)
	}

	err := WithRetry(ctx, config, operation)
	if err == nil {
		t.Error("Expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected a single attempt before cancellation, got %d", callCount)
	}
}

func TestWithRetryContext_LogsOperationName(t *testing.T) {
	var logged []string
	SetRetryLogger(logFunc(func(format string, v ...interface{}) {
		logged = append(logged, format)
	}))
	defer SetRetryLogger(nil)

	ctx := context.Background()
	config := DefaultRetryConfig()
	config.InitialDelay = 1 * time.Millisecond
	config.Jitter = false

	callCount := 0
	operation := func() error {
		callCount++
		if callCount < 2 {
			return NewAutomationError("op", errors.New("provider busy"), ErrCodeBusy)
		}
		return nil
	}

	if err := WithRetryContext(ctx, config, operation, "activate_tab"); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if len(logged) == 0 {
		t.Error("Expected retry attempts to be logged")
	}
}

func TestRetryQuick_TwoAttempts(t *testing.T) {
	ctx := context.Background()

	callCount := 0
	operation := func() error {
		callCount++
		return NewAutomationError("op", errors.New("provider busy"), ErrCodeBusy)
	}

	if err := RetryQuick(ctx, operation); err == nil {
		t.Error("Expected error")
	}
	if callCount != 2 {
		t.Errorf("Expected 2 attempts, got %d", callCount)
	}
}

func TestCalculateDelay_RespectsMax(t *testing.T) {
	config := &RetryConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      300 * time.Millisecond,
		BackoffFactor: 10.0,
		Jitter:        false,
	}

	if d := calculateDelay(0, config); d != 100*time.Millisecond {
		t.Errorf("attempt 0 delay = %v", d)
	}
	if d := calculateDelay(3, config); d != 300*time.Millisecond {
		t.Errorf("attempt 3 delay should cap at MaxDelay, got %v", d)
	}
}

// logFunc adapts a function to the RetryLogger interface
type logFunc func(format string, v ...interface{})

func (f logFunc) Printf(format string, v ...interface{}) {
	f(format, v...)
}
