package errors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// RetryLogger defines the interface for logging retry operations
type RetryLogger interface {
	Printf(format string, v ...interface{})
}

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxAttempts     int           // Maximum number of retry attempts
	InitialDelay    time.Duration // Initial delay between retries
	MaxDelay        time.Duration // Maximum delay between retries
	BackoffFactor   float64       // Exponential backoff factor
	Jitter          bool          // Whether to add jitter to delays
	RetryableErrors []ErrorCode   // Specific error codes to retry
}

// Package-level logger variable that can be set by callers
var retryLogger RetryLogger

// DefaultRetryConfig returns a retry configuration with sensible defaults
// for contended accessibility providers. Stale-element failures are
// deliberately not retried: the element will not come back.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      1 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
		RetryableErrors: []ErrorCode{
			ErrCodeBusy,
			ErrCodeTimeout,
		},
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func() error

// SetRetryLogger sets the package-level logger for retry operations
func SetRetryLogger(logger RetryLogger) {
	retryLogger = logger
}

// logRetryMessage logs a retry message using the configured logger
func logRetryMessage(format string, v ...interface{}) {
	if retryLogger != nil {
		retryLogger.Printf(format, v...)
	}
}

// withRetryImpl is the core retry implementation used by both public functions
func withRetryImpl(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		// Execute the operation
		err := operation()
		if err == nil {
			if attempt > 0 && operationName != "" {
				logRetryMessage("Automation operation '%s' succeeded after %d attempts", operationName, attempt+1)
			}
			return nil // Success
		}

		lastErr = err

		// Check if we should retry this error
		if !shouldRetry(err, config) {
			if operationName != "" {
				logRetryMessage("Automation operation '%s' failed with non-retryable error: %v", operationName, err)
			}
			return err // Non-retryable error
		}

		// Don't sleep after the last attempt
		if attempt == config.MaxAttempts-1 {
			break
		}

		// Calculate delay for next attempt
		delay := calculateDelay(attempt, config)

		if operationName != "" {
			logRetryMessage("Automation operation '%s' failed (attempt %d/%d), retrying in %v: %v",
				operationName, attempt+1, config.MaxAttempts, delay, err)
		} else {
			logRetryMessage("Automation operation failed (attempt %d/%d), retrying in %v: %v",
				attempt+1, config.MaxAttempts, delay, err)
		}

		// Wait before retrying, respecting context cancellation
		select {
		case <-ctx.Done():
			if operationName != "" {
				return fmt.Errorf("operation '%s' cancelled during retry: %w", operationName, ctx.Err())
			}
			return ctx.Err()
		case <-time.After(delay):
			// Continue to next attempt
		}
	}

	// All attempts failed
	if operationName != "" {
		return fmt.Errorf("operation '%s' failed after %d attempts: %w", operationName, config.MaxAttempts, lastErr)
	}
	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

// WithRetry executes an operation with retry logic
func WithRetry(ctx context.Context, config *RetryConfig, operation RetryableOperation) error {
	return withRetryImpl(ctx, config, operation, "")
}

// shouldRetry determines if an error should be retried based on configuration
func shouldRetry(err error, config *RetryConfig) bool {
	var autoErr *AutomationError
	if !errors.As(err, &autoErr) {
		return false // Only retry classified automation errors
	}

	// Check if error is generally retryable
	if !autoErr.IsRetryable() {
		return false
	}

	// Check if error code is in the retryable list
	return slices.Contains(config.RetryableErrors, autoErr.Code)
}

// calculateDelay calculates the delay for the next retry attempt
func calculateDelay(attempt int, config *RetryConfig) time.Duration {
	// Calculate exponential backoff
	multiplier := 1.0
	for range attempt {
		multiplier *= config.BackoffFactor
	}

	delay := time.Duration(float64(config.InitialDelay) * multiplier)

	// Add jitter if enabled (before applying max delay limit)
	if config.Jitter && delay > 0 {
		// Add up to 25% jitter
		jitterAmount := time.Duration(float64(delay) * 0.25)
		if jitterAmount > 0 {
			delay += time.Duration(time.Now().UnixNano() % int64(jitterAmount))
		}
	}

	// Apply maximum delay limit after jitter
	delay = min(delay, config.MaxDelay)

	return delay
}

// WithRetryContext executes an operation with retry logic and custom context
func WithRetryContext(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	return withRetryImpl(ctx, config, operation, operationName)
}

// RetryQuick provides a quick retry configuration for interactive
// actions, where a second attempt against a momentarily busy provider is
// worthwhile but the user is waiting.
func RetryQuick(ctx context.Context, operation RetryableOperation) error {
	config := &RetryConfig{
		MaxAttempts:   2,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      500 * time.Millisecond,
		BackoffFactor: 2.0,
		Jitter:        false,
		RetryableErrors: []ErrorCode{
			ErrCodeBusy,
			ErrCodeTimeout,
		},
	}
	return WithRetry(ctx, config, operation)
}
