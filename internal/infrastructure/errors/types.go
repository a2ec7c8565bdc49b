package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode classifies failures coming out of the window and
// accessibility layer
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeStaleElement
	ErrCodeCapabilityAbsent
	ErrCodeProcessGone
	ErrCodeCancelled
	ErrCodeTimeout
	ErrCodeBusy
	ErrCodeValidation
	ErrCodePermission
	ErrCodeInternal
)

// String returns a string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeStaleElement:
		return "STALE_ELEMENT"
	case ErrCodeCapabilityAbsent:
		return "CAPABILITY_ABSENT"
	case ErrCodeProcessGone:
		return "PROCESS_GONE"
	case ErrCodeCancelled:
		return "CANCELLED"
	case ErrCodeTimeout:
		return "TIMEOUT"
	case ErrCodeBusy:
		return "BUSY"
	case ErrCodeValidation:
		return "VALIDATION"
	case ErrCodePermission:
		return "PERMISSION"
	case ErrCodeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// AutomationError represents a window/accessibility-layer error with
// context and retry information
type AutomationError struct {
	Op        string            // operation name
	Err       error             // underlying error
	Code      ErrorCode         // error classification
	Retryable bool              // whether the error is retryable
	Context   map[string]string // additional context information
	Timestamp time.Time         // when the error occurred
}

func (e *AutomationError) Error() string {
	// Guard against nil receiver
	if e == nil {
		return "automation error"
	}

	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	if e.Code != ErrCodeUnknown {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code.String()))
	}

	if e.Retryable {
		parts = append(parts, "retryable=true")
	}

	// Add context with deterministic order (treat nil Context as empty)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
		}
	}

	contextStr := ""
	if len(parts) > 0 {
		contextStr = fmt.Sprintf(" [%s]", strings.Join(parts, " "))
	}

	if e.Err != nil {
		return e.Err.Error() + contextStr
	}
	return "automation error" + contextStr
}

func (e *AutomationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements error matching for errors.Is
func (e *AutomationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*AutomationError); ok {
		return e.Code == t.Code
	}
	// Also check if the target matches the underlying/wrapped error
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable
func (e *AutomationError) IsRetryable() bool {
	if e == nil {
		return false
	}
	return e.Retryable
}

// GetCode returns the error code as a string (for logging interface compatibility)
func (e *AutomationError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// GetContext returns the error context (for logging interface compatibility)
func (e *AutomationError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return make(map[string]string)
	}
	return e.Context
}

// GetTimestamp returns the error timestamp (for logging interface compatibility)
func (e *AutomationError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// WithContext adds context information to the error by mutating the receiver.
// Not concurrency-safe; for errors already published to other goroutines
// use NewAutomationErrorWithContext instead.
func (e *AutomationError) WithContext(key, value string) *AutomationError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// NewAutomationError creates a new automation error with the given parameters
func NewAutomationError(op string, err error, code ErrorCode) *AutomationError {
	return &AutomationError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: isRetryableError(code, err),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewAutomationErrorWithContext creates a new automation error with additional context
func NewAutomationErrorWithContext(op string, err error, code ErrorCode, context map[string]string) *AutomationError {
	autoErr := NewAutomationError(op, err, code)
	if context != nil {
		// Clone the context map to avoid external mutation and data races
		autoErr.Context = make(map[string]string, len(context))
		for k, v := range context {
			autoErr.Context[k] = v
		}
	}
	return autoErr
}

// isRetryableError determines if an error is retryable based on its code.
// Stale elements and vanished processes are never retryable: the thing
// being operated on no longer exists. Busy providers and timeouts are.
func isRetryableError(code ErrorCode, err error) bool {
	switch code {
	case ErrCodeBusy, ErrCodeTimeout:
		return true
	case ErrCodeStaleElement, ErrCodeCapabilityAbsent, ErrCodeProcessGone,
		ErrCodeCancelled, ErrCodeValidation, ErrCodePermission, ErrCodeInternal:
		return false
	default:
		// For unknown errors, check the underlying error message
		if err != nil {
			errStr := strings.ToLower(err.Error())
			return strings.Contains(errStr, "temporary") ||
				strings.Contains(errStr, "retry") ||
				strings.Contains(errStr, "busy")
		}
		return false
	}
}

// Error classification functions

// IsStaleElement checks if the error reports a vanished UI element
func IsStaleElement(err error) bool {
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr.Code == ErrCodeStaleElement
	}
	return false
}

// IsCapabilityAbsent checks if the error reports a missing interaction pattern
func IsCapabilityAbsent(err error) bool {
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr.Code == ErrCodeCapabilityAbsent
	}
	return false
}

// IsProcessGone checks if the error reports an exited process
func IsProcessGone(err error) bool {
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr.Code == ErrCodeProcessGone
	}
	return false
}

// IsCancelled checks if the error reports an explicit cancellation
func IsCancelled(err error) bool {
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr.Code == ErrCodeCancelled
	}
	return false
}

// IsTimeout checks if the error is a "timeout" error
func IsTimeout(err error) bool {
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr.Code == ErrCodeTimeout
	}
	return false
}

// IsBusy checks if the error is a busy/contended-provider error
func IsBusy(err error) bool {
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr.Code == ErrCodeBusy
	}
	return false
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr.Code == ErrCodeValidation
	}
	return false
}

// IsRetryable checks if the error is retryable
func IsRetryable(err error) bool {
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr.Retryable
	}
	return false
}
