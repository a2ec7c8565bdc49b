package errors

import (
	"context"
	"errors"
	"strings"

	"tabswitch/internal/platform"
)

// ClassifyError classifies window/accessibility-layer errors into
// automation error codes
func ClassifyError(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}

	// Platform sentinels first for the most accurate classification
	switch {
	case errors.Is(err, platform.ErrElementStale):
		return ErrCodeStaleElement
	case errors.Is(err, platform.ErrPatternNotSupported):
		return ErrCodeCapabilityAbsent
	case errors.Is(err, platform.ErrProcessGone):
		return ErrCodeProcessGone
	}

	// Handle standard library errors
	switch {
	case errors.Is(err, context.Canceled):
		return ErrCodeCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	}

	// Fall back to string-based classification for COM-layer failures
	// that arrive without a typed wrapper
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "no longer available"):
		return ErrCodeStaleElement
	case strings.Contains(errStr, "rpc server is unavailable"):
		return ErrCodeStaleElement
	case strings.Contains(errStr, "element not available"):
		return ErrCodeStaleElement
	case strings.Contains(errStr, "pattern"):
		return ErrCodeCapabilityAbsent
	case strings.Contains(errStr, "access is denied"):
		return ErrCodePermission
	case strings.Contains(errStr, "permission denied"):
		return ErrCodePermission
	case strings.Contains(errStr, "timed out"):
		return ErrCodeTimeout
	case strings.Contains(errStr, "timeout"):
		return ErrCodeTimeout
	case strings.Contains(errStr, "busy"):
		return ErrCodeBusy
	default:
		return ErrCodeUnknown
	}
}

// WrapPlatformError wraps a platform-layer error into a classified
// AutomationError, preserving an existing classification if present.
func WrapPlatformError(op string, err error) *AutomationError {
	if err == nil {
		return nil
	}
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return autoErr
	}
	return NewAutomationError(op, err, ClassifyError(err))
}
