package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tabswitch/internal/platform"
)

func TestClassifyError_PlatformSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"stale element", platform.ErrElementStale, ErrCodeStaleElement},
		{"wrapped stale element", fmt.Errorf("FindAll: %w", platform.ErrElementStale), ErrCodeStaleElement},
		{"pattern not supported", platform.ErrPatternNotSupported, ErrCodeCapabilityAbsent},
		{"process gone", platform.ErrProcessGone, ErrCodeProcessGone},
		{"context cancelled", context.Canceled, ErrCodeCancelled},
		{"deadline exceeded", context.DeadlineExceeded, ErrCodeTimeout},
		{"nil", nil, ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.expected {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClassifyError_StringFallback(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"rpc server", errors.New("FindAll failed: The RPC server is unavailable."), ErrCodeStaleElement},
		{"access denied", errors.New("OpenProcess: Access is denied."), ErrCodePermission},
		{"timeout", errors.New("operation timed out"), ErrCodeTimeout},
		{"busy", errors.New("provider busy"), ErrCodeBusy},
		{"unclassified", errors.New("something odd"), ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.expected {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWrapPlatformError(t *testing.T) {
	wrapped := WrapPlatformError("walk_window", platform.ErrElementStale)
	if wrapped.Code != ErrCodeStaleElement {
		t.Errorf("expected stale classification, got %v", wrapped.Code)
	}
	if wrapped.Op != "walk_window" {
		t.Errorf("expected op preserved, got %q", wrapped.Op)
	}

	// Existing classifications pass through untouched
	original := NewAutomationError("inner", errors.New("x"), ErrCodeBusy)
	rewrapped := WrapPlatformError("outer", fmt.Errorf("context: %w", original))
	if rewrapped != original {
		t.Error("expected existing AutomationError to pass through")
	}

	if WrapPlatformError("op", nil) != nil {
		t.Error("expected nil for nil error")
	}
}
