package services

import (
	"fmt"
	"strings"
	"sync/atomic"

	"tabswitch/internal/infrastructure/logging"
	"tabswitch/internal/platform"
	"tabswitch/internal/types"
)

const placeholderTitle = "New Tab"

// TabBuilder validates raw accessibility nodes and produces Tab values.
type TabBuilder struct {
	config *BrowserConfig
	logger logging.Logger
	seq    uint64
}

// NewTabBuilder creates a builder using the given allow-list config for
// title-suffix stripping.
func NewTabBuilder(config *BrowserConfig, logger logging.Logger) *TabBuilder {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &TabBuilder{
		config: config,
		logger: logger,
	}
}

// Build reads and validates one node, returning a populated Tab and
// true on success. Placeholder or unreadable nodes yield (zero, false);
// a failure here never aborts the caller's traversal, it only drops
// this one node.
func (tb *TabBuilder) Build(node platform.Element, window types.BrowserWindow, index int) (types.Tab, bool) {
	title, err := node.Name()
	if err != nil {
		tb.logger.Debug("Dropping unreadable tab node",
			"browser", window.Browser,
			"pid", window.ProcessID,
			"error", err.Error())
		return types.Tab{}, false
	}

	if title == "" || title == placeholderTitle || strings.Contains(title, "about:blank") {
		return types.Tab{}, false
	}

	// Selection is a best-effort read. A node without the pattern is
	// fine; a node that went stale mid-read is dropped like any other
	// unreadable node.
	active := false
	selected, supported, err := node.SelectionState()
	if err != nil {
		tb.logger.Debug("Dropping tab node with unreadable selection state",
			"browser", window.Browser,
			"pid", window.ProcessID,
			"error", err.Error())
		return types.Tab{}, false
	}
	if supported {
		active = selected
	}

	return types.Tab{
		ID:           tb.nextID(window.ProcessID, index),
		Title:        title,
		URLOrTitle:   tb.config.StripTitleSuffix(title),
		Active:       active,
		Index:        index,
		Browser:      window.Browser,
		ProcessID:    window.ProcessID,
		WindowHandle: window.Handle,
		Minimized:    window.Minimized,
		Node:         node,
	}, true
}

// nextID builds a pass-local identifier. The trailing sequence keeps
// ids distinct on the minimized path, where every index is 0.
func (tb *TabBuilder) nextID(pid uint32, index int) string {
	return fmt.Sprintf("%d:%d:%d", pid, index, atomic.AddUint64(&tb.seq, 1))
}
