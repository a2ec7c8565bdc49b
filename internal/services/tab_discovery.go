package services

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tabswitch/internal/infrastructure/errors"
	"tabswitch/internal/infrastructure/logging"
	"tabswitch/internal/platform"
	"tabswitch/internal/types"
)

// TabDiscoveryService orchestrates a full discovery pass: enumerate
// browser windows, pick a tree walker per window by minimized state,
// and merge every window's tabs into one unordered snapshot.
type TabDiscoveryService struct {
	api             platform.WindowAPI
	enumerator      *WindowEnumerator
	walker          *TabWalker
	minimizedWalker *MinimizedTabWalker
	logger          logging.Logger
	workers         int
}

// NewTabDiscoveryService wires the discovery pipeline over the given
// platform API and allow-list config. workers bounds the shared pool;
// values below 1 fall back to the machine's hardware concurrency.
func NewTabDiscoveryService(api platform.WindowAPI, config *BrowserConfig, workers int, logger logging.Logger) *TabDiscoveryService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	builder := NewTabBuilder(config, logger)
	return &TabDiscoveryService{
		api:             api,
		enumerator:      NewWindowEnumerator(api, config, logger),
		walker:          NewTabWalker(config, builder, workers, logger),
		minimizedWalker: NewMinimizedTabWalker(config, builder, workers, logger),
		logger:          logger,
		workers:         workers,
	}
}

// Discover returns a snapshot of every open tab across all matching
// browser windows. Windows are processed concurrently; a failure in one
// window is logged and isolated, never propagated to its siblings.
// Result order is unspecified. Cancellation returns an empty result
// with a cancellation-classified error, never a partial snapshot.
func (s *TabDiscoveryService) Discover(ctx context.Context) ([]types.Tab, error) {
	started := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, errors.NewAutomationError("discover", err, errors.ErrCodeCancelled)
	}

	windows, err := s.enumerator.Enumerate()
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		tabs []types.Tab
	)

	// A plain Group, not WithContext: one window's failure must never
	// cancel its siblings. Workers report failures through the logger
	// and always return nil.
	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, window := range windows {
		window := window
		g.Go(func() error {
			found, err := s.walkWindow(ctx, window)
			if err != nil {
				if ctx.Err() == nil {
					logging.LogAutomationError(s.logger, err, "walk_window", map[string]interface{}{
						"browser":   window.Browser,
						"pid":       window.ProcessID,
						"minimized": window.Minimized,
					})
				}
				return nil
			}

			mu.Lock()
			tabs = append(tabs, found...)
			mu.Unlock()
			return nil
		})
	}

	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.NewAutomationError("discover", err, errors.ErrCodeCancelled)
	}

	logging.LogOperation(s.logger, "discover", time.Since(started), map[string]interface{}{
		"windows": len(windows),
		"tabs":    len(tabs),
	})
	return tabs, nil
}

// walkWindow resolves the window's accessibility root and runs the
// walker matching its minimized state. Root acquisition is retried for
// transient provider failures (busy, timeout); stale or gone windows
// fail immediately.
func (s *TabDiscoveryService) walkWindow(ctx context.Context, window types.BrowserWindow) ([]types.Tab, error) {
	var root platform.Element
	err := errors.WithRetryContext(ctx, nil, func() error {
		el, err := s.api.WindowElement(window.Handle)
		if err != nil {
			return errors.WrapPlatformError("window_element", err)
		}
		if el == nil {
			// A backend must never hand out a nil element without an
			// error; treat it as a dead window reference.
			return errors.WrapPlatformError("window_element", platform.ErrElementStale)
		}
		root = el
		return nil
	}, "window_element")
	if err != nil {
		return nil, err
	}

	if window.Minimized {
		return s.minimizedWalker.Walk(ctx, root, window)
	}
	return s.walker.Walk(ctx, root, window)
}
