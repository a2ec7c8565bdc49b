package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"tabswitch/internal/infrastructure/errors"
	"tabswitch/internal/infrastructure/logging"
	"tabswitch/internal/platform"
	"tabswitch/internal/types"
)

// rangeSplitThreshold is the result-set size above which a window's
// matches are partitioned into index ranges across the worker pool.
const rangeSplitThreshold = 32

// TabWalker extracts tabs from a non-minimized browser window with one
// descendant-scoped structured query.
type TabWalker struct {
	config  *BrowserConfig
	builder *TabBuilder
	logger  logging.Logger
	workers int
}

// NewTabWalker creates a walker that fans large result sets out across
// at most workers goroutines.
func NewTabWalker(config *BrowserConfig, builder *TabBuilder, workers int, logger logging.Logger) *TabWalker {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if workers < 1 {
		workers = 1
	}
	return &TabWalker{
		config:  config,
		builder: builder,
		logger:  logger,
		workers: workers,
	}
}

// Walk queries the window root for tab items and builds a Tab per
// match. Each match keeps its zero-based position in the query result;
// output order across the returned slice is unspecified. A node that
// goes stale during processing is skipped without aborting the rest of
// the window.
func (tw *TabWalker) Walk(ctx context.Context, root platform.Element, window types.BrowserWindow) ([]types.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nodes, err := root.FindAll(platform.ScopeDescendants, platform.Condition{
		ControlType: platform.ControlTypeTabItem,
		ClassNames:  tw.config.TabClassNames(),
	})
	if err != nil {
		return nil, errors.WrapPlatformError("query_tab_items", err)
	}

	if len(nodes) <= rangeSplitThreshold {
		return tw.buildRange(ctx, nodes, window, 0)
	}

	// Partition into contiguous index ranges, one errgroup task each.
	var (
		mu   sync.Mutex
		tabs []types.Tab
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tw.workers)

	chunk := (len(nodes) + tw.workers - 1) / tw.workers
	for start := 0; start < len(nodes); start += chunk {
		end := start + chunk
		if end > len(nodes) {
			end = len(nodes)
		}
		start, end := start, end
		g.Go(func() error {
			built, err := tw.buildRange(gctx, nodes[start:end], window, start)
			if err != nil {
				return err
			}
			mu.Lock()
			tabs = append(tabs, built...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tabs, nil
}

// buildRange builds tabs for one contiguous slice of query matches,
// offset by the slice's position in the full result set. Returns an
// error only on cancellation.
func (tw *TabWalker) buildRange(ctx context.Context, nodes []platform.Element, window types.BrowserWindow, offset int) ([]types.Tab, error) {
	tabs := make([]types.Tab, 0, len(nodes))
	for i, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if tab, ok := tw.builder.Build(node, window, offset+i); ok {
			tabs = append(tabs, tab)
		}
	}
	return tabs, nil
}
