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

// MinimizedTabWalker extracts tabs from a minimized browser window.
//
// On a minimized Chromium window the accessibility provider answers a
// descendant query for tab items with an empty result even though the
// nodes exist. The tab-strip containers stay queryable, so the walker
// finds those first and then walks each container's subtree by hand,
// one level of direct children at a time.
type MinimizedTabWalker struct {
	config  *BrowserConfig
	builder *TabBuilder
	logger  logging.Logger
	workers int
}

// NewMinimizedTabWalker creates a walker that traverses each tab-strip
// container in its own task, bounded by workers.
func NewMinimizedTabWalker(config *BrowserConfig, builder *TabBuilder, workers int, logger logging.Logger) *MinimizedTabWalker {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if workers < 1 {
		workers = 1
	}
	return &MinimizedTabWalker{
		config:  config,
		builder: builder,
		logger:  logger,
		workers: workers,
	}
}

// Walk finds all tab-strip containers under the window root and runs
// one concurrent traversal per container. Emitted tabs carry index 0;
// tab order is not derivable on this path. Concurrent traversals can
// reach one logical node through more than one container edge, so
// emission deduplicates on the tree's stable runtime id, never on Go
// reference identity.
func (mw *MinimizedTabWalker) Walk(ctx context.Context, root platform.Element, window types.BrowserWindow) ([]types.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	containers, err := root.FindAll(platform.ScopeDescendants, platform.Condition{
		ClassNames: mw.config.ContainerClassNames(),
	})
	if err != nil {
		return nil, errors.WrapPlatformError("query_tab_containers", err)
	}

	tabCond := platform.Condition{
		ControlType: platform.ControlTypeTabItem,
		ClassNames:  mw.config.TabClassNames(),
	}

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		tabs []types.Tab
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mw.workers)
	for _, container := range containers {
		container := container
		g.Go(func() error {
			return mw.walkContainer(gctx, container, window, tabCond, func(node platform.Element) {
				id, err := node.RuntimeID()
				if err != nil {
					mw.logger.Debug("Dropping tab node without runtime id",
						"browser", window.Browser,
						"error", err.Error())
					return
				}

				mu.Lock()
				defer mu.Unlock()
				if seen[id] {
					return
				}
				seen[id] = true
				if tab, ok := mw.builder.Build(node, window, 0); ok {
					tabs = append(tabs, tab)
				}
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tabs, nil
}

// walkContainer performs an iterative, explicit-stack depth traversal
// below one container, inspecting only the direct children of each
// visited node. The walk stays iterative to bound memory on deep or
// cyclic-looking trees, and checks cancellation between node visits.
// Stale nodes prune their subtree without failing the traversal.
func (mw *MinimizedTabWalker) walkContainer(ctx context.Context, container platform.Element, window types.BrowserWindow, tabCond platform.Condition, emit func(platform.Element)) error {
	stack := []platform.Element{container}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := node.Children()
		if err != nil {
			mw.logger.Debug("Skipping unreadable subtree",
				"browser", window.Browser,
				"error", err.Error())
			continue
		}

		for _, child := range children {
			className, err := child.ClassName()
			if err != nil {
				continue
			}
			controlType, err := child.ControlType()
			if err != nil {
				continue
			}

			if tabCond.Matches(controlType, className, "") {
				emit(child)
			}
			stack = append(stack, child)
		}
	}

	return nil
}
