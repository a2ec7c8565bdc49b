package services

import (
	"context"
	"testing"

	"tabswitch/internal/platform"
	"tabswitch/internal/types"
)

func minimizedTestWindow() types.BrowserWindow {
	w := testWindow()
	w.Minimized = true
	return w
}

func newTestMinimizedWalker(workers int) *MinimizedTabWalker {
	config := DefaultBrowserConfig()
	return NewMinimizedTabWalker(config, NewTabBuilder(config, nil), workers, nil)
}

func TestMinimizedWalk_FindsTabsUnderContainers(t *testing.T) {
	strip := NewMockElement("", "TabStrip", platform.ControlTypeTab).AddChild(
		NewMockElement("First - Google Chrome", "Tab", platform.ControlTypeTabItem),
		NewMockElement("Second - Google Chrome", "Tab", platform.ControlTypeTabItem))
	root := NewMockElement("", "Chrome_WidgetWin_1", platform.ControlTypePane).AddChild(strip)

	walker := newTestMinimizedWalker(2)
	tabs, err := walker.Walk(context.Background(), root, minimizedTestWindow())
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(tabs) != 2 {
		t.Fatalf("Expected 2 tabs, got %d", len(tabs))
	}
	for _, tab := range tabs {
		if tab.Index != 0 {
			t.Errorf("Expected index fixed at 0 on the minimized path, got %d", tab.Index)
		}
		if !tab.Minimized {
			t.Error("Expected the minimized flag to be set")
		}
		if tab.WindowHandle != 0x50a42 {
			t.Errorf("Expected the owning window handle to be attached, got %#x", tab.WindowHandle)
		}
	}
}

func TestMinimizedWalk_ReachesNestedTabs(t *testing.T) {
	// Tabs buried a few levels below the container; the walker must
	// descend through direct children without a descendant query
	inner := NewMockElement("", "TabContainer", platform.ControlTypePane).AddChild(
		NewMockElement("Deep - Google Chrome", "Tab", platform.ControlTypeTabItem))
	strip := NewMockElement("", "TabStripRegionView", platform.ControlTypePane).AddChild(
		NewMockElement("", "TabSearchContainer", platform.ControlTypePane),
		inner)
	root := NewMockElement("", "Chrome_WidgetWin_1", platform.ControlTypePane).AddChild(strip)

	walker := newTestMinimizedWalker(2)
	tabs, err := walker.Walk(context.Background(), root, minimizedTestWindow())
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(tabs) != 1 || tabs[0].Title != "Deep - Google Chrome" {
		t.Errorf("Expected the nested tab, got %+v", tabs)
	}
}

func TestMinimizedWalk_DeduplicatesByRuntimeID(t *testing.T) {
	// Two container edges reaching one logical tab node: distinct Go
	// references, one runtime id
	tabA := NewMockElement("Shared - Google Chrome", "Tab", platform.ControlTypeTabItem).WithRuntimeID("rt-shared")
	tabB := NewMockElement("Shared - Google Chrome", "Tab", platform.ControlTypeTabItem).WithRuntimeID("rt-shared")

	stripOne := NewMockElement("", "TabStrip", platform.ControlTypeTab).AddChild(tabA)
	stripTwo := NewMockElement("", "TabStripRegionView", platform.ControlTypePane).AddChild(tabB)
	root := NewMockElement("", "Chrome_WidgetWin_1", platform.ControlTypePane).AddChild(stripOne, stripTwo)

	walker := newTestMinimizedWalker(2)
	tabs, err := walker.Walk(context.Background(), root, minimizedTestWindow())
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(tabs) != 1 {
		t.Errorf("Expected the aliased node to be emitted once, got %d tabs", len(tabs))
	}
}

func TestMinimizedWalk_StaleSubtreePruned(t *testing.T) {
	staleBranch := NewMockElement("", "TabContainer", platform.ControlTypePane).AddChild(
		NewMockElement("Hidden - Google Chrome", "Tab", platform.ControlTypeTabItem))
	staleBranch.SetStale(true)

	strip := NewMockElement("", "TabStrip", platform.ControlTypeTab).AddChild(
		staleBranch,
		NewMockElement("Visible - Google Chrome", "Tab", platform.ControlTypeTabItem))
	root := NewMockElement("", "Chrome_WidgetWin_1", platform.ControlTypePane).AddChild(strip)

	walker := newTestMinimizedWalker(2)
	tabs, err := walker.Walk(context.Background(), root, minimizedTestWindow())
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(tabs) != 1 || tabs[0].Title != "Visible - Google Chrome" {
		t.Errorf("Expected only the reachable tab, got %+v", tabs)
	}
}

func TestMinimizedWalk_NoContainers(t *testing.T) {
	root := NewMockElement("", "Chrome_WidgetWin_1", platform.ControlTypePane)

	walker := newTestMinimizedWalker(2)
	tabs, err := walker.Walk(context.Background(), root, minimizedTestWindow())
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if len(tabs) != 0 {
		t.Errorf("Expected no tabs without containers, got %d", len(tabs))
	}
}

func TestMinimizedWalk_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	strip := NewMockElement("", "TabStrip", platform.ControlTypeTab).AddChild(
		NewMockElement("A - Google Chrome", "Tab", platform.ControlTypeTabItem))
	root := NewMockElement("", "Chrome_WidgetWin_1", platform.ControlTypePane).AddChild(strip)

	walker := newTestMinimizedWalker(2)
	tabs, err := walker.Walk(ctx, root, minimizedTestWindow())
	if err == nil {
		t.Error("Expected cancellation to surface as an error")
	}
	if len(tabs) != 0 {
		t.Errorf("Expected no tabs after cancellation, got %d", len(tabs))
	}
}
