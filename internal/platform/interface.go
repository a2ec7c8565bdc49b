package platform

import (
	"errors"
	"strings"
)

// Sentinel errors returned by Element and WindowAPI implementations.
// Callers classify on these rather than on implementation-specific
// failures.
var (
	// ErrElementStale reports that the underlying UI element no longer
	// exists. The OS owns every element; a reference can go stale between
	// any two operations, including two reads of the same element.
	ErrElementStale = errors.New("ui element is no longer available")

	// ErrPatternNotSupported reports that the element does not expose the
	// requested interaction pattern.
	ErrPatternNotSupported = errors.New("ui element does not support the requested pattern")

	// ErrProcessGone reports that the owning process exited between
	// enumeration and use.
	ErrProcessGone = errors.New("owning process has exited")
)

// ControlType identifies the accessibility control role of an element.
// Values mirror the UI Automation control type ids.
type ControlType int64

const (
	ControlTypeButton  ControlType = 50000
	ControlTypeTab     ControlType = 50018
	ControlTypeTabItem ControlType = 50019
	ControlTypePane    ControlType = 50033
)

// TreeScope selects how far an element query reaches.
type TreeScope int

const (
	// ScopeChildren restricts a query to direct children only.
	ScopeChildren TreeScope = iota
	// ScopeDescendants covers the full subtree below the element.
	ScopeDescendants
)

// Condition describes a property predicate for element queries.
// Zero-value fields match anything.
type Condition struct {
	ControlType ControlType // 0 matches any control type
	ClassNames  []string    // element class must equal one entry; empty matches any
	Name        string      // accessible name; "" matches any
	NameFold    bool        // compare Name case-insensitively
}

// Matches reports whether the given element properties satisfy the
// condition. Shared by manual tree walks and by fake backends in tests;
// OS-level descendant queries compile the same predicate natively.
func (c Condition) Matches(controlType ControlType, className, name string) bool {
	if c.ControlType != 0 && controlType != c.ControlType {
		return false
	}
	if len(c.ClassNames) > 0 {
		found := false
		for _, cn := range c.ClassNames {
			if className == cn {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.Name != "" {
		if c.NameFold {
			if !strings.EqualFold(name, c.Name) {
				return false
			}
		} else if name != c.Name {
			return false
		}
	}
	return true
}

// Element is a non-owning reference to one node of the OS accessibility
// tree. Every method may return ErrElementStale at any time.
type Element interface {
	// Name returns the element's accessible display name.
	Name() (string, error)
	// ClassName returns the implementation class name.
	ClassName() (string, error)
	// ControlType returns the element's control role.
	ControlType() (ControlType, error)
	// RuntimeID returns the tree's stable identity for this logical
	// element, rendered as an opaque comparable string. Two references
	// aliasing one node return equal ids.
	RuntimeID() (string, error)
	// Children returns the element's direct children in tree order.
	Children() ([]Element, error)
	// FindAll runs one structured query over the given scope and returns
	// all matches in provider order.
	FindAll(scope TreeScope, cond Condition) ([]Element, error)
	// SelectionState returns the element's selected flag. supported is
	// false when the element exposes no selection pattern; that is not
	// an error.
	SelectionState() (selected bool, supported bool, err error)
	// Select selects the element via its selection pattern. Returns
	// ErrPatternNotSupported when the pattern is absent.
	Select() error
	// Invoke triggers the element's default action via its invoke
	// pattern. Returns ErrPatternNotSupported when the pattern is absent.
	Invoke() error
}

// WindowInfo describes one top-level window at enumeration time.
type WindowInfo struct {
	Handle    uintptr
	Title     string
	ProcessID uint32
}

// WindowAPI defines the platform-specific window and accessibility
// operations the discovery engine consumes.
type WindowAPI interface {
	// EnumerateWindows lists all top-level windows with their title text
	// and owning process id.
	EnumerateWindows() ([]WindowInfo, error)
	// ProcessImageName resolves a process id to its executable file name
	// (base name, e.g. "chrome.exe"). Returns ErrProcessGone when the
	// process can no longer be opened.
	ProcessImageName(pid uint32) (string, error)
	// IsMinimized reports whether the window is minimized. Any placement
	// query failure reports false.
	IsMinimized(handle uintptr) bool
	// RestoreWindow restores a minimized window.
	RestoreWindow(handle uintptr) error
	// WindowElement returns the accessibility root element for a window.
	WindowElement(handle uintptr) (Element, error)
}
