package services

import (
	"fmt"
	"sync"

	"tabswitch/internal/platform"
)

// MockCallLog records platform operations in invocation order so tests
// can assert ordering across the window API and element references.
type MockCallLog struct {
	mu    sync.Mutex
	calls []string
}

// NewMockCallLog creates an empty call log.
func NewMockCallLog() *MockCallLog {
	return &MockCallLog{}
}

// Record appends one operation to the log.
func (cl *MockCallLog) Record(op string) {
	if cl == nil {
		return
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.calls = append(cl.calls, op)
}

// Calls returns a copy of all recorded operations in order.
func (cl *MockCallLog) Calls() []string {
	if cl == nil {
		return nil
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	out := make([]string, len(cl.calls))
	copy(out, cl.calls)
	return out
}

// MockElement implements the platform.Element interface for testing
type MockElement struct {
	mu sync.Mutex

	name        string
	className   string
	controlType platform.ControlType
	runtimeID   string
	children    []*MockElement

	selected          bool
	supportsSelection bool
	supportsInvoke    bool
	stale             bool
	invokeCount       int

	callLog *MockCallLog
}

var mockRuntimeSeq int

// NewMockElement creates a mock accessibility node with the given
// properties and an auto-assigned runtime id.
func NewMockElement(name, className string, controlType platform.ControlType) *MockElement {
	mockRuntimeSeq++
	return &MockElement{
		name:        name,
		className:   className,
		controlType: controlType,
		runtimeID:   fmt.Sprintf("rt-%d", mockRuntimeSeq),
	}
}

// AddChild appends children and returns the receiver for chaining.
func (m *MockElement) AddChild(children ...*MockElement) *MockElement {
	m.children = append(m.children, children...)
	return m
}

// WithSelection marks the element as exposing the selection pattern.
func (m *MockElement) WithSelection(selected bool) *MockElement {
	m.supportsSelection = true
	m.selected = selected
	return m
}

// WithInvoke marks the element as exposing the invoke pattern.
func (m *MockElement) WithInvoke() *MockElement {
	m.supportsInvoke = true
	return m
}

// WithRuntimeID overrides the auto-assigned runtime id, used to model
// two references aliasing one logical node.
func (m *MockElement) WithRuntimeID(id string) *MockElement {
	m.runtimeID = id
	return m
}

// WithCallLog attaches a shared call log to this element.
func (m *MockElement) WithCallLog(log *MockCallLog) *MockElement {
	m.callLog = log
	return m
}

// SetStale marks the element reference as stale; every subsequent
// operation fails with platform.ErrElementStale.
func (m *MockElement) SetStale(stale bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale = stale
}

// InvokeCount returns how many times Invoke succeeded on this element.
func (m *MockElement) InvokeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invokeCount
}

func (m *MockElement) checkStale() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stale {
		return platform.ErrElementStale
	}
	return nil
}

// Name implements platform.Element
func (m *MockElement) Name() (string, error) {
	if err := m.checkStale(); err != nil {
		return "", err
	}
	return m.name, nil
}

// ClassName implements platform.Element
func (m *MockElement) ClassName() (string, error) {
	if err := m.checkStale(); err != nil {
		return "", err
	}
	return m.className, nil
}

// ControlType implements platform.Element
func (m *MockElement) ControlType() (platform.ControlType, error) {
	if err := m.checkStale(); err != nil {
		return 0, err
	}
	return m.controlType, nil
}

// RuntimeID implements platform.Element
func (m *MockElement) RuntimeID() (string, error) {
	if err := m.checkStale(); err != nil {
		return "", err
	}
	return m.runtimeID, nil
}

// Children implements platform.Element
func (m *MockElement) Children() ([]platform.Element, error) {
	if err := m.checkStale(); err != nil {
		return nil, err
	}
	out := make([]platform.Element, len(m.children))
	for i, c := range m.children {
		out[i] = c
	}
	return out, nil
}

// FindAll implements platform.Element
func (m *MockElement) FindAll(scope platform.TreeScope, cond platform.Condition) ([]platform.Element, error) {
	if err := m.checkStale(); err != nil {
		return nil, err
	}

	var matches []platform.Element
	if scope == platform.ScopeChildren {
		for _, c := range m.children {
			if cond.Matches(c.controlType, c.className, c.name) {
				matches = append(matches, c)
			}
		}
		return matches, nil
	}

	// Descendant scope: iterative walk in tree order, root excluded.
	queue := append([]*MockElement{}, m.children...)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if cond.Matches(node.controlType, node.className, node.name) {
			matches = append(matches, node)
		}
		queue = append(queue, node.children...)
	}
	return matches, nil
}

// SelectionState implements platform.Element
func (m *MockElement) SelectionState() (bool, bool, error) {
	if err := m.checkStale(); err != nil {
		return false, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected, m.supportsSelection, nil
}

// Select implements platform.Element
func (m *MockElement) Select() error {
	m.callLog.Record("Select:" + m.name)
	if err := m.checkStale(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.supportsSelection {
		return platform.ErrPatternNotSupported
	}
	m.selected = true
	return nil
}

// Invoke implements platform.Element
func (m *MockElement) Invoke() error {
	m.callLog.Record("Invoke:" + m.name)
	if err := m.checkStale(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.supportsInvoke {
		return platform.ErrPatternNotSupported
	}
	m.invokeCount++
	return nil
}

// MockWindowAPI implements the platform.WindowAPI interface for testing
type MockWindowAPI struct {
	mu sync.Mutex

	windows       []platform.WindowInfo
	imageNames    map[uint32]string
	goneProcesses map[uint32]bool
	minimized     map[uintptr]bool
	roots         map[uintptr]platform.Element

	enumerateErr      error
	windowElementHook func(handle uintptr)

	callLog *MockCallLog
}

// NewMockWindowAPI creates an empty mock window API.
func NewMockWindowAPI() *MockWindowAPI {
	return &MockWindowAPI{
		imageNames:    make(map[uint32]string),
		goneProcesses: make(map[uint32]bool),
		minimized:     make(map[uintptr]bool),
		roots:         make(map[uintptr]platform.Element),
	}
}

// WithCallLog attaches a shared call log.
func (m *MockWindowAPI) WithCallLog(log *MockCallLog) *MockWindowAPI {
	m.callLog = log
	return m
}

// AddWindow registers one top-level window with its owning process and
// accessibility root.
func (m *MockWindowAPI) AddWindow(handle uintptr, title string, pid uint32, imageName string, minimized bool, root platform.Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = append(m.windows, platform.WindowInfo{
		Handle:    handle,
		Title:     title,
		ProcessID: pid,
	})
	m.imageNames[pid] = imageName
	m.minimized[handle] = minimized
	m.roots[handle] = root
}

// SetProcessGone simulates a process exiting between enumeration and
// image-name resolution.
func (m *MockWindowAPI) SetProcessGone(pid uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goneProcesses[pid] = true
}

// SetEnumerateError makes EnumerateWindows fail.
func (m *MockWindowAPI) SetEnumerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enumerateErr = err
}

// SetWindowElementHook installs a callback fired on every WindowElement
// call, used to trigger cancellation mid-discovery.
func (m *MockWindowAPI) SetWindowElementHook(hook func(handle uintptr)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windowElementHook = hook
}

// EnumerateWindows implements platform.WindowAPI
func (m *MockWindowAPI) EnumerateWindows() ([]platform.WindowInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enumerateErr != nil {
		return nil, m.enumerateErr
	}
	out := make([]platform.WindowInfo, len(m.windows))
	copy(out, m.windows)
	return out, nil
}

// ProcessImageName implements platform.WindowAPI
func (m *MockWindowAPI) ProcessImageName(pid uint32) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.goneProcesses[pid] {
		return "", platform.ErrProcessGone
	}
	name, ok := m.imageNames[pid]
	if !ok {
		return "", platform.ErrProcessGone
	}
	return name, nil
}

// IsMinimized implements platform.WindowAPI
func (m *MockWindowAPI) IsMinimized(handle uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minimized[handle]
}

// RestoreWindow implements platform.WindowAPI
func (m *MockWindowAPI) RestoreWindow(handle uintptr) error {
	m.callLog.Record(fmt.Sprintf("RestoreWindow:%d", handle))
	return nil
}

// WindowElement implements platform.WindowAPI
func (m *MockWindowAPI) WindowElement(handle uintptr) (platform.Element, error) {
	m.mu.Lock()
	hook := m.windowElementHook
	root, ok := m.roots[handle]
	m.mu.Unlock()

	if hook != nil {
		hook(handle)
	}
	if !ok || root == nil {
		return nil, platform.ErrElementStale
	}
	return root, nil
}
