//go:build windows

package platform

import (
	"fmt"
	"path/filepath"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                        = windows.NewLazySystemDLL("user32.dll")
	kernel32                      = windows.NewLazySystemDLL("kernel32.dll")
	procEnumWindows               = user32.NewProc("EnumWindows")
	procIsWindowVisible           = user32.NewProc("IsWindowVisible")
	procGetWindowTextW            = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW      = user32.NewProc("GetWindowTextLengthW")
	procGetWindowThreadProcessId  = user32.NewProc("GetWindowThreadProcessId")
	procGetWindowPlacement        = user32.NewProc("GetWindowPlacement")
	procShowWindow                = user32.NewProc("ShowWindow")
	procOpenProcess               = kernel32.NewProc("OpenProcess")
	procCloseHandle               = kernel32.NewProc("CloseHandle")
	procQueryFullProcessImageName = kernel32.NewProc("QueryFullProcessImageNameW")
)

const (
	swShowMinimized = 2
	swRestore       = 9

	processQueryLimitedInformation = 0x1000
)

type point struct {
	x int32
	y int32
}

type rect struct {
	left   int32
	top    int32
	right  int32
	bottom int32
}

// WINDOWPLACEMENT layout for GetWindowPlacement
type windowPlacement struct {
	length         uint32
	flags          uint32
	showCmd        uint32
	minPosition    point
	maxPosition    point
	normalPosition rect
}

// WindowsAPI implements WindowAPI for the Windows platform
type WindowsAPI struct {
	uiaOnce sync.Once
	uia     *uiAutomation
	uiaErr  error
}

// NewWindowsAPI creates a new Windows API instance
func NewWindowsAPI() *WindowsAPI {
	return &WindowsAPI{}
}

// NewWindowAPI creates a new WindowAPI instance for Windows
func NewWindowAPI() WindowAPI {
	return NewWindowsAPI()
}

// enumContext carries state across the EnumWindows callback boundary.
type enumContext struct {
	windows []WindowInfo
}

// enumWindowsCallback is registered once; syscall callbacks are never
// released, so per-call closures would leak.
var enumWindowsCallback = syscall.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
	ctx := (*enumContext)(unsafe.Pointer(lparam))

	visible, _, _ := procIsWindowVisible.Call(hwnd)
	if visible == 0 {
		return 1 // continue enumeration
	}

	var processID uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&processID)))

	ctx.windows = append(ctx.windows, WindowInfo{
		Handle:    hwnd,
		Title:     windowTitle(hwnd),
		ProcessID: processID,
	})
	return 1
})

// EnumerateWindows lists all visible top-level windows with their title
// text and owning process id.
func (w *WindowsAPI) EnumerateWindows() ([]WindowInfo, error) {
	ctx := &enumContext{}
	ret, _, err := procEnumWindows.Call(enumWindowsCallback, uintptr(unsafe.Pointer(ctx)))
	if ret == 0 {
		return nil, fmt.Errorf("EnumWindows failed: %w", err)
	}
	return ctx.windows, nil
}

// windowTitle reads a window's title text, returning "" for windows with
// no title or for windows that vanished mid-read.
func windowTitle(hwnd uintptr) string {
	length, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if length == 0 {
		return ""
	}

	buffer := make([]uint16, length+1)
	copied, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buffer[0])), length+1)
	if copied == 0 {
		return ""
	}
	return windows.UTF16ToString(buffer[:copied])
}

// ProcessImageName resolves a process id to its executable base name.
func (w *WindowsAPI) ProcessImageName(pid uint32) (string, error) {
	hProcess, _, _ := procOpenProcess.Call(processQueryLimitedInformation, 0, uintptr(pid))
	if hProcess == 0 {
		// The process exited between window capture and name resolution.
		return "", ErrProcessGone
	}
	defer procCloseHandle.Call(hProcess)

	var buffer [windows.MAX_PATH]uint16
	size := uint32(len(buffer))
	ret, _, _ := procQueryFullProcessImageName.Call(
		hProcess,
		0, // Win32 path format
		uintptr(unsafe.Pointer(&buffer[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if ret == 0 {
		return "", ErrProcessGone
	}

	exePath := windows.UTF16ToString(buffer[:size])
	if exePath == "" {
		return "", ErrProcessGone
	}
	return filepath.Base(exePath), nil
}

// IsMinimized reports whether the window is minimized. A failed placement
// query reports false: the normal-path walker is the one more likely to
// succeed on a window in an unknown state.
func (w *WindowsAPI) IsMinimized(hwnd uintptr) bool {
	var placement windowPlacement
	placement.length = uint32(unsafe.Sizeof(placement))

	ret, _, _ := procGetWindowPlacement.Call(hwnd, uintptr(unsafe.Pointer(&placement)))
	if ret == 0 {
		return false
	}
	return placement.showCmd == swShowMinimized
}

// RestoreWindow restores a minimized window to its previous position.
func (w *WindowsAPI) RestoreWindow(hwnd uintptr) error {
	if hwnd == 0 {
		return fmt.Errorf("ShowWindow: invalid window handle")
	}
	// ShowWindow returns the previous visibility state, not success.
	procShowWindow.Call(hwnd, swRestore)
	return nil
}

// WindowElement returns the UI Automation root element for a window.
func (w *WindowsAPI) WindowElement(hwnd uintptr) (Element, error) {
	auto, err := w.automation()
	if err != nil {
		return nil, err
	}
	return auto.elementFromHandle(hwnd)
}

// automation lazily initializes the process-wide UI Automation client.
func (w *WindowsAPI) automation() (*uiAutomation, error) {
	w.uiaOnce.Do(func() {
		w.uia, w.uiaErr = newUIAutomation()
	})
	return w.uia, w.uiaErr
}
