package services

import (
	"errors"
	"testing"

	"tabswitch/internal/platform"
)

func TestEnumerate_FiltersToKnownBrowsers(t *testing.T) {
	api := NewMockWindowAPI()
	api.AddWindow(1, "Example Site - Google Chrome", 100, "chrome.exe", false, NewMockElement("root", "", platform.ControlTypePane))
	api.AddWindow(2, "notes.txt - Notepad", 200, "notepad.exe", false, NewMockElement("root", "", platform.ControlTypePane))
	api.AddWindow(3, "Docs - Mozilla Firefox", 300, "firefox.exe", true, NewMockElement("root", "", platform.ControlTypePane))

	enum := NewWindowEnumerator(api, DefaultBrowserConfig(), nil)
	windows, err := enum.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate() error: %v", err)
	}

	if len(windows) != 2 {
		t.Fatalf("Expected 2 browser windows, got %d", len(windows))
	}

	byHandle := make(map[uintptr]string)
	for _, w := range windows {
		byHandle[w.Handle] = w.Browser
	}
	if byHandle[1] != "Google Chrome" {
		t.Errorf("Expected window 1 to be Google Chrome, got %q", byHandle[1])
	}
	if byHandle[3] != "Mozilla Firefox" {
		t.Errorf("Expected window 3 to be Mozilla Firefox, got %q", byHandle[3])
	}
}

func TestEnumerate_SkipsEmptyTitles(t *testing.T) {
	api := NewMockWindowAPI()
	api.AddWindow(1, "", 100, "chrome.exe", false, nil)
	api.AddWindow(2, "Example - Google Chrome", 100, "chrome.exe", false, nil)

	enum := NewWindowEnumerator(api, DefaultBrowserConfig(), nil)
	windows, err := enum.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate() error: %v", err)
	}

	if len(windows) != 1 || windows[0].Handle != 2 {
		t.Errorf("Expected only the titled window, got %+v", windows)
	}
}

func TestEnumerate_ExitedProcessSilentlyExcluded(t *testing.T) {
	api := NewMockWindowAPI()
	api.AddWindow(1, "Example - Google Chrome", 100, "chrome.exe", false, nil)
	api.AddWindow(2, "Gone - Google Chrome", 200, "chrome.exe", false, nil)
	api.SetProcessGone(200)

	enum := NewWindowEnumerator(api, DefaultBrowserConfig(), nil)
	windows, err := enum.Enumerate()
	if err != nil {
		t.Fatalf("Expected the exited process to be skipped without error, got %v", err)
	}

	if len(windows) != 1 || windows[0].ProcessID != 100 {
		t.Errorf("Expected only the live process window, got %+v", windows)
	}
}

func TestEnumerate_CarriesMinimizedState(t *testing.T) {
	api := NewMockWindowAPI()
	api.AddWindow(1, "A - Google Chrome", 100, "chrome.exe", true, nil)
	api.AddWindow(2, "B - Google Chrome", 100, "chrome.exe", false, nil)

	enum := NewWindowEnumerator(api, DefaultBrowserConfig(), nil)
	windows, err := enum.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate() error: %v", err)
	}

	for _, w := range windows {
		want := w.Handle == 1
		if w.Minimized != want {
			t.Errorf("Window %d minimized = %v, want %v", w.Handle, w.Minimized, want)
		}
	}
}

func TestEnumerate_MultiWindowProcess(t *testing.T) {
	api := NewMockWindowAPI()
	api.AddWindow(1, "Profile 1 - Google Chrome", 100, "chrome.exe", false, nil)
	api.AddWindow(2, "Profile 2 - Google Chrome", 100, "chrome.exe", false, nil)
	api.AddWindow(3, "Popup - Google Chrome", 100, "chrome.exe", false, nil)

	enum := NewWindowEnumerator(api, DefaultBrowserConfig(), nil)
	windows, err := enum.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate() error: %v", err)
	}

	if len(windows) != 3 {
		t.Errorf("Expected one entry per window of the same process, got %d", len(windows))
	}
}

func TestEnumerate_PlatformFailurePropagates(t *testing.T) {
	api := NewMockWindowAPI()
	api.SetEnumerateError(errors.New("enumeration unavailable"))

	enum := NewWindowEnumerator(api, DefaultBrowserConfig(), nil)
	if _, err := enum.Enumerate(); err == nil {
		t.Error("Expected enumeration failure to propagate")
	}
}
