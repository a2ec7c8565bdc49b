//go:build !windows

package platform

import "errors"

var errUnsupportedPlatform = errors.New("browser tab discovery requires the Windows UI Automation backend")

// StubAPI implements WindowAPI for non-Windows platforms. Discovery and
// actions report an unsupported-platform error; the app shell still runs
// so the frontend can be developed anywhere.
type StubAPI struct{}

// NewStubAPI creates a new stub API instance
func NewStubAPI() *StubAPI {
	return &StubAPI{}
}

// NewWindowAPI creates a new WindowAPI instance for non-Windows platforms
func NewWindowAPI() WindowAPI {
	return NewStubAPI()
}

func (s *StubAPI) EnumerateWindows() ([]WindowInfo, error) {
	return nil, errUnsupportedPlatform
}

func (s *StubAPI) ProcessImageName(pid uint32) (string, error) {
	return "", errUnsupportedPlatform
}

func (s *StubAPI) IsMinimized(handle uintptr) bool {
	return false
}

func (s *StubAPI) RestoreWindow(handle uintptr) error {
	return errUnsupportedPlatform
}

func (s *StubAPI) WindowElement(handle uintptr) (Element, error) {
	return nil, errUnsupportedPlatform
}
