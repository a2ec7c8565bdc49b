package services

import (
	"tabswitch/internal/infrastructure/errors"
	"tabswitch/internal/infrastructure/logging"
	"tabswitch/internal/platform"
	"tabswitch/internal/types"
)

// WindowEnumerator lists top-level OS windows and filters them down to
// those owned by a known browser process.
type WindowEnumerator struct {
	api    platform.WindowAPI
	config *BrowserConfig
	logger logging.Logger
}

// NewWindowEnumerator creates an enumerator over the given platform API
// and browser allow-list.
func NewWindowEnumerator(api platform.WindowAPI, config *BrowserConfig, logger logging.Logger) *WindowEnumerator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &WindowEnumerator{
		api:    api,
		config: config,
		logger: logger,
	}
}

// Enumerate returns one BrowserWindow per qualifying top-level window.
// A window qualifies when its title is non-empty and its owning process
// image name matches a configured browser identity. A process that
// exits between window capture and name resolution is silently skipped;
// that race is expected, not an error.
func (we *WindowEnumerator) Enumerate() ([]types.BrowserWindow, error) {
	infos, err := we.api.EnumerateWindows()
	if err != nil {
		return nil, errors.WrapPlatformError("enumerate_windows", err)
	}

	var windows []types.BrowserWindow
	for _, info := range infos {
		if info.Title == "" {
			continue
		}

		imageName, err := we.api.ProcessImageName(info.ProcessID)
		if err != nil {
			we.logger.Debug("Skipping window with unresolvable process",
				"pid", info.ProcessID,
				"error", err.Error())
			continue
		}

		identity, ok := we.config.IdentityForProcess(imageName)
		if !ok {
			continue
		}

		windows = append(windows, types.BrowserWindow{
			Handle:    info.Handle,
			ProcessID: info.ProcessID,
			Browser:   identity.Name,
			Title:     info.Title,
			Minimized: we.api.IsMinimized(info.Handle),
		})
	}

	return windows, nil
}
