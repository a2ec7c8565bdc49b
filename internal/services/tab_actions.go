package services

import (
	"errors"
	"strings"

	"tabswitch/internal/infrastructure/logging"
	"tabswitch/internal/platform"
	"tabswitch/internal/types"
)

// TabActions activates and closes previously discovered tabs. Both
// operations report success as a bool and never let a platform failure
// escape past this boundary.
type TabActions struct {
	api    platform.WindowAPI
	config *BrowserConfig
	logger logging.Logger
}

// NewTabActions creates an action invoker over the given platform API.
func NewTabActions(api platform.WindowAPI, config *BrowserConfig, logger logging.Logger) *TabActions {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &TabActions{
		api:    api,
		config: config,
		logger: logger,
	}
}

// Activate brings the tab to the foreground of its window. A minimized
// window is restored first. The tab node is then probed with an ordered
// list of capabilities: selection, then generic invoke (Firefox tabs
// expose invoke rather than selection). Returns false when no probe
// succeeds or the node reference has gone stale.
func (ta *TabActions) Activate(tab types.Tab) bool {
	if tab.Node == nil {
		return false
	}

	if tab.Minimized {
		if err := ta.api.RestoreWindow(tab.WindowHandle); err != nil {
			ta.logger.Warn("Window restore failed, attempting activation anyway",
				"browser", tab.Browser,
				"handle", tab.WindowHandle,
				"error", err.Error())
		}
	}

	probes := []struct {
		name string
		call func() error
	}{
		{"select", tab.Node.Select},
		{"invoke", tab.Node.Invoke},
	}

	for _, probe := range probes {
		err := probe.call()
		if err == nil {
			return true
		}
		if errors.Is(err, platform.ErrPatternNotSupported) {
			continue
		}
		ta.logger.Debug("Tab activation probe failed",
			"probe", probe.name,
			"browser", tab.Browser,
			"tab", tab.ID,
			"error", err.Error())
		return false
	}

	return false
}

// Close dismisses the tab via the close button among the tab node's
// direct children. The query never reaches descendant scope; a deeper
// search could match the close control of an adjacent tab. Families
// whose close button only exists on the active tab are activated first.
// Returns false when no matching button is found or invoking it fails.
func (ta *TabActions) Close(tab types.Tab) bool {
	if tab.Node == nil {
		return false
	}

	if identity, ok := ta.config.IdentityForBrowser(tab.Browser); ok && identity.CloseRequiresActive {
		ta.Activate(tab)
	}

	buttons, err := tab.Node.FindAll(platform.ScopeChildren, platform.Condition{
		ControlType: platform.ControlTypeButton,
	})
	if err != nil {
		ta.logger.Debug("Close button query failed",
			"browser", tab.Browser,
			"tab", tab.ID,
			"error", err.Error())
		return false
	}

	for _, button := range buttons {
		name, err := button.Name()
		if err != nil {
			continue
		}
		if name != "Close" && !strings.EqualFold(name, "Close tab") {
			continue
		}

		if err := button.Invoke(); err != nil {
			ta.logger.Debug("Close button invoke failed",
				"browser", tab.Browser,
				"tab", tab.ID,
				"error", err.Error())
			return false
		}
		return true
	}

	return false
}
