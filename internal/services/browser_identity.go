package services

import (
	"strings"
)

// BrowserIdentity describes one supported browser family: how its
// process is recognized, how its tab nodes look in the accessibility
// tree, and which interaction quirks it carries.
type BrowserIdentity struct {
	// Name is the display name, e.g. "Google Chrome".
	Name string
	// Process is the executable base name without extension, matched
	// case-insensitively against the owning process image name.
	Process string
	// TitleSuffix is the window-title suffix the browser appends,
	// e.g. " - Google Chrome". Stripped when deriving URL-or-title.
	TitleSuffix string
	// TabClassNames lists the implementation class names tab items
	// carry in this family's tab strip.
	TabClassNames []string
	// ContainerClassNames lists the tab-strip container class names.
	// Containers stay discoverable by descendant query even on a
	// minimized window, unlike the tab items themselves.
	ContainerClassNames []string
	// CloseRequiresActive marks families whose per-tab close button
	// only exists on the currently active tab.
	CloseRequiresActive bool
}

// BrowserConfig is the immutable allow-list configuration injected into
// the enumerator, walkers, and action invoker at construction.
type BrowserConfig struct {
	identities []BrowserIdentity

	byProcess    map[string]BrowserIdentity
	tabClasses   []string
	containerCls []string
	suffixes     []string
}

// NewBrowserConfig builds a config from the given identities.
func NewBrowserConfig(identities []BrowserIdentity) *BrowserConfig {
	cfg := &BrowserConfig{
		identities: identities,
		byProcess:  make(map[string]BrowserIdentity, len(identities)),
	}

	seenTab := make(map[string]bool)
	seenContainer := make(map[string]bool)
	for _, id := range identities {
		cfg.byProcess[strings.ToLower(id.Process)] = id

		for _, cn := range id.TabClassNames {
			if !seenTab[cn] {
				seenTab[cn] = true
				cfg.tabClasses = append(cfg.tabClasses, cn)
			}
		}
		for _, cn := range id.ContainerClassNames {
			if !seenContainer[cn] {
				seenContainer[cn] = true
				cfg.containerCls = append(cfg.containerCls, cn)
			}
		}
		if id.TitleSuffix != "" {
			cfg.suffixes = append(cfg.suffixes, id.TitleSuffix)
		}
	}

	return cfg
}

// DefaultBrowserConfig returns the built-in allow-list covering the
// Chromium family and Firefox.
func DefaultBrowserConfig() *BrowserConfig {
	chromiumTabs := []string{"Tab"}
	chromiumContainers := []string{"TabStrip", "TabStripRegionView"}

	return NewBrowserConfig([]BrowserIdentity{
		{
			Name:                "Google Chrome",
			Process:             "chrome",
			TitleSuffix:         " - Google Chrome",
			TabClassNames:       chromiumTabs,
			ContainerClassNames: chromiumContainers,
		},
		{
			Name:                "Microsoft Edge",
			Process:             "msedge",
			TitleSuffix:         " - Microsoft Edge",
			TabClassNames:       chromiumTabs,
			ContainerClassNames: chromiumContainers,
		},
		{
			Name:                "Brave",
			Process:             "brave",
			TitleSuffix:         " - Brave",
			TabClassNames:       chromiumTabs,
			ContainerClassNames: chromiumContainers,
		},
		{
			Name:                "Opera",
			Process:             "opera",
			TitleSuffix:         " - Opera",
			TabClassNames:       chromiumTabs,
			ContainerClassNames: chromiumContainers,
		},
		{
			Name:                "Vivaldi",
			Process:             "vivaldi",
			TitleSuffix:         " - Vivaldi",
			TabClassNames:       chromiumTabs,
			ContainerClassNames: chromiumContainers,
		},
		{
			Name:                "Mozilla Firefox",
			Process:             "firefox",
			TitleSuffix:         " - Mozilla Firefox",
			TabClassNames:       []string{"tab"},
			ContainerClassNames: []string{"tabbrowser-arrowscrollbox"},
			CloseRequiresActive: true,
		},
	})
}

// IdentityForProcess resolves a process image name (with or without the
// ".exe" extension, any case) to a browser identity.
func (bc *BrowserConfig) IdentityForProcess(imageName string) (BrowserIdentity, bool) {
	name := strings.ToLower(imageName)
	name = strings.TrimSuffix(name, ".exe")
	id, ok := bc.byProcess[name]
	return id, ok
}

// IdentityForBrowser resolves a browser display name back to its
// identity, used when routing actions on a previously built Tab.
func (bc *BrowserConfig) IdentityForBrowser(browser string) (BrowserIdentity, bool) {
	for _, id := range bc.identities {
		if id.Name == browser {
			return id, true
		}
	}
	return BrowserIdentity{}, false
}

// TabClassNames returns the union of tab-item class names across all
// configured identities.
func (bc *BrowserConfig) TabClassNames() []string {
	return bc.tabClasses
}

// ContainerClassNames returns the union of tab-strip container class
// names across all configured identities.
func (bc *BrowserConfig) ContainerClassNames() []string {
	return bc.containerCls
}

// StripTitleSuffix removes the first matching known browser-name suffix
// from a tab title. A title with no matching suffix is returned
// unchanged, which makes the operation idempotent.
func (bc *BrowserConfig) StripTitleSuffix(title string) string {
	for _, suffix := range bc.suffixes {
		if strings.HasSuffix(title, suffix) {
			return strings.TrimSuffix(title, suffix)
		}
	}
	return title
}
