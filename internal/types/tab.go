package types

import (
	"time"

	"tabswitch/internal/platform"
)

// BrowserWindow represents one top-level window owned by a known browser
// process. Produced fresh on every enumeration pass and never cached.
type BrowserWindow struct {
	Handle    uintptr `json:"handle"`
	ProcessID uint32  `json:"processId"`
	Browser   string  `json:"browser"`
	Title     string  `json:"title"`
	Minimized bool    `json:"minimized"`
}

// Tab represents a single discovered browser tab.
//
// ID is unique only within one discovery pass (process id + positional
// index + sequence) and may be reused after windows or tabs change. Node
// is a borrowed reference into the OS accessibility tree; any operation
// on it can fail with a stale-reference outcome at any time.
type Tab struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	URLOrTitle   string  `json:"urlOrTitle"`
	Active       bool    `json:"active"`
	Index        int     `json:"index"` // 0 on the minimized path, where order is not derivable
	Browser      string  `json:"browser"`
	ProcessID    uint32  `json:"processId"`
	WindowHandle uintptr `json:"windowHandle"`
	Minimized    bool    `json:"minimized"`

	Node platform.Element `json:"-"`
}

// TabPreview holds page metadata fetched for a tab whose derived
// URL-or-title is an absolute URL.
type TabPreview struct {
	TabID        string    `json:"tabId"`
	URL          string    `json:"url"`
	PageTitle    string    `json:"pageTitle"`
	Description  string    `json:"description"`
	CanonicalURL string    `json:"canonicalUrl"`
	FetchedAt    time.Time `json:"fetchedAt"`
}
