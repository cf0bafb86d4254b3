// Package nav resolves back/forward intents across the overlay boundary.
//
// Overlay pages (home, settings) are presentation-layer states, not surface
// navigation history entries. Back at the end of surface history lands on the
// home overlay; forward from an overlay reveals the already-loaded surface at
// its last known web URL instead of replaying a load. The tracker holds the
// per-tab last-web-URL record that makes the forward restore possible even
// before a surface has mounted.
package nav

import (
	"sync"

	"github.com/MarinaBrowser/marina/shell/internal/domain/overlay"
)

// Action is what the caller should do with a back/forward intent
type Action string

const (
	// ActionNone absorbs the intent
	ActionNone Action = "none"
	// ActionDelegateBack hands the intent to the surface's native history
	ActionDelegateBack Action = "delegate_back"
	// ActionDelegateForward hands the intent to the surface's native history
	ActionDelegateForward Action = "delegate_forward"
	// ActionShowOverlay navigates the tab to an internal overlay URL
	ActionShowOverlay Action = "show_overlay"
	// ActionRestoreWeb reveals the mounted surface at the recorded web URL
	// without issuing a new load
	ActionRestoreWeb Action = "restore_web"
)

// Decision carries the resolved action and its target
type Decision struct {
	Action Action
	URL    string // target for show_overlay and restore_web
	// ResetForward instructs the caller to clear its mirrored canGoForward
	// flag; set only on restore_web when the tracker is configured for it
	ResetForward bool
}

// Config tunes tracker policy
type Config struct {
	// RestoreResetsForward clears the mirrored canGoForward flag when a
	// forward intent restores the web URL from an overlay
	RestoreResetsForward bool
}

// Tracker records each tab's last known web URL
type Tracker struct {
	mu         sync.RWMutex
	lastWebURL map[string]string // Protected by mu
	cfg        Config
}

// NewTracker creates an empty tracker
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		lastWebURL: make(map[string]string),
		cfg:        cfg,
	}
}

// RecordNavigation notes a tab's current URL. Internal-scheme URLs are not
// web content and leave the record untouched.
func (t *Tracker) RecordNavigation(tabID, url string) {
	if url == "" || overlay.IsInternal(url) {
		return
	}
	t.mu.Lock()
	t.lastWebURL[tabID] = url
	t.mu.Unlock()
}

// LastWebURL returns the tab's recorded web URL, if any
func (t *Tracker) LastWebURL(tabID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	url, ok := t.lastWebURL[tabID]
	return url, ok
}

// ResolveBack decides a back intent for the given tab.
//
// Surface history wins when it has entries. With history exhausted on web
// content, back crosses into the home overlay. On an overlay with nothing
// behind it the intent is absorbed.
func (t *Tracker) ResolveBack(tabID, currentURL string, surfaceCanGoBack bool) Decision {
	if surfaceCanGoBack {
		return Decision{Action: ActionDelegateBack}
	}
	if !overlay.IsInternal(currentURL) && currentURL != "" {
		return Decision{Action: ActionShowOverlay, URL: overlay.HomeURL}
	}
	return Decision{Action: ActionNone}
}

// ResolveForward decides a forward intent for the given tab.
//
// From an overlay with a mounted surface and a recorded web URL, forward
// reveals the surface as it was; the overlay transition never entered the
// surface's history, so its native forward must not be called.
func (t *Tracker) ResolveForward(tabID, currentURL string, surfaceExists, surfaceCanGoForward bool) Decision {
	if overlay.IsInternal(currentURL) && surfaceExists {
		if url, ok := t.LastWebURL(tabID); ok {
			return Decision{
				Action:       ActionRestoreWeb,
				URL:          url,
				ResetForward: t.cfg.RestoreResetsForward,
			}
		}
	}
	if surfaceCanGoForward {
		return Decision{Action: ActionDelegateForward}
	}
	return Decision{Action: ActionNone}
}

// Forget drops a deleted tab's record
func (t *Tracker) Forget(tabID string) {
	t.mu.Lock()
	delete(t.lastWebURL, tabID)
	t.mu.Unlock()
}

// Size returns the number of tracked tabs
func (t *Tracker) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.lastWebURL)
}
