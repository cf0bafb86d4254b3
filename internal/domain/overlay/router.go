// Package overlay is the single authority on internal-scheme URLs.
//
// Internal URLs (app://newtab, app://settings/...) identify in-app overlay
// pages rendered by the UI process above a tab's surface. They are never
// dispatched to a browsing surface; every component that needs to distinguish
// web content from overlay state consults this package.
package overlay

import (
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Scheme is the reserved internal URL scheme
const Scheme = "app"

const schemePrefix = Scheme + "://"

// HomeURL is the default new-tab overlay
const HomeURL = schemePrefix + "newtab"

// SettingsURL is the settings overlay root
const SettingsURL = schemePrefix + "settings"

// Route is a registered overlay page
type Route struct {
	Name    string // stable identifier the UI routes on
	Pattern string // doublestar pattern over the URL path, e.g. "settings/**"
}

// Router matches internal URLs to registered overlay routes
type Router struct {
	mu     sync.RWMutex
	routes []Route
}

// NewRouter creates a router with the built-in routes registered
func NewRouter() *Router {
	r := &Router{}
	r.Register(Route{Name: "home", Pattern: "newtab"})
	r.Register(Route{Name: "settings", Pattern: "settings/**"})
	return r
}

// Register adds a route. Longer patterns win ties, so specific routes may be
// registered after broad ones.
func (r *Router) Register(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	sort.SliceStable(r.routes, func(i, j int) bool {
		return len(r.routes[i].Pattern) > len(r.routes[j].Pattern)
	})
}

// IsInternal reports whether the URL uses the reserved internal scheme
func IsInternal(url string) bool {
	return strings.HasPrefix(url, schemePrefix)
}

// Path strips the internal scheme, returning the overlay path.
// "app://settings/privacy" -> "settings/privacy". Non-internal URLs
// return "".
func Path(url string) string {
	if !IsInternal(url) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(url, schemePrefix), "/")
}

// Resolve matches an internal URL to a registered route. Unknown internal
// URLs resolve to the home route so the UI always has somewhere to land;
// non-internal URLs report false.
func (r *Router) Resolve(url string) (Route, bool) {
	if !IsInternal(url) {
		return Route{}, false
	}
	path := Path(url)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, route := range r.routes {
		if ok, err := doublestar.Match(route.Pattern, path); err == nil && ok {
			return route, true
		}
		// settings/** should also match the bare settings root
		if root, ok := strings.CutSuffix(route.Pattern, "/**"); ok && root == path {
			return route, true
		}
	}
	return Route{Name: "home", Pattern: "newtab"}, true
}
