// Package surface coordinates the lifecycle of embedded browsing views.
//
// Each tab owns at most one surface. Surfaces mount asynchronously, keep
// their own history and scroll state while hidden, and report lifecycle
// events that flow back into the organization store and the navigation
// tracker.
package surface

import (
	"context"
	"time"

	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// State describes a tab's surface binding.
type State string

const (
	StateNoSurface      State = "no_surface"
	StateMounting       State = "mounting"
	StateMountedHidden  State = "mounted_hidden"
	StateMountedVisible State = "mounted_visible"
)

// Surface is one embedded browsing view owned by a tab. Commands are
// fire-and-forget and must not block; the production implementation
// enqueues them onto the bridge writer. Getters reflect the embedder's
// last reported state.
type Surface interface {
	Navigate(url string)
	GoBack()
	GoForward()
	Reload()
	Stop()
	Show()
	Hide()
	Close()

	URL() string
	Loading() bool
	CanGoBack() bool
	CanGoForward() bool
}

// Factory mounts surfaces in the embedder. Create blocks until the
// embedder acknowledges the mount, so the coordinator runs it off its
// lock.
type Factory interface {
	Create(ctx context.Context, tabID string) (Surface, error)
}

// TabStore is the slice of the organization store the coordinator reads
// and updates. Update notifications fan out on the calling goroutine;
// the coordinator issues every update outside its own lock so
// subscribers may call back in.
type TabStore interface {
	Get(tabID string) (*types.Tab, bool)
	ActiveID() (string, bool)
	ApplyTabUpdate(tabID string, upd types.TabUpdate) (*types.Tab, error)
}

// History records visited web URLs per tab.
type History interface {
	RecordNavigation(tabID, url string)
}

// Hooks receive out-of-band effects. All fields are optional and are
// invoked outside the coordinator lock, so they may call back in.
type Hooks struct {
	// Crashed fires when a surface dies or fails to mount.
	Crashed func(tabID string)
	// NewWindow fires when a surface asks for a new tab.
	NewWindow func(sourceTabID, url string)
	// Favicon fires when a surface reports a new icon location.
	Favicon func(tabID, pageURL, iconURL string)
}

// Config tunes the coordinator.
type Config struct {
	// MountTimeout bounds the embedder's mount acknowledgement.
	MountTimeout time.Duration
}

// Stats counts live bindings by state.
type Stats struct {
	Mounting int `json:"mounting"`
	Visible  int `json:"visible"`
	Hidden   int `json:"hidden"`
	Crashed  int `json:"crashed"`
	Pending  int `json:"pending_navigations"`
}
