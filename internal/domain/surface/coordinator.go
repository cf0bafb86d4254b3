package surface

import (
	"context"
	"sync"
	"time"

	"github.com/MarinaBrowser/marina/shell/internal/domain/overlay"
	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

const defaultMountTimeout = 10 * time.Second

// binding is the runtime state the coordinator keeps per tab.
type binding struct {
	state   State
	surf    Surface
	crashed bool
	// maskForward hides a stale forward flag after an overlay restore
	// until the next navigation event refreshes it.
	maskForward bool
}

// Coordinator owns surface bindings and the pending-navigation queue.
// One mutex serializes all transitions; the only blocking call, the
// factory mount round-trip, runs outside it.
type Coordinator struct {
	mu      sync.Mutex
	cfg     Config
	store   TabStore
	history History
	factory Factory
	hooks   Hooks

	bindings map[string]*binding
	pending  map[string]string // tab id -> queued url, latest wins
}

// New creates a coordinator around the given store, tracker and factory.
func New(store TabStore, history History, factory Factory, cfg Config) *Coordinator {
	if cfg.MountTimeout <= 0 {
		cfg.MountTimeout = defaultMountTimeout
	}
	return &Coordinator{
		cfg:      cfg,
		store:    store,
		history:  history,
		factory:  factory,
		bindings: make(map[string]*binding),
		pending:  make(map[string]string),
	}
}

// SetHooks installs the out-of-band effect receivers.
func (c *Coordinator) SetHooks(h Hooks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = h
}

// EnsureSurface mounts a surface for the tab if none is live. Mounting
// is asynchronous; the call returns once the binding is registered. A
// crashed binding is released and remounted.
func (c *Coordinator) EnsureSurface(tabID string) error {
	if _, ok := c.store.Get(tabID); !ok {
		return errs.New(errs.NotFound, "tab %s not found", tabID)
	}
	c.mu.Lock()
	if b, ok := c.bindings[tabID]; ok && !b.crashed {
		c.mu.Unlock()
		return nil
	}
	b := c.replaceLocked(tabID)
	c.mu.Unlock()
	go c.mount(tabID, b)
	return nil
}

// Navigate routes a tab to url. Internal-scheme URLs never reach a
// surface: the tab flips to its overlay and any mounted surface hides
// with its history intact. Web URLs mount a surface on demand, queue
// while a mount is in flight (latest wins), and skip the dispatch when
// the surface is already at url to avoid aborting its load state.
func (c *Coordinator) Navigate(tabID, url string) error {
	if url == "" {
		return errs.New(errs.InvalidOperation, "navigate: empty url")
	}
	if _, ok := c.store.Get(tabID); !ok {
		return errs.New(errs.NotFound, "tab %s not found", tabID)
	}

	if overlay.IsInternal(url) {
		if _, err := c.store.ApplyTabUpdate(tabID, types.TabUpdate{URL: &url, IsLoading: boolPtr(false)}); err != nil {
			return err
		}
		c.mu.Lock()
		if b, ok := c.bindings[tabID]; ok {
			c.syncVisibilityLocked(tabID, b)
		}
		c.mu.Unlock()
		return nil
	}

	if _, err := c.store.ApplyTabUpdate(tabID, types.TabUpdate{URL: &url, IsLoading: boolPtr(true)}); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bindings[tabID]
	switch {
	case !ok || b.crashed:
		nb := c.replaceLocked(tabID)
		c.pending[tabID] = url
		go c.mount(tabID, nb)
	case b.state == StateMounting:
		c.pending[tabID] = url
	default:
		if b.surf.URL() != url {
			b.surf.Navigate(url)
		}
		c.syncVisibilityLocked(tabID, b)
	}
	return nil
}

// GoBack delegates to the tab's surface history.
func (c *Coordinator) GoBack(tabID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.mountedLocked(tabID); ok {
		b.surf.GoBack()
	}
}

// GoForward delegates to the tab's surface history.
func (c *Coordinator) GoForward(tabID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.mountedLocked(tabID); ok {
		b.surf.GoForward()
	}
}

// ReloadOrStop stops a loading surface and reloads an idle one. A tab
// whose surface crashed or never mounted gets a fresh navigation to its
// current URL instead, which remounts it.
func (c *Coordinator) ReloadOrStop(tabID string) error {
	c.mu.Lock()
	if b, ok := c.mountedLocked(tabID); ok {
		if b.surf.Loading() {
			b.surf.Stop()
		} else {
			b.surf.Reload()
		}
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	tab, ok := c.store.Get(tabID)
	if !ok {
		return errs.New(errs.NotFound, "tab %s not found", tabID)
	}
	if overlay.IsInternal(tab.URL) {
		return nil
	}
	return c.Navigate(tabID, tab.URL)
}

// SyncVisibility reconciles every mounted surface against the active
// tab. At most one surface ends up visible: the active tab's, and only
// while its URL is outside the internal scheme.
func (c *Coordinator) SyncVisibility() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for tabID, b := range c.bindings {
		c.syncVisibilityLocked(tabID, b)
	}
}

// Close releases the tab's surface and drops any queued navigation.
// An in-flight mount discovers the release on completion and discards
// its handle. Safe for tabs that never mounted.
func (c *Coordinator) Close(tabID string) {
	c.mu.Lock()
	b, ok := c.bindings[tabID]
	delete(c.bindings, tabID)
	delete(c.pending, tabID)
	c.mu.Unlock()
	if ok && b.surf != nil {
		b.surf.Close()
	}
}

// HandleEvent ingests one surface report. Events for tabs without a
// binding report false so the caller can log the drop; a tab deleted
// between emission and delivery never raises on this path.
func (c *Coordinator) HandleEvent(tabID string, ev Event) bool {
	c.mu.Lock()
	b, ok := c.bindings[tabID]
	if !ok {
		c.mu.Unlock()
		return false
	}

	// Only binding state mutates under the lock. Store and tracker
	// updates run after the unlock: the store publishes change
	// notifications synchronously on this goroutine, and subscribers
	// call back into the coordinator.
	var (
		upd    *types.TabUpdate
		record string
		resync bool
		after  func()
	)
	switch ev.Kind {
	case EventStartLoading:
		upd = &types.TabUpdate{IsLoading: boolPtr(true)}
	case EventStopLoading:
		upd = &types.TabUpdate{IsLoading: boolPtr(false)}
	case EventNavigated, EventNavigatedInPage:
		b.maskForward = false
		if ev.URL != "" {
			url := ev.URL
			upd = &types.TabUpdate{URL: &url}
			record = url
			resync = true
		}
	case EventTitleChanged:
		title := ev.Title
		upd = &types.TabUpdate{Title: &title}
	case EventFaviconChanged:
		if fn := c.hooks.Favicon; fn != nil {
			icon := ev.IconURL
			after = func() {
				if tab, found := c.store.Get(tabID); found {
					fn(tabID, tab.URL, icon)
				}
			}
		}
	case EventCrashed:
		b.crashed = true
		upd = &types.TabUpdate{IsLoading: boolPtr(false)}
		if fn := c.hooks.Crashed; fn != nil {
			after = func() { fn(tabID) }
		}
	case EventNewWindow:
		if fn := c.hooks.NewWindow; fn != nil {
			url := ev.URL
			after = func() { fn(tabID, url) }
		}
	}
	c.mu.Unlock()

	if upd != nil {
		c.applyUpdate(tabID, *upd)
	}
	if record != "" {
		c.history.RecordNavigation(tabID, record)
	}
	if resync {
		c.mu.Lock()
		if cur, live := c.bindings[tabID]; live && cur == b {
			c.syncVisibilityLocked(tabID, cur)
		}
		c.mu.Unlock()
	}
	if after != nil {
		after()
	}
	return true
}

// State reports the tab's binding state. Released and never-mounted
// tabs both report StateNoSurface.
func (c *Coordinator) State(tabID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bindings[tabID]
	if !ok {
		return StateNoSurface
	}
	return b.state
}

// Exists reports whether the tab has a live binding, mounted or still
// mounting.
func (c *Coordinator) Exists(tabID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bindings[tabID]
	return ok && !b.crashed
}

// Crashed reports whether the tab's surface died and awaits an explicit
// remount.
func (c *Coordinator) Crashed(tabID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bindings[tabID]
	return ok && b.crashed
}

// CanGoBack reports the surface's native back availability.
func (c *Coordinator) CanGoBack(tabID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.mountedLocked(tabID)
	return ok && b.surf.CanGoBack()
}

// CanGoForward reports the surface's native forward availability,
// masked after ClearForward until the next navigation event.
func (c *Coordinator) CanGoForward(tabID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.mountedLocked(tabID)
	return ok && !b.maskForward && b.surf.CanGoForward()
}

// ClearForward masks the forward flag after an overlay restore so a
// stale mirror cannot offer a forward step that no longer exists.
func (c *Coordinator) ClearForward(tabID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.bindings[tabID]; ok {
		b.maskForward = true
	}
}

// Stats counts bindings by state.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Pending: len(c.pending)}
	for _, b := range c.bindings {
		if b.crashed {
			s.Crashed++
			continue
		}
		switch b.state {
		case StateMounting:
			s.Mounting++
		case StateMountedVisible:
			s.Visible++
		case StateMountedHidden:
			s.Hidden++
		}
	}
	return s
}

// mount completes the NoSurface to Mounted transition off the lock and
// applies the queued navigation, if any, before syncing visibility.
func (c *Coordinator) mount(tabID string, owner *binding) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.MountTimeout)
	surf, err := c.factory.Create(ctx, tabID)
	cancel()

	c.mu.Lock()
	if c.bindings[tabID] != owner {
		// Released or replaced while the embedder was mounting.
		c.mu.Unlock()
		if err == nil {
			surf.Close()
		}
		return
	}
	if err != nil {
		delete(c.bindings, tabID)
		delete(c.pending, tabID)
		fn := c.hooks.Crashed
		c.mu.Unlock()
		// Off the lock: the store publish may re-enter the coordinator.
		c.applyUpdate(tabID, types.TabUpdate{IsLoading: boolPtr(false)})
		if fn != nil {
			fn(tabID)
		}
		return
	}
	owner.surf = surf
	owner.state = StateMountedHidden
	if url, ok := c.pending[tabID]; ok {
		delete(c.pending, tabID)
		surf.Navigate(url)
	}
	c.syncVisibilityLocked(tabID, owner)
	c.mu.Unlock()
}

// replaceLocked installs a fresh mounting binding, closing any previous
// surface handle.
func (c *Coordinator) replaceLocked(tabID string) *binding {
	if old, ok := c.bindings[tabID]; ok && old.surf != nil {
		old.surf.Close()
	}
	b := &binding{state: StateMounting}
	c.bindings[tabID] = b
	return b
}

// mountedLocked returns the tab's binding when it holds a usable
// mounted surface.
func (c *Coordinator) mountedLocked(tabID string) (*binding, bool) {
	b, ok := c.bindings[tabID]
	if !ok || b.crashed || b.surf == nil {
		return nil, false
	}
	return b, true
}

func (c *Coordinator) syncVisibilityLocked(tabID string, b *binding) {
	if b.surf == nil || b.crashed {
		return
	}
	tab, ok := c.store.Get(tabID)
	if !ok {
		return
	}
	activeID, _ := c.store.ActiveID()
	visible := tabID == activeID && !overlay.IsInternal(tab.URL)
	switch {
	case visible && b.state != StateMountedVisible:
		b.state = StateMountedVisible
		b.surf.Show()
	case !visible && b.state != StateMountedHidden:
		b.state = StateMountedHidden
		b.surf.Hide()
	}
}

// applyUpdate forwards a transient-field update, absorbing the missing
// tab case: events racing a deletion drop here.
func (c *Coordinator) applyUpdate(tabID string, upd types.TabUpdate) {
	_, _ = c.store.ApplyTabUpdate(tabID, upd)
}

func boolPtr(b bool) *bool { return &b }
