// Package shell glues the organization store, navigation tracker,
// surface coordinator, and gesture navigator into the operations the
// bridge and the diagnostics API expose.
package shell

import (
	"context"
	"fmt"

	"github.com/MarinaBrowser/marina/shell/internal/domain/gesture"
	"github.com/MarinaBrowser/marina/shell/internal/domain/nav"
	"github.com/MarinaBrowser/marina/shell/internal/domain/org"
	"github.com/MarinaBrowser/marina/shell/internal/domain/overlay"
	"github.com/MarinaBrowser/marina/shell/internal/domain/surface"
	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// Config carries facade-level policy.
type Config struct {
	// DockDeletePolicy applies when a dock delete names no policy.
	DockDeletePolicy types.DockDeletePolicy
}

// Stats aggregates component counters for the diagnostics API.
type Stats struct {
	Org      types.Stats     `json:"org"`
	Surfaces surface.Stats   `json:"surfaces"`
	Gestures gesture.Summary `json:"gestures"`
	Tracked  int             `json:"tracked_tabs"`
}

// Shell is the user-facing operation surface of the coordination core.
type Shell struct {
	store    *org.Store
	tracker  *nav.Tracker
	coord    *surface.Coordinator
	gestures *gesture.Navigator
	agent    Agent
	cfg      Config
}

// New wires the facade. The agent is optional; attach it with WithAgent
// during boot.
func New(store *org.Store, tracker *nav.Tracker, coord *surface.Coordinator, gestures *gesture.Navigator, cfg Config) *Shell {
	if !cfg.DockDeletePolicy.Valid() {
		cfg.DockDeletePolicy = types.DockDeleteDemote
	}
	return &Shell{
		store:    store,
		tracker:  tracker,
		coord:    coord,
		gestures: gestures,
		cfg:      cfg,
	}
}

// WithAgent attaches the command-execution client. Wiring-time only.
func (s *Shell) WithAgent(a Agent) *Shell {
	s.agent = a
	return s
}

// CreateTab opens a tab, activates it, and mounts a surface when the
// url is web content. An empty realmID targets the default realm; an
// empty url opens the home overlay.
func (s *Shell) CreateTab(realmID string, dockID *string, url string) (*types.Tab, error) {
	if realmID == "" {
		realm, ok := s.store.DefaultRealm()
		if !ok {
			return nil, errs.New(errs.InvalidState, "no default realm")
		}
		realmID = realm.ID
	}
	tab, err := s.store.CreateTab(realmID, dockID, url)
	if err != nil {
		return nil, err
	}
	if !overlay.IsInternal(tab.URL) {
		if err := s.coord.Navigate(tab.ID, tab.URL); err != nil {
			return tab, err
		}
	}
	s.coord.SyncVisibility()
	return tab, nil
}

// CloseTab deletes the tab and releases its runtime state. The store
// auto-selects the most recently used survivor as active.
func (s *Shell) CloseTab(tabID string) error {
	if err := s.store.DeleteTab(tabID); err != nil {
		return err
	}
	s.coord.Close(tabID)
	s.tracker.Forget(tabID)
	s.coord.SyncVisibility()
	return nil
}

// SwitchTab activates the tab and reconciles surface visibility.
func (s *Shell) SwitchTab(tabID string) error {
	if err := s.store.SetActive(tabID); err != nil {
		return err
	}
	s.coord.SyncVisibility()
	return nil
}

// Navigate routes the active tab to url.
func (s *Shell) Navigate(url string) error {
	tab, ok := s.store.Active()
	if !ok {
		return errs.New(errs.InvalidState, "no active tab")
	}
	return s.coord.Navigate(tab.ID, url)
}

// NavigateTab routes a specific tab to url.
func (s *Shell) NavigateTab(tabID, url string) error {
	return s.coord.Navigate(tabID, url)
}

// GoBack resolves the back intent for the active tab. At the end of
// surface history on web content it lands on the home overlay; on an
// overlay with no history it is a no-op.
func (s *Shell) GoBack() {
	tab, ok := s.store.Active()
	if !ok {
		return
	}
	dec := s.tracker.ResolveBack(tab.ID, tab.URL, s.coord.CanGoBack(tab.ID))
	switch dec.Action {
	case nav.ActionDelegateBack:
		s.coord.GoBack(tab.ID)
	case nav.ActionShowOverlay:
		_ = s.coord.Navigate(tab.ID, dec.URL)
	}
}

// GoForward resolves the forward intent for the active tab. From an
// overlay it reveals the already-loaded surface at its last web URL
// instead of replaying a load.
func (s *Shell) GoForward() {
	tab, ok := s.store.Active()
	if !ok {
		return
	}
	dec := s.tracker.ResolveForward(tab.ID, tab.URL, s.coord.Exists(tab.ID), s.coord.CanGoForward(tab.ID))
	switch dec.Action {
	case nav.ActionRestoreWeb:
		if dec.ResetForward {
			s.coord.ClearForward(tab.ID)
		}
		_ = s.coord.Navigate(tab.ID, dec.URL)
	case nav.ActionDelegateForward:
		s.coord.GoForward(tab.ID)
	}
}

// ReloadOrStop toggles the active tab's load state.
func (s *Shell) ReloadOrStop() error {
	tab, ok := s.store.Active()
	if !ok {
		return errs.New(errs.InvalidState, "no active tab")
	}
	return s.coord.ReloadOrStop(tab.ID)
}

// HandleWheel feeds one wheel event into gesture detection.
func (s *Shell) HandleWheel(dx, dy float64) {
	s.gestures.Observe(dx, dy)
}

// HandleWheelEnd closes the gesture and applies its intent to the
// active tab.
func (s *Shell) HandleWheelEnd() {
	switch s.gestures.End() {
	case gesture.IntentBack:
		s.GoBack()
	case gesture.IntentForward:
		s.GoForward()
	}
}

// HandleNewWindow opens a popup request as a tab beside its opener.
func (s *Shell) HandleNewWindow(sourceTabID, url string) {
	realmID := ""
	if src, ok := s.store.Get(sourceTabID); ok {
		realmID = src.RealmID
	}
	_, _ = s.CreateTab(realmID, nil, url)
}

// UpdateTab applies a partial update. URL changes route through the
// navigation path so surfaces mount, queue, and hide correctly; other
// fields apply directly.
func (s *Shell) UpdateTab(tabID string, upd types.TabUpdate) (*types.Tab, error) {
	if upd.URL != nil {
		url := *upd.URL
		upd.URL = nil
		if err := s.coord.Navigate(tabID, url); err != nil {
			return nil, err
		}
	}
	if upd.Title == nil && upd.Favicon == nil && upd.IsLoading == nil && !upd.Touch {
		tab, ok := s.store.Get(tabID)
		if !ok {
			return nil, errs.New(errs.NotFound, "tab %s not found", tabID)
		}
		return tab, nil
	}
	return s.store.ApplyTabUpdate(tabID, upd)
}

// DeleteDock removes a dock. An empty policy falls back to the
// configured default.
func (s *Shell) DeleteDock(dockID string, policy types.DockDeletePolicy) error {
	if policy == "" {
		policy = s.cfg.DockDeletePolicy
	}
	return s.store.DeleteDock(dockID, policy)
}

// Command runs text through the agent service and applies the resulting
// action. Without an attached agent it degrades to an error.
func (s *Shell) Command(ctx context.Context, text string) (Action, error) {
	if s.agent == nil {
		return Action{}, errs.New(errs.InvalidState, "agent service unavailable")
	}
	var current string
	if tab, ok := s.store.Active(); ok {
		current = tab.URL
	}
	act, err := s.agent.Execute(ctx, text, current)
	if err != nil {
		return Action{}, fmt.Errorf("agent execute: %w", err)
	}
	if err := s.apply(act); err != nil {
		return act, err
	}
	return act, nil
}

func (s *Shell) apply(act Action) error {
	switch act.Kind {
	case ActionNavigate:
		return s.Navigate(act.URL)
	case ActionCreateTab:
		_, err := s.CreateTab("", nil, act.URL)
		return err
	case ActionSwitchTab:
		return s.SwitchTab(act.TabID)
	}
	return nil
}

// State snapshots the full organization state.
func (s *Shell) State() types.SidebarState {
	return s.store.Snapshot()
}

// Tabs lists every tab in bridge wire shape.
func (s *Shell) Tabs() []types.TabInfo {
	tabs := s.store.AllTabs()
	out := make([]types.TabInfo, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, t.Info())
	}
	return out
}

// ActiveTab returns the active tab enriched with surface history flags,
// or nil when no tab is active.
func (s *Shell) ActiveTab() *types.ActiveTabInfo {
	tab, ok := s.store.Active()
	if !ok {
		return nil
	}
	return &types.ActiveTabInfo{
		TabInfo:      tab.Info(),
		CanGoBack:    s.coord.CanGoBack(tab.ID),
		CanGoForward: s.coord.CanGoForward(tab.ID),
	}
}

// Stats aggregates counters from every component.
func (s *Shell) Stats() Stats {
	return Stats{
		Org:      s.store.Stats(),
		Surfaces: s.coord.Stats(),
		Gestures: s.gestures.Stats(),
		Tracked:  s.tracker.Size(),
	}
}
