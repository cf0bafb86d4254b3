// Package org holds the organization model: Realms containing Docks
// containing Tabs, plus loose and pinned tabs.
//
// The store is the single source of truth for persisted organization state.
// Every mutation enforces the model invariants (exactly one default realm,
// dock/tab realm agreement, contiguous order values) and publishes a full
// snapshot to subscribers. Accessors return copies; callers never observe
// live internals.
package org

import (
	"sort"
	"sync"
	"time"

	"github.com/MarinaBrowser/marina/shell/internal/domain/overlay"
	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
	"github.com/MarinaBrowser/marina/shell/internal/shared/id"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// Store owns Realm/Dock/Tab state and the process-wide active-tab selection
type Store struct {
	mu          sync.RWMutex
	realms      map[string]*types.Realm // Protected by mu
	docks       map[string]*types.Dock  // Protected by mu
	tabs        map[string]*types.Tab   // Protected by mu
	activeTabID *string                 // Protected by mu
	subscribers []func(types.SidebarState)
}

// NewStore creates an empty organization store
func NewStore() *Store {
	return &Store{
		realms: make(map[string]*types.Realm),
		docks:  make(map[string]*types.Dock),
		tabs:   make(map[string]*types.Tab),
	}
}

// Subscribe registers a snapshot-changed listener. Listeners receive the
// full current state after every mutation, on the mutating goroutine,
// outside the store lock. Consumers diff snapshots themselves.
func (s *Store) Subscribe(fn func(types.SidebarState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) publish(state types.SidebarState) {
	for _, fn := range s.subscribers {
		fn(state)
	}
}

// ============================================================================
// Creation
// ============================================================================

// CreateRealm creates a realm appended to the realm order. The first realm
// becomes the default realm.
func (s *Store) CreateRealm(name, icon, color string) (*types.Realm, error) {
	if name == "" {
		name = "New Realm"
	}

	now := time.Now()
	realm := &types.Realm{
		ID:        string(id.NewRealmID()),
		Name:      name,
		Icon:      icon,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	realm.IsDefault = len(s.realms) == 0
	realm.Order = len(s.realms)
	s.realms[realm.ID] = realm
	realmCopy := *realm
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return &realmCopy, nil
}

// CreateDock creates a dock appended to its realm's dock order
func (s *Store) CreateDock(realmID, name, icon, color string) (*types.Dock, error) {
	if name == "" {
		name = "New Dock"
	}

	s.mu.Lock()
	if _, ok := s.realms[realmID]; !ok {
		s.mu.Unlock()
		return nil, errs.New(errs.NotFound, "realm %s not found", realmID)
	}

	now := time.Now()
	dock := &types.Dock{
		ID:        string(id.NewDockID()),
		Name:      name,
		Icon:      icon,
		Color:     color,
		RealmID:   realmID,
		Order:     len(s.realmDocksLocked(realmID)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.docks[dock.ID] = dock
	dockCopy := *dock
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return &dockCopy, nil
}

// CreateTab creates a tab appended to its container's order and selects it
// as the active tab. An empty url lands on the home overlay.
func (s *Store) CreateTab(realmID string, dockID *string, url string) (*types.Tab, error) {
	if url == "" {
		url = overlay.HomeURL
	}

	s.mu.Lock()
	if _, ok := s.realms[realmID]; !ok {
		s.mu.Unlock()
		return nil, errs.New(errs.NotFound, "realm %s not found", realmID)
	}
	if dockID != nil {
		dock, ok := s.docks[*dockID]
		if !ok {
			s.mu.Unlock()
			return nil, errs.New(errs.NotFound, "dock %s not found", *dockID)
		}
		if dock.RealmID != realmID {
			s.mu.Unlock()
			return nil, errs.New(errs.InvalidState, "dock %s belongs to realm %s, not %s", *dockID, dock.RealmID, realmID)
		}
	}

	now := time.Now()
	tab := &types.Tab{
		ID:             string(id.NewTabID()),
		URL:            url,
		Title:          types.DefaultTabTitle,
		RealmID:        realmID,
		DockID:         dockID,
		Order:          len(s.containerTabsLocked(realmID, dockID)),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	s.tabs[tab.ID] = tab
	s.activeTabID = &tab.ID
	tabCopy := *tab
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return &tabCopy, nil
}

// ============================================================================
// Updates
// ============================================================================

// UpdateRealm applies a partial realm mutation
func (s *Store) UpdateRealm(realmID string, upd types.RealmUpdate) error {
	s.mu.Lock()
	realm, ok := s.realms[realmID]
	if !ok {
		s.mu.Unlock()
		return errs.New(errs.NotFound, "realm %s not found", realmID)
	}
	if upd.Name != nil {
		realm.Name = *upd.Name
	}
	if upd.Icon != nil {
		realm.Icon = *upd.Icon
	}
	if upd.Color != nil {
		realm.Color = *upd.Color
	}
	realm.UpdatedAt = time.Now()
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return nil
}

// UpdateDock applies a partial dock mutation
func (s *Store) UpdateDock(dockID string, upd types.DockUpdate) error {
	s.mu.Lock()
	dock, ok := s.docks[dockID]
	if !ok {
		s.mu.Unlock()
		return errs.New(errs.NotFound, "dock %s not found", dockID)
	}
	if upd.Name != nil {
		dock.Name = *upd.Name
	}
	if upd.Icon != nil {
		dock.Icon = *upd.Icon
	}
	if upd.Color != nil {
		dock.Color = *upd.Color
	}
	dock.UpdatedAt = time.Now()
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return nil
}

// SetCollapsed toggles a dock's collapsed flag
func (s *Store) SetCollapsed(dockID string, collapsed bool) error {
	s.mu.Lock()
	dock, ok := s.docks[dockID]
	if !ok {
		s.mu.Unlock()
		return errs.New(errs.NotFound, "dock %s not found", dockID)
	}
	dock.IsCollapsed = collapsed
	dock.UpdatedAt = time.Now()
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return nil
}

// ApplyTabUpdate applies a partial tab mutation and returns the updated tab.
// This is the event-path entry point used by the surface coordinator; callers
// racing a deletion receive NotFound and absorb it.
func (s *Store) ApplyTabUpdate(tabID string, upd types.TabUpdate) (*types.Tab, error) {
	s.mu.Lock()
	tab, ok := s.tabs[tabID]
	if !ok {
		s.mu.Unlock()
		return nil, errs.New(errs.NotFound, "tab %s not found", tabID)
	}
	if upd.URL != nil {
		tab.URL = *upd.URL
	}
	if upd.Title != nil {
		tab.Title = *upd.Title
	}
	if upd.Favicon != nil {
		tab.Favicon = *upd.Favicon
	}
	if upd.IsLoading != nil {
		tab.IsLoading = *upd.IsLoading
	}
	if upd.Touch {
		tab.LastAccessedAt = time.Now()
	}
	tabCopy := *tab
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return &tabCopy, nil
}

// SetActive selects the process-wide active tab
func (s *Store) SetActive(tabID string) error {
	s.mu.Lock()
	tab, ok := s.tabs[tabID]
	if !ok {
		s.mu.Unlock()
		return errs.New(errs.NotFound, "tab %s not found", tabID)
	}
	tab.LastAccessedAt = time.Now()
	s.activeTabID = &tab.ID
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return nil
}

// ============================================================================
// Accessors
// ============================================================================

// Get retrieves a tab by ID
func (s *Store) Get(tabID string) (*types.Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tab, ok := s.tabs[tabID]
	if !ok {
		return nil, false
	}

	// Return a copy to prevent external modifications
	tabCopy := *tab
	return &tabCopy, true
}

// GetRealm retrieves a realm by ID
func (s *Store) GetRealm(realmID string) (*types.Realm, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	realm, ok := s.realms[realmID]
	if !ok {
		return nil, false
	}
	realmCopy := *realm
	return &realmCopy, true
}

// GetDock retrieves a dock by ID
func (s *Store) GetDock(dockID string) (*types.Dock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dock, ok := s.docks[dockID]
	if !ok {
		return nil, false
	}
	dockCopy := *dock
	return &dockCopy, true
}

// Active returns the active tab, if any
func (s *Store) Active() (*types.Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.activeTabID == nil {
		return nil, false
	}
	tab, ok := s.tabs[*s.activeTabID]
	if !ok {
		return nil, false
	}
	tabCopy := *tab
	return &tabCopy, true
}

// ActiveID returns the active tab id, if any
func (s *Store) ActiveID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.activeTabID == nil {
		return "", false
	}
	return *s.activeTabID, true
}

// Realms returns all realms in order
func (s *Store) Realms() []types.Realm {
	s.mu.RLock()
	defer s.mu.RUnlock()

	realms := make([]types.Realm, 0, len(s.realms))
	for _, realm := range s.realms {
		realms = append(realms, *realm)
	}
	sort.Slice(realms, func(i, j int) bool { return realms[i].Order < realms[j].Order })
	return realms
}

// DefaultRealm returns the default realm, if any realm exists
func (s *Store) DefaultRealm() (*types.Realm, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, realm := range s.realms {
		if realm.IsDefault {
			realmCopy := *realm
			return &realmCopy, true
		}
	}
	return nil, false
}

// Docks returns a realm's docks in order
func (s *Store) Docks(realmID string) []types.Dock {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docks := make([]types.Dock, 0)
	for _, dock := range s.realmDocksLocked(realmID) {
		docks = append(docks, *dock)
	}
	return docks
}

// DockTabs returns a dock's tabs in order
func (s *Store) DockTabs(dockID string) []types.Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dock, ok := s.docks[dockID]
	if !ok {
		return nil
	}
	tabs := make([]types.Tab, 0)
	for _, tab := range s.containerTabsLocked(dock.RealmID, &dock.ID) {
		tabs = append(tabs, *tab)
	}
	return tabs
}

// LooseTabs returns a realm's loose tabs in order
func (s *Store) LooseTabs(realmID string) []types.Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tabs := make([]types.Tab, 0)
	for _, tab := range s.containerTabsLocked(realmID, nil) {
		tabs = append(tabs, *tab)
	}
	return tabs
}

// AllTabs returns every tab, grouped by realm order then container order
func (s *Store) AllTabs() []types.Tab {
	state := s.Snapshot()
	return state.Tabs
}

// Stats returns organization statistics
func (s *Store) Stats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		TotalRealms: len(s.realms),
		TotalDocks:  len(s.docks),
		TotalTabs:   len(s.tabs),
	}
	for _, tab := range s.tabs {
		if tab.DockID == nil {
			stats.LooseTabs++
		}
		if tab.IsPinned {
			stats.PinnedTabs++
		}
	}

	// Copy pointer to avoid race
	if s.activeTabID != nil {
		active := *s.activeTabID
		stats.ActiveTabID = &active
	}
	return stats
}

// ============================================================================
// Snapshot / Restore
// ============================================================================

// Snapshot captures the full organization state
func (s *Store) Snapshot() types.SidebarState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// snapshotLocked builds a deep copy of current state (must hold mu)
func (s *Store) snapshotLocked() types.SidebarState {
	state := types.SidebarState{
		Realms:  make([]types.Realm, 0, len(s.realms)),
		Docks:   make([]types.Dock, 0, len(s.docks)),
		Tabs:    make([]types.Tab, 0, len(s.tabs)),
		SavedAt: time.Now(),
	}
	for _, realm := range s.realms {
		state.Realms = append(state.Realms, *realm)
	}
	for _, dock := range s.docks {
		state.Docks = append(state.Docks, *dock)
	}
	for _, tab := range s.tabs {
		state.Tabs = append(state.Tabs, *tab)
	}
	sort.Slice(state.Realms, func(i, j int) bool { return state.Realms[i].Order < state.Realms[j].Order })
	sort.Slice(state.Docks, func(i, j int) bool {
		if state.Docks[i].RealmID != state.Docks[j].RealmID {
			return state.Docks[i].RealmID < state.Docks[j].RealmID
		}
		return state.Docks[i].Order < state.Docks[j].Order
	})
	sort.Slice(state.Tabs, func(i, j int) bool {
		ti, tj := state.Tabs[i], state.Tabs[j]
		if ti.RealmID != tj.RealmID {
			return ti.RealmID < tj.RealmID
		}
		di, dj := "", ""
		if ti.DockID != nil {
			di = *ti.DockID
		}
		if tj.DockID != nil {
			dj = *tj.DockID
		}
		if di != dj {
			return di < dj
		}
		return ti.Order < tj.Order
	})
	if s.activeTabID != nil {
		active := *s.activeTabID
		state.ActiveTabID = &active
	}
	return state
}

// Restore replaces all state from a persisted snapshot. Orphaned references
// (tabs pointing at missing realms or docks, docks pointing at missing
// realms) are dropped, order values are re-normalized, and the default-realm
// invariant is re-established. Returns the number of dropped records.
func (s *Store) Restore(state types.SidebarState) int {
	s.mu.Lock()

	s.realms = make(map[string]*types.Realm, len(state.Realms))
	s.docks = make(map[string]*types.Dock, len(state.Docks))
	s.tabs = make(map[string]*types.Tab, len(state.Tabs))
	s.activeTabID = nil
	dropped := 0

	for i := range state.Realms {
		realm := state.Realms[i]
		s.realms[realm.ID] = &realm
	}

	// Exactly one default realm: first marked wins, else first by order
	var defaultSeen bool
	for _, realm := range s.sortedRealmsLocked() {
		if realm.IsDefault {
			if defaultSeen {
				realm.IsDefault = false
			}
			defaultSeen = true
		}
	}
	if !defaultSeen {
		if realms := s.sortedRealmsLocked(); len(realms) > 0 {
			realms[0].IsDefault = true
		}
	}

	for i := range state.Docks {
		dock := state.Docks[i]
		if _, ok := s.realms[dock.RealmID]; !ok {
			dropped++
			continue
		}
		s.docks[dock.ID] = &dock
	}

	for i := range state.Tabs {
		tab := state.Tabs[i]
		if _, ok := s.realms[tab.RealmID]; !ok {
			dropped++
			continue
		}
		if tab.DockID != nil {
			dock, ok := s.docks[*tab.DockID]
			if !ok || dock.RealmID != tab.RealmID {
				dropped++
				continue
			}
		}
		s.tabs[tab.ID] = &tab
	}

	s.normalizeAllLocked()

	if state.ActiveTabID != nil {
		if tab, ok := s.tabs[*state.ActiveTabID]; ok {
			s.activeTabID = &tab.ID
		}
	}

	restored := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(restored)
	return dropped
}

func (s *Store) sortedRealmsLocked() []*types.Realm {
	realms := make([]*types.Realm, 0, len(s.realms))
	for _, realm := range s.realms {
		realms = append(realms, realm)
	}
	sort.Slice(realms, func(i, j int) bool { return realms[i].Order < realms[j].Order })
	return realms
}
