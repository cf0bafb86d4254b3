package org

import (
	"sort"
	"time"

	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// ContainerKind selects which ordered collection a Reorder targets
type ContainerKind string

const (
	// ContainerRealms is the global realm list
	ContainerRealms ContainerKind = "realms"
	// ContainerDocks is a realm's dock list
	ContainerDocks ContainerKind = "docks"
	// ContainerDockTabs is a dock's tab list
	ContainerDockTabs ContainerKind = "dock_tabs"
	// ContainerLooseTabs is a realm's loose-tab list
	ContainerLooseTabs ContainerKind = "loose_tabs"
)

// Container addresses one ordered collection
type Container struct {
	Kind    ContainerKind `json:"kind"`
	RealmID string        `json:"realm_id,omitempty"` // for docks and loose_tabs
	DockID  string        `json:"dock_id,omitempty"`  // for dock_tabs
}

// ============================================================================
// Reorder / Move
// ============================================================================

// Reorder replaces a container's order with the supplied sequence. The id
// set must exactly match current membership or the call fails with
// InvalidState, leaving prior order intact.
func (s *Store) Reorder(c Container, orderedIDs []string) error {
	s.mu.Lock()

	// Membership keyed by id, each value renumbering its record
	var setters map[string]func(int)
	switch c.Kind {
	case ContainerRealms:
		setters = make(map[string]func(int), len(s.realms))
		for _, realm := range s.realms {
			setters[realm.ID] = func(o int) { realm.Order = o }
		}
	case ContainerDocks:
		if _, ok := s.realms[c.RealmID]; !ok {
			s.mu.Unlock()
			return errs.New(errs.NotFound, "realm %s not found", c.RealmID)
		}
		setters = make(map[string]func(int))
		for _, dock := range s.realmDocksLocked(c.RealmID) {
			setters[dock.ID] = func(o int) { dock.Order = o }
		}
	case ContainerDockTabs:
		dock, ok := s.docks[c.DockID]
		if !ok {
			s.mu.Unlock()
			return errs.New(errs.NotFound, "dock %s not found", c.DockID)
		}
		setters = make(map[string]func(int))
		for _, tab := range s.containerTabsLocked(dock.RealmID, &dock.ID) {
			setters[tab.ID] = func(o int) { tab.Order = o }
		}
	case ContainerLooseTabs:
		if _, ok := s.realms[c.RealmID]; !ok {
			s.mu.Unlock()
			return errs.New(errs.NotFound, "realm %s not found", c.RealmID)
		}
		setters = make(map[string]func(int))
		for _, tab := range s.containerTabsLocked(c.RealmID, nil) {
			setters[tab.ID] = func(o int) { tab.Order = o }
		}
	default:
		s.mu.Unlock()
		return errs.New(errs.InvalidState, "unknown container kind %q", c.Kind)
	}

	if len(orderedIDs) != len(setters) {
		s.mu.Unlock()
		return errs.New(errs.InvalidState, "reorder id set has %d entries, container has %d", len(orderedIDs), len(setters))
	}
	seen := make(map[string]bool, len(orderedIDs))
	for _, oid := range orderedIDs {
		if _, ok := setters[oid]; !ok || seen[oid] {
			s.mu.Unlock()
			return errs.New(errs.InvalidState, "reorder id set does not match container membership (%s)", oid)
		}
		seen[oid] = true
	}

	for i, oid := range orderedIDs {
		setters[oid](i)
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return nil
}

// MoveTab moves a tab to a container position, re-normalizing order values
// in both source and destination. A negative or out-of-range index appends.
// Pinned state travels with the tab.
func (s *Store) MoveTab(tabID, targetRealmID string, targetDockID *string, targetIndex int) error {
	s.mu.Lock()

	tab, ok := s.tabs[tabID]
	if !ok {
		s.mu.Unlock()
		return errs.New(errs.NotFound, "tab %s not found", tabID)
	}
	if _, ok := s.realms[targetRealmID]; !ok {
		s.mu.Unlock()
		return errs.New(errs.NotFound, "realm %s not found", targetRealmID)
	}
	if targetDockID != nil {
		dock, ok := s.docks[*targetDockID]
		if !ok {
			s.mu.Unlock()
			return errs.New(errs.NotFound, "dock %s not found", *targetDockID)
		}
		if dock.RealmID != targetRealmID {
			s.mu.Unlock()
			return errs.New(errs.InvalidState, "dock %s belongs to realm %s, not %s", *targetDockID, dock.RealmID, targetRealmID)
		}
	}

	srcRealmID := tab.RealmID
	srcDockID := cloneID(tab.DockID)

	// Destination membership without the moving tab
	dest := s.containerTabsLocked(targetRealmID, targetDockID)
	filtered := dest[:0]
	for _, t := range dest {
		if t.ID != tab.ID {
			filtered = append(filtered, t)
		}
	}
	if targetIndex < 0 || targetIndex > len(filtered) {
		targetIndex = len(filtered)
	}

	tab.RealmID = targetRealmID
	tab.DockID = cloneID(targetDockID)
	tab.LastAccessedAt = time.Now()

	for i, t := range filtered[:targetIndex] {
		t.Order = i
	}
	tab.Order = targetIndex
	for i, t := range filtered[targetIndex:] {
		t.Order = targetIndex + 1 + i
	}

	if srcRealmID != targetRealmID || !sameID(srcDockID, targetDockID) {
		s.normalizeTabsLocked(srcRealmID, srcDockID)
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return nil
}

// SetPinned toggles a tab's pinned flag
func (s *Store) SetPinned(tabID string, pinned bool) error {
	s.mu.Lock()
	tab, ok := s.tabs[tabID]
	if !ok {
		s.mu.Unlock()
		return errs.New(errs.NotFound, "tab %s not found", tabID)
	}
	tab.IsPinned = pinned
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return nil
}

// ============================================================================
// Deletion
// ============================================================================

// DeleteTab removes a tab, re-normalizing its container. Deleting the
// active tab selects the most recently accessed survivor, or clears the
// selection when none remain.
func (s *Store) DeleteTab(tabID string) error {
	s.mu.Lock()
	tab, ok := s.tabs[tabID]
	if !ok {
		s.mu.Unlock()
		return errs.New(errs.NotFound, "tab %s not found", tabID)
	}

	realmID := tab.RealmID
	dockID := cloneID(tab.DockID)
	delete(s.tabs, tabID)
	s.normalizeTabsLocked(realmID, dockID)

	if s.activeTabID != nil && *s.activeTabID == tabID {
		s.autoSelectLocked()
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return nil
}

// DeleteDock removes a dock, applying the given policy to its tabs. An
// empty policy demotes.
func (s *Store) DeleteDock(dockID string, policy types.DockDeletePolicy) error {
	if policy == "" {
		policy = types.DockDeleteDemote
	}
	if !policy.Valid() {
		return errs.New(errs.InvalidOperation, "unknown dock delete policy %q", policy)
	}

	s.mu.Lock()
	dock, ok := s.docks[dockID]
	if !ok {
		s.mu.Unlock()
		return errs.New(errs.NotFound, "dock %s not found", dockID)
	}

	realmID := dock.RealmID
	docked := s.containerTabsLocked(realmID, &dock.ID)
	activeDeleted := false

	switch policy {
	case types.DockDeleteDemote:
		loose := len(s.containerTabsLocked(realmID, nil))
		for i, tab := range docked {
			tab.DockID = nil
			tab.Order = loose + i
		}
	case types.DockDeleteTabs:
		for _, tab := range docked {
			if s.activeTabID != nil && *s.activeTabID == tab.ID {
				activeDeleted = true
			}
			delete(s.tabs, tab.ID)
		}
	}

	delete(s.docks, dockID)
	s.normalizeDocksLocked(realmID)
	if activeDeleted {
		s.autoSelectLocked()
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return nil
}

// DeleteRealm removes an empty, non-default realm
func (s *Store) DeleteRealm(realmID string) error {
	s.mu.Lock()
	realm, ok := s.realms[realmID]
	if !ok {
		s.mu.Unlock()
		return errs.New(errs.NotFound, "realm %s not found", realmID)
	}
	if realm.IsDefault {
		s.mu.Unlock()
		return errs.New(errs.InvalidOperation, "cannot delete the default realm")
	}
	if len(s.realms) == 1 {
		s.mu.Unlock()
		return errs.New(errs.InvalidOperation, "cannot delete the only realm")
	}
	for _, dock := range s.docks {
		if dock.RealmID == realmID {
			s.mu.Unlock()
			return errs.New(errs.InvalidOperation, "realm %s still contains docks", realmID)
		}
	}
	for _, tab := range s.tabs {
		if tab.RealmID == realmID {
			s.mu.Unlock()
			return errs.New(errs.InvalidOperation, "realm %s still contains tabs", realmID)
		}
	}

	delete(s.realms, realmID)
	s.normalizeRealmsLocked()
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(state)
	return nil
}

// ============================================================================
// Internal helpers (must hold mu)
// ============================================================================

func (s *Store) realmDocksLocked(realmID string) []*types.Dock {
	docks := make([]*types.Dock, 0)
	for _, dock := range s.docks {
		if dock.RealmID == realmID {
			docks = append(docks, dock)
		}
	}
	sort.Slice(docks, func(i, j int) bool { return docks[i].Order < docks[j].Order })
	return docks
}

// containerTabsLocked returns a container's tabs sorted by order. A nil
// dockID addresses the realm's loose set.
func (s *Store) containerTabsLocked(realmID string, dockID *string) []*types.Tab {
	tabs := make([]*types.Tab, 0)
	for _, tab := range s.tabs {
		if dockID == nil {
			if tab.DockID == nil && tab.RealmID == realmID {
				tabs = append(tabs, tab)
			}
		} else if tab.DockID != nil && *tab.DockID == *dockID {
			tabs = append(tabs, tab)
		}
	}
	sort.Slice(tabs, func(i, j int) bool { return tabs[i].Order < tabs[j].Order })
	return tabs
}

func (s *Store) normalizeTabsLocked(realmID string, dockID *string) {
	for i, tab := range s.containerTabsLocked(realmID, dockID) {
		tab.Order = i
	}
}

func (s *Store) normalizeDocksLocked(realmID string) {
	for i, dock := range s.realmDocksLocked(realmID) {
		dock.Order = i
	}
	s.normalizeTabsLocked(realmID, nil)
}

func (s *Store) normalizeRealmsLocked() {
	for i, realm := range s.sortedRealmsLocked() {
		realm.Order = i
	}
}

// normalizeAllLocked renumbers every container, used after Restore
func (s *Store) normalizeAllLocked() {
	s.normalizeRealmsLocked()
	for _, realm := range s.realms {
		s.normalizeTabsLocked(realm.ID, nil)
		for i, dock := range s.realmDocksLocked(realm.ID) {
			dock.Order = i
			s.normalizeTabsLocked(dock.RealmID, &dock.ID)
		}
	}
}

// autoSelectLocked picks the most recently accessed tab as active
func (s *Store) autoSelectLocked() {
	s.activeTabID = nil
	var best *types.Tab
	for _, tab := range s.tabs {
		if best == nil || tab.LastAccessedAt.After(best.LastAccessedAt) {
			best = tab
		}
	}
	if best != nil {
		s.activeTabID = &best.ID
	}
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
