package org

import (
	"testing"
	"time"

	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// assertContiguous checks the gap-free order invariant for every container
func assertContiguous(t *testing.T, s *Store) {
	t.Helper()

	check := func(name string, orders []int) {
		t.Helper()
		seen := make(map[int]bool, len(orders))
		for _, o := range orders {
			if o < 0 || o >= len(orders) || seen[o] {
				t.Fatalf("%s orders not contiguous: %v", name, orders)
			}
			seen[o] = true
		}
	}

	realms := s.Realms()
	realmOrders := make([]int, 0, len(realms))
	for _, realm := range realms {
		realmOrders = append(realmOrders, realm.Order)
	}
	check("realm", realmOrders)

	for _, realm := range realms {
		docks := s.Docks(realm.ID)
		dockOrders := make([]int, 0, len(docks))
		for _, dock := range docks {
			dockOrders = append(dockOrders, dock.Order)
		}
		check("dock["+realm.Name+"]", dockOrders)

		loose := s.LooseTabs(realm.ID)
		looseOrders := make([]int, 0, len(loose))
		for _, tab := range loose {
			looseOrders = append(looseOrders, tab.Order)
		}
		check("loose["+realm.Name+"]", looseOrders)

		for _, dock := range docks {
			tabs := s.DockTabs(dock.ID)
			tabOrders := make([]int, 0, len(tabs))
			for _, tab := range tabs {
				tabOrders = append(tabOrders, tab.Order)
			}
			check("tabs["+dock.Name+"]", tabOrders)
		}
	}
}

func TestOrdersStayContiguous(t *testing.T) {
	s := NewStore()
	personal, _ := s.CreateRealm("Personal", "", "")
	work, _ := s.CreateRealm("Work", "", "")
	reading, _ := s.CreateDock(personal.ID, "Reading", "", "")
	research, _ := s.CreateDock(work.ID, "Research", "", "")

	t1, _ := s.CreateTab(personal.ID, nil, "https://a.example")
	t2, _ := s.CreateTab(personal.ID, &reading.ID, "https://b.example")
	t3, _ := s.CreateTab(personal.ID, &reading.ID, "https://c.example")
	t4, _ := s.CreateTab(work.ID, &research.ID, "https://d.example")
	assertContiguous(t, s)

	if err := s.MoveTab(t2.ID, work.ID, &research.ID, 0); err != nil {
		t.Fatalf("MoveTab failed: %v", err)
	}
	assertContiguous(t, s)

	if err := s.Reorder(Container{Kind: ContainerDockTabs, DockID: research.ID}, []string{t4.ID, t2.ID}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	assertContiguous(t, s)

	if err := s.DeleteTab(t3.ID); err != nil {
		t.Fatalf("DeleteTab failed: %v", err)
	}
	assertContiguous(t, s)

	if err := s.MoveTab(t1.ID, personal.ID, &reading.ID, -1); err != nil {
		t.Fatalf("MoveTab append failed: %v", err)
	}
	assertContiguous(t, s)

	if err := s.DeleteDock(research.ID, types.DockDeleteDemote); err != nil {
		t.Fatalf("DeleteDock failed: %v", err)
	}
	assertContiguous(t, s)
}

func TestReorderRealms(t *testing.T) {
	s := NewStore()
	a, _ := s.CreateRealm("A", "", "")
	b, _ := s.CreateRealm("B", "", "")
	c, _ := s.CreateRealm("C", "", "")

	if err := s.Reorder(Container{Kind: ContainerRealms}, []string{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	realms := s.Realms()
	want := []string{"C", "A", "B"}
	for i, realm := range realms {
		if realm.Name != want[i] {
			t.Errorf("realm[%d] = %s, want %s", i, realm.Name, want[i])
		}
	}
	assertContiguous(t, s)
}

func TestReorderRejectsMismatchedSet(t *testing.T) {
	s := NewStore()
	realm, _ := s.CreateRealm("Personal", "", "")
	t1, _ := s.CreateTab(realm.ID, nil, "")
	t2, _ := s.CreateTab(realm.ID, nil, "")

	cases := [][]string{
		{t1.ID},                     // missing member
		{t1.ID, t2.ID, "tab_extra"}, // extra member
		{t1.ID, t1.ID},              // duplicate
		{t1.ID, "tab_unknown"},      // unknown id
	}
	for _, ids := range cases {
		err := s.Reorder(Container{Kind: ContainerLooseTabs, RealmID: realm.ID}, ids)
		if !errs.Is(err, errs.InvalidState) {
			t.Errorf("Reorder(%v) should be InvalidState, got %v", ids, err)
		}
	}

	// Prior order must be intact after rejections
	loose := s.LooseTabs(realm.ID)
	if loose[0].ID != t1.ID || loose[1].ID != t2.ID {
		t.Error("failed reorder must leave prior order intact")
	}
}

func TestReorderMissingContainer(t *testing.T) {
	s := NewStore()
	if err := s.Reorder(Container{Kind: ContainerDocks, RealmID: "realm_ghost"}, nil); !errs.Is(err, errs.NotFound) {
		t.Errorf("missing realm should be NotFound, got %v", err)
	}
	if err := s.Reorder(Container{Kind: ContainerDockTabs, DockID: "dock_ghost"}, nil); !errs.Is(err, errs.NotFound) {
		t.Errorf("missing dock should be NotFound, got %v", err)
	}
	if err := s.Reorder(Container{Kind: "bogus"}, nil); !errs.Is(err, errs.InvalidState) {
		t.Errorf("unknown kind should be InvalidState, got %v", err)
	}
}

func TestMoveTabPreservesPinned(t *testing.T) {
	s := NewStore()
	realm, _ := s.CreateRealm("Personal", "", "")
	dock, _ := s.CreateDock(realm.ID, "Reading", "", "")
	loose, _ := s.CreateTab(realm.ID, nil, "https://loose.example")
	pinned, _ := s.CreateTab(realm.ID, &dock.ID, "https://pinned.example")
	s.SetPinned(pinned.ID, true)

	// Dock -> loose set of the same realm
	if err := s.MoveTab(pinned.ID, realm.ID, nil, -1); err != nil {
		t.Fatalf("MoveTab failed: %v", err)
	}

	moved, _ := s.Get(pinned.ID)
	if !moved.IsPinned {
		t.Error("isPinned must survive the move")
	}
	if moved.DockID != nil {
		t.Error("tab should be loose after the move")
	}
	if moved.Order != 1 {
		t.Errorf("moved tab should take the next loose index, got %d", moved.Order)
	}
	if lt, _ := s.Get(loose.ID); lt.Order != 0 {
		t.Errorf("existing loose tab order disturbed: %d", lt.Order)
	}
	assertContiguous(t, s)
}

func TestMoveTabAtIndex(t *testing.T) {
	s := NewStore()
	realm, _ := s.CreateRealm("Personal", "", "")
	t1, _ := s.CreateTab(realm.ID, nil, "https://a")
	t2, _ := s.CreateTab(realm.ID, nil, "https://b")
	t3, _ := s.CreateTab(realm.ID, nil, "https://c")

	// Move t3 to the front of its own container
	if err := s.MoveTab(t3.ID, realm.ID, nil, 0); err != nil {
		t.Fatalf("MoveTab failed: %v", err)
	}

	loose := s.LooseTabs(realm.ID)
	want := []string{t3.ID, t1.ID, t2.ID}
	for i, tab := range loose {
		if tab.ID != want[i] {
			t.Errorf("loose[%d] = %s, want %s", i, tab.ID, want[i])
		}
	}
	assertContiguous(t, s)
}

func TestMoveTabValidations(t *testing.T) {
	s := NewStore()
	realm, _ := s.CreateRealm("Personal", "", "")
	other, _ := s.CreateRealm("Work", "", "")
	dock, _ := s.CreateDock(other.ID, "Research", "", "")
	tab, _ := s.CreateTab(realm.ID, nil, "")

	if err := s.MoveTab("tab_ghost", realm.ID, nil, 0); !errs.Is(err, errs.NotFound) {
		t.Errorf("missing tab should be NotFound, got %v", err)
	}
	if err := s.MoveTab(tab.ID, "realm_ghost", nil, 0); !errs.Is(err, errs.NotFound) {
		t.Errorf("missing realm should be NotFound, got %v", err)
	}
	// Target dock in a different realm than the target realm
	if err := s.MoveTab(tab.ID, realm.ID, &dock.ID, 0); !errs.Is(err, errs.InvalidState) {
		t.Errorf("cross-realm dock should be InvalidState, got %v", err)
	}
}

func TestDeleteRealmRules(t *testing.T) {
	s := NewStore()
	def, _ := s.CreateRealm("Personal", "", "")

	// The only realm (also default)
	if err := s.DeleteRealm(def.ID); !errs.Is(err, errs.InvalidOperation) {
		t.Errorf("deleting the default realm should be InvalidOperation, got %v", err)
	}

	work, _ := s.CreateRealm("Work", "", "")
	if err := s.DeleteRealm(def.ID); !errs.Is(err, errs.InvalidOperation) {
		t.Errorf("default realm stays undeletable, got %v", err)
	}

	// Non-default with content
	tab, _ := s.CreateTab(work.ID, nil, "")
	if err := s.DeleteRealm(work.ID); !errs.Is(err, errs.InvalidOperation) {
		t.Errorf("non-empty realm should be InvalidOperation, got %v", err)
	}

	// Empty non-default always succeeds
	s.DeleteTab(tab.ID)
	if err := s.DeleteRealm(work.ID); err != nil {
		t.Errorf("empty non-default realm should delete, got %v", err)
	}
	if err := s.DeleteRealm("realm_ghost"); !errs.Is(err, errs.NotFound) {
		t.Errorf("missing realm should be NotFound, got %v", err)
	}
	assertContiguous(t, s)
}

func TestDeleteDockDemote(t *testing.T) {
	s := NewStore()
	realm, _ := s.CreateRealm("Personal", "", "")
	dock, _ := s.CreateDock(realm.ID, "Reading", "", "")
	existing, _ := s.CreateTab(realm.ID, nil, "https://existing")
	d1, _ := s.CreateTab(realm.ID, &dock.ID, "https://one")
	d2, _ := s.CreateTab(realm.ID, &dock.ID, "https://two")
	s.SetPinned(d1.ID, true)

	if err := s.DeleteDock(dock.ID, types.DockDeleteDemote); err != nil {
		t.Fatalf("DeleteDock failed: %v", err)
	}

	loose := s.LooseTabs(realm.ID)
	if len(loose) != 3 {
		t.Fatalf("expected 3 loose tabs after demote, got %d", len(loose))
	}
	want := []string{existing.ID, d1.ID, d2.ID}
	for i, tab := range loose {
		if tab.ID != want[i] {
			t.Errorf("loose[%d] = %s, want %s (relative order must hold)", i, tab.ID, want[i])
		}
	}
	if got, _ := s.Get(d1.ID); !got.IsPinned {
		t.Error("pinned flag must survive demotion")
	}
	if _, ok := s.GetDock(dock.ID); ok {
		t.Error("dock should be gone")
	}
	assertContiguous(t, s)
}

func TestDeleteDockWithTabs(t *testing.T) {
	s := NewStore()
	realm, _ := s.CreateRealm("Personal", "", "")
	dock, _ := s.CreateDock(realm.ID, "Reading", "", "")
	keep, _ := s.CreateTab(realm.ID, nil, "https://keep")
	doomed, _ := s.CreateTab(realm.ID, &dock.ID, "https://doomed")
	s.SetActive(doomed.ID)

	if err := s.DeleteDock(dock.ID, types.DockDeleteTabs); err != nil {
		t.Fatalf("DeleteDock failed: %v", err)
	}

	if _, ok := s.Get(doomed.ID); ok {
		t.Error("docked tab should be deleted with its dock")
	}
	active, ok := s.ActiveID()
	if !ok || active != keep.ID {
		t.Errorf("active should fall back to a survivor, got %q", active)
	}
	assertContiguous(t, s)
}

func TestDeleteDockPolicyValidation(t *testing.T) {
	s := NewStore()
	realm, _ := s.CreateRealm("Personal", "", "")
	dock, _ := s.CreateDock(realm.ID, "Reading", "", "")

	if err := s.DeleteDock(dock.ID, "explode"); !errs.Is(err, errs.InvalidOperation) {
		t.Errorf("unknown policy should be InvalidOperation, got %v", err)
	}
	// Empty policy falls back to demote
	if err := s.DeleteDock(dock.ID, ""); err != nil {
		t.Errorf("empty policy should demote, got %v", err)
	}
}

func TestDeleteTabAutoSelect(t *testing.T) {
	s := NewStore()
	realm, _ := s.CreateRealm("Personal", "", "")
	t1, _ := s.CreateTab(realm.ID, nil, "")
	time.Sleep(2 * time.Millisecond)
	t2, _ := s.CreateTab(realm.ID, nil, "")
	time.Sleep(2 * time.Millisecond)
	s.SetActive(t1.ID) // t1 now most recently accessed
	time.Sleep(2 * time.Millisecond)
	t3, _ := s.CreateTab(realm.ID, nil, "")

	// Deleting the active tab selects the most recently accessed survivor
	if err := s.DeleteTab(t3.ID); err != nil {
		t.Fatalf("DeleteTab failed: %v", err)
	}
	active, _ := s.ActiveID()
	if active != t1.ID {
		t.Errorf("expected most recently accessed survivor %s, got %s", t1.ID, active)
	}

	s.DeleteTab(t1.ID)
	active, _ = s.ActiveID()
	if active != t2.ID {
		t.Errorf("expected %s, got %s", t2.ID, active)
	}

	s.DeleteTab(t2.ID)
	if _, ok := s.ActiveID(); ok {
		t.Error("no tabs left: active selection should clear")
	}
}
