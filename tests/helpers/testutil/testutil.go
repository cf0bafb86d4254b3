// Package testutil provides shared fakes and builders for shell tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MarinaBrowser/marina/shell/internal/domain/gesture"
	"github.com/MarinaBrowser/marina/shell/internal/domain/nav"
	"github.com/MarinaBrowser/marina/shell/internal/domain/org"
	"github.com/MarinaBrowser/marina/shell/internal/domain/shell"
	"github.com/MarinaBrowser/marina/shell/internal/domain/surface"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// FakeSurface is an in-memory surface that records every command it
// receives. Safe for concurrent use.
type FakeSurface struct {
	mu        sync.Mutex
	url       string
	loading   bool
	canBack   bool
	canFwd    bool
	visible   bool
	closed    bool
	navigates int
	commands  []string
}

func (s *FakeSurface) record(cmd string) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()
}

// Navigate records the load and adopts the URL as current.
func (s *FakeSurface) Navigate(url string) {
	s.mu.Lock()
	s.url = url
	s.navigates++
	s.commands = append(s.commands, "navigate:"+url)
	s.mu.Unlock()
}

func (s *FakeSurface) GoBack()    { s.record("back") }
func (s *FakeSurface) GoForward() { s.record("forward") }
func (s *FakeSurface) Reload()    { s.record("reload") }
func (s *FakeSurface) Stop()      { s.record("stop") }

func (s *FakeSurface) Show() {
	s.mu.Lock()
	s.visible = true
	s.commands = append(s.commands, "show")
	s.mu.Unlock()
}

func (s *FakeSurface) Hide() {
	s.mu.Lock()
	s.visible = false
	s.commands = append(s.commands, "hide")
	s.mu.Unlock()
}

func (s *FakeSurface) Close() {
	s.mu.Lock()
	s.closed = true
	s.commands = append(s.commands, "close")
	s.mu.Unlock()
}

func (s *FakeSurface) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *FakeSurface) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *FakeSurface) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canBack
}

func (s *FakeSurface) CanGoForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canFwd
}

// SetHistory fakes the embedder's reported history availability.
func (s *FakeSurface) SetHistory(back, fwd bool) {
	s.mu.Lock()
	s.canBack = back
	s.canFwd = fwd
	s.mu.Unlock()
}

// SetLoading fakes the embedder's reported load state.
func (s *FakeSurface) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// Visible reports the last Show/Hide the surface saw.
func (s *FakeSurface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Closed reports whether Close was called.
func (s *FakeSurface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Navigations counts Navigate calls.
func (s *FakeSurface) Navigations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigates
}

// Commands returns a copy of the command log.
func (s *FakeSurface) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// FakeFactory mounts FakeSurfaces synchronously. Err, when set, makes
// every mount fail.
type FakeFactory struct {
	mu       sync.Mutex
	Err      error
	surfaces map[string][]*FakeSurface
}

// NewFakeFactory creates an empty factory.
func NewFakeFactory() *FakeFactory {
	return &FakeFactory{surfaces: make(map[string][]*FakeSurface)}
}

// Create implements surface.Factory.
func (f *FakeFactory) Create(ctx context.Context, tabID string) (surface.Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	s := &FakeSurface{}
	f.surfaces[tabID] = append(f.surfaces[tabID], s)
	return s, nil
}

// Latest returns the most recently mounted surface for the tab, or nil.
func (f *FakeFactory) Latest(tabID string) *FakeSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.surfaces[tabID]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

// Mounts counts how many surfaces were created for the tab.
func (f *FakeFactory) Mounts(tabID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.surfaces[tabID])
}

// Stack bundles a fully wired in-memory shell core.
type Stack struct {
	Store    *org.Store
	Tracker  *nav.Tracker
	Coord    *surface.Coordinator
	Gestures *gesture.Navigator
	Factory  *FakeFactory
	Shell    *shell.Shell
}

// NewStack wires a store, tracker, coordinator with a fake factory,
// gesture navigator, and shell facade, with no realms seeded.
func NewStack(t *testing.T) *Stack {
	t.Helper()
	store := org.NewStore()
	tracker := nav.NewTracker(nav.Config{})
	factory := NewFakeFactory()
	coord := surface.New(store, tracker, factory, surface.Config{MountTimeout: time.Second})
	gestures := gesture.New(gesture.Config{})
	sh := shell.New(store, tracker, coord, gestures, shell.Config{})
	return &Stack{
		Store:    store,
		Tracker:  tracker,
		Coord:    coord,
		Gestures: gestures,
		Factory:  factory,
		Shell:    sh,
	}
}

// Seed creates one default realm and returns it.
func (s *Stack) Seed(t *testing.T) *types.Realm {
	t.Helper()
	realm, err := s.Store.CreateRealm("Personal", "home", "#6366f1")
	if err != nil {
		t.Fatalf("seed realm: %v", err)
	}
	return realm
}

// WaitMounted blocks until the tab's surface leaves the mounting state
// or the deadline passes.
func (s *Stack) WaitMounted(t *testing.T, tabID string) {
	t.Helper()
	WaitFor(t, func() bool {
		st := s.Coord.State(tabID)
		return st == surface.StateMountedVisible || st == surface.StateMountedHidden
	}, "surface for %s never mounted", tabID)
}

// WaitFor polls cond for up to two seconds before failing the test.
func WaitFor(t *testing.T, cond func() bool, format string, args ...interface{}) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf(format, args...)
}
