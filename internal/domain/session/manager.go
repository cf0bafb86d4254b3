package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/logging"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// DefaultDebounce is the quiet window before a change hits disk.
const DefaultDebounce = 500 * time.Millisecond

// Organizer is the slice of the organization store the manager drives.
type Organizer interface {
	Subscribe(fn func(types.SidebarState))
	Snapshot() types.SidebarState
	Restore(state types.SidebarState) int
}

// Persister reads and writes sidebar snapshots.
type Persister interface {
	Save(state types.SidebarState) error
	Load() (*types.SidebarState, error)
	Export(state types.SidebarState, path string) error
	Import(path string) (*types.SidebarState, error)
}

// Recorder counts snapshot activity. Nil disables recording.
type Recorder interface {
	IncSnapshotsSaved()
	IncSnapshotsRestored()
}

// Manager persists the sidebar between runs
type Manager struct {
	org      Organizer
	disk     Persister
	log      *logging.Logger
	rec      Recorder
	debounce time.Duration

	mu           sync.Mutex
	dirty        bool
	timer        *time.Timer
	closed       bool
	saves        uint64
	lastSaved    *time.Time
	lastRestored *time.Time
}

// Stats reports persistence activity
type Stats struct {
	Saves        uint64     `json:"saves"`
	Dirty        bool       `json:"dirty"`
	LastSaved    *time.Time `json:"last_saved,omitempty"`
	LastRestored *time.Time `json:"last_restored,omitempty"`
}

// NewManager creates a session manager. A debounce of zero or less uses
// DefaultDebounce.
func NewManager(org Organizer, disk Persister, debounce time.Duration, log *logging.Logger, rec Recorder) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Manager{
		org:      org,
		disk:     disk,
		log:      log.Named("session"),
		rec:      rec,
		debounce: debounce,
	}
}

// Watch subscribes to store changes and autosaves after the debounce window.
// Call Restore first: restoring after Watch re-saves the state it just loaded.
func (m *Manager) Watch() {
	m.org.Subscribe(m.onChange)
}

// onChange marks the state dirty and arms the debounce timer. The passed
// state is ignored: publishes run after the store unlocks and can land out
// of order, so Flush snapshots the store itself.
func (m *Manager) onChange(types.SidebarState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.dirty = true
	if m.timer == nil {
		m.timer = time.AfterFunc(m.debounce, func() { _ = m.Flush() })
	} else {
		m.timer.Reset(m.debounce)
	}
}

// Flush writes the current state now if changes are pending. On failure
// the dirty mark stays so a later change or Close retries.
func (m *Manager) Flush() error {
	m.mu.Lock()
	if !m.dirty {
		m.mu.Unlock()
		return nil
	}
	m.dirty = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	state := m.org.Snapshot()
	if err := m.disk.Save(state); err != nil {
		m.log.Error("snapshot save failed", zap.Error(err))
		m.mu.Lock()
		m.dirty = true
		m.mu.Unlock()
		return fmt.Errorf("save snapshot: %w", err)
	}

	now := time.Now()
	m.mu.Lock()
	m.saves++
	m.lastSaved = &now
	m.mu.Unlock()
	if m.rec != nil {
		m.rec.IncSnapshotsSaved()
	}
	m.log.Debug("snapshot saved",
		zap.Int("tabs", len(state.Tabs)),
		zap.Int("docks", len(state.Docks)))
	return nil
}

// Save writes the current organization state immediately, bypassing the
// debounce window.
func (m *Manager) Save() error {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
	return m.Flush()
}

// Restore loads the persisted snapshot into the store. A missing or corrupt
// snapshot comes back empty; the store is left untouched so boot can seed
// defaults. Returns the number of entries dropped for broken references.
func (m *Manager) Restore() (int, error) {
	state, err := m.disk.Load()
	if err != nil {
		return 0, fmt.Errorf("load snapshot: %w", err)
	}
	if len(state.Realms) == 0 {
		m.log.Info("no session to restore")
		return 0, nil
	}

	dropped := m.org.Restore(*state)
	m.markRestored()
	m.log.Info("session restored",
		zap.Int("realms", len(state.Realms)),
		zap.Int("docks", len(state.Docks)),
		zap.Int("tabs", len(state.Tabs)),
		zap.Int("dropped", dropped))
	return dropped, nil
}

// Export writes the current organization state to path. The extension picks
// the format.
func (m *Manager) Export(path string) error {
	if err := m.disk.Export(m.org.Snapshot(), path); err != nil {
		return fmt.Errorf("export session: %w", err)
	}
	m.log.Info("session exported", zap.String("path", path))
	return nil
}

// Import replaces the organization state with the contents of path. When
// Watch is active the imported state autosaves like any other change.
func (m *Manager) Import(path string) (int, error) {
	state, err := m.disk.Import(path)
	if err != nil {
		return 0, fmt.Errorf("import session: %w", err)
	}
	dropped := m.org.Restore(*state)
	m.markRestored()
	m.log.Info("session imported",
		zap.String("path", path),
		zap.Int("tabs", len(state.Tabs)),
		zap.Int("dropped", dropped))
	return dropped, nil
}

// Close stops accepting changes and flushes anything pending.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()
	return m.Flush()
}

// Dirty reports whether unsaved changes are waiting on the debounce window.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// Stats returns persistence counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Saves:        m.saves,
		Dirty:        m.dirty,
		LastSaved:    m.lastSaved,
		LastRestored: m.lastRestored,
	}
}

func (m *Manager) markRestored() {
	now := time.Now()
	m.mu.Lock()
	m.lastRestored = &now
	m.mu.Unlock()
	if m.rec != nil {
		m.rec.IncSnapshotsRestored()
	}
}
