package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/logging"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// currentName is the basename of the live snapshot
const currentName = "sidebar"

// Store reads and writes organization snapshots
type Store struct {
	dir         string
	compression string
	log         *logging.Logger

	mu sync.Mutex // serializes Save's temp-write-rename sequence
}

// NewStore creates the snapshot directory if needed
func NewStore(dir, compression string, log *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	if log == nil {
		log = logging.NewNop()
	}
	switch compression {
	case "", "none":
		compression = "none"
	case "gzip", "zstd":
	default:
		return nil, fmt.Errorf("unknown snapshot compression %q", compression)
	}

	return &Store{
		dir:         dir,
		compression: compression,
		log:         log.Named("snapshot"),
	}, nil
}

// path returns the live snapshot location for the configured codec
func (s *Store) path() string {
	return filepath.Join(s.dir, currentName+compressExt(s.compression))
}

// Save writes the state atomically
func (s *Store) Save(state types.SidebarState) error {
	data, err := sonic.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	data, err = compress(data, s.compression)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load reads the live snapshot. Missing or corrupt snapshots come back as
// empty state: the shell seeds defaults rather than refusing to boot.
func (s *Store) Load() (*types.SidebarState, error) {
	raw, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Info("no snapshot found, starting empty", zap.String("path", s.path()))
			return &types.SidebarState{}, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	data, err := decompress(raw, s.compression)
	if err != nil {
		s.log.Warn("snapshot decompress failed, starting empty",
			zap.String("path", s.path()), zap.Error(err))
		return &types.SidebarState{}, nil
	}

	var state types.SidebarState
	if err := sonic.Unmarshal(data, &state); err != nil {
		s.log.Warn("snapshot corrupt, starting empty",
			zap.String("path", s.path()), zap.Error(err))
		return &types.SidebarState{}, nil
	}
	return &state, nil
}

// Entry describes one file in the snapshot directory
type Entry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// List walks the snapshot directory, newest first
func (s *Store) List() ([]Entry, error) {
	var (
		mu      sync.Mutex
		entries []Entry
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		mu.Lock()
		entries = append(entries, Entry{Path: p, Size: info.Size(), ModTime: info.ModTime()})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk snapshot dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ModTime.After(entries[j].ModTime) })
	return entries, nil
}
