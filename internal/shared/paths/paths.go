// Package paths provides the standardized profile directory layout for the shell.
//
// All persistent state lives under a single profile root so the UI process,
// diagnostics tooling, and backup jobs agree on where things are.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// Profile subdirectories
const (
	// Snapshots contains persisted sidebar organization snapshots
	Snapshots = "snapshots"

	// Icons contains the favicon cache
	Icons = "icons"

	// Exports contains user-requested snapshot exports
	Exports = "exports"

	// Logs contains rotated shell logs
	Logs = "logs"
)

// Profile resolves paths under a profile root
type Profile struct {
	Root string
}

// DefaultRoot returns the platform profile root, falling back to a dotdir
// in the working directory when the user config dir is unavailable
func DefaultRoot() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".marina"
	}
	return filepath.Join(base, "marina")
}

// SnapshotsDir returns the snapshot directory
func (p Profile) SnapshotsDir() string {
	return filepath.Join(p.Root, Snapshots)
}

// IconsDir returns the favicon cache directory
func (p Profile) IconsDir() string {
	return filepath.Join(p.Root, Icons)
}

// ExportsDir returns the export directory
func (p Profile) ExportsDir() string {
	return filepath.Join(p.Root, Exports)
}

// LogsDir returns the log directory
func (p Profile) LogsDir() string {
	return filepath.Join(p.Root, Logs)
}

// StandardDirectories returns all directories that should exist under the root
func (p Profile) StandardDirectories() []string {
	return []string{
		p.SnapshotsDir(),
		p.IconsDir(),
		p.ExportsDir(),
		p.LogsDir(),
	}
}

// Ensure creates the profile layout
func (p Profile) Ensure() error {
	for _, dir := range p.StandardDirectories() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create profile dir %s: %w", dir, err)
		}
	}
	return nil
}

// ValidateName checks that a snapshot or export name is safe for path
// construction (no traversal, no absolute paths)
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("name cannot be an absolute path")
	}
	if filepath.Clean(name) != name || filepath.Base(name) != name {
		return fmt.Errorf("name contains invalid path components")
	}
	return nil
}
