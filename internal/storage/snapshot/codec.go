package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"

	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

func compressExt(compression string) string {
	switch compression {
	case "gzip":
		return ".json.gz"
	case "zstd":
		return ".json.zst"
	default:
		return ".json"
	}
}

func compress(data []byte, compression string) ([]byte, error) {
	switch compression {
	case "none":
		return data, nil
	case "gzip":
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "zstd":
		w, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		out := w.EncodeAll(data, nil)
		_ = w.Close()
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", compression)
	}
}

func decompress(data []byte, compression string) ([]byte, error) {
	switch compression {
	case "none":
		return data, nil
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case "zstd":
		r, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.DecodeAll(data, nil)
	default:
		return nil, fmt.Errorf("unknown compression %q", compression)
	}
}

// Export writes state to path, selecting the codec by extension
func (s *Store) Export(state types.SidebarState, path string) error {
	data, err := encodeByExt(state, path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// Import reads a snapshot from path, selecting the codec by extension
func (s *Store) Import(path string) (*types.SidebarState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	return decodeByExt(data, path)
}

func encodeByExt(state types.SidebarState, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return sonic.MarshalIndent(state, "", "  ")
	case ".yaml", ".yml":
		return yaml.Marshal(state)
	case ".toml":
		// Round-trip through JSON so TOML keys match the wire naming
		m, err := stateToMap(state)
		if err != nil {
			return nil, err
		}
		return toml.Marshal(m)
	default:
		return nil, fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

func decodeByExt(data []byte, path string) (*types.SidebarState, error) {
	var state types.SidebarState
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := sonic.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("parse json import: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("parse yaml import: %w", err)
		}
	case ".toml":
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse toml import: %w", err)
		}
		raw, err := sonic.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("convert toml import: %w", err)
		}
		if err := sonic.Unmarshal(raw, &state); err != nil {
			return nil, fmt.Errorf("convert toml import: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported import format %q", filepath.Ext(path))
	}
	return &state, nil
}

// stateToMap converts through sonic so map keys carry the json tag names
func stateToMap(state types.SidebarState) (map[string]interface{}, error) {
	raw, err := sonic.Marshal(state)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := sonic.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
