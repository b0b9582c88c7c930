package rawstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"courtside/internal/types"
)

// RawPayloadStore persists fetched payloads, one file per work item.
type RawPayloadStore interface {
	List() ([]string, error)
	Exists(id string) (bool, error)
	Read(id string) ([]byte, error)
	Write(id string, data []byte) error
}

// Naming maps a work item identifier to a file name and back.
type Naming struct {
	Prefix    string
	Extension string
}

func (n Naming) FileName(id string) string {
	return n.Prefix + id + n.Extension
}

// ID decodes a file name. ok is false for names this stage did not write.
func (n Naming) ID(name string) (string, bool) {
	if !strings.HasPrefix(name, n.Prefix) || !strings.HasSuffix(name, n.Extension) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, n.Prefix), n.Extension)
	if id == "" {
		return "", false
	}
	return id, true
}

type DirStore struct {
	dir    string
	naming Naming
	logger *slog.Logger
}

func NewDirStore(dir string, naming Naming, logger *slog.Logger) (*DirStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("rawstore: directory is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create payload directory: %w", err)
	}
	return &DirStore{dir: dir, naming: naming, logger: logger}, nil
}

func (s *DirStore) Dir() string {
	return s.dir
}

func (s *DirStore) Path(id string) string {
	return filepath.Join(s.dir, s.naming.FileName(id))
}

// List returns the identifiers of every stored payload in lexical order.
// Temporary files and names that do not decode are ignored.
func (s *DirStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list payload directory %s: %w", s.dir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		id, ok := s.naming.ID(e.Name())
		if !ok {
			s.logger.Debug("Ignoring unrecognized file", "dir", s.dir, "file", e.Name())
			continue
		}
		ids = append(ids, id)
	}

	sort.Strings(ids)
	return ids, nil
}

func (s *DirStore) Exists(id string) (bool, error) {
	_, err := os.Stat(s.Path(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat payload %s: %w", id, err)
}

func (s *DirStore) Read(id string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read payload %s: %w", id, err)
	}
	return data, nil
}

// Write stores data under id exactly once. The payload lands in a hidden
// temporary file first and is linked into place, so a crash never leaves a
// partial file under the final name. An existing payload is never replaced.
func (s *DirStore) Write(id string, data []byte) error {
	final := s.Path(id)

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write payload %s: %w", id, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync payload %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close payload %s: %w", id, err)
	}

	if err := os.Link(tmpName, final); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", id, types.ErrPayloadExists)
		}
		return fmt.Errorf("failed to publish payload %s: %w", id, err)
	}

	return nil
}

// CopyTo places a copy of a payload in dir under its file name. Load stages
// use it to collect payloads they could not process; the original stays so
// the other stages still see it.
func (s *DirStore) CopyTo(id, dir string) error {
	data, err := s.Read(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create error directory: %w", err)
	}
	dst := filepath.Join(dir, s.naming.FileName(id))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to copy payload %s: %w", id, err)
	}
	return nil
}
