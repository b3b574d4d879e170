package iocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
)

const stateFileExt = ".json"

// FileStateStore keeps one JSON file per record under a directory.
type FileStateStore struct {
	dir string
}

var _ contract.StateStore = &FileStateStore{} // Compile-time check

// NewFileStateStore creates the directory if needed. An empty dir uses the default location.
func NewFileStateStore(dir string) (*FileStateStore, error) {
	if dir == "" {
		dir = contract.GetStateDirPath()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory %q: %w", dir, err)
	}
	return &FileStateStore{dir: dir}, nil
}

func (s *FileStateStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+stateFileExt)
}

// Get retrieves a record by key.
func (s *FileStateStore) Get(key string) ([]byte, int, int64, error) {
	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, 0, contract.ErrStateNotFound
	}
	if err != nil {
		return nil, 0, 0, err
	}
	var entry storedEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt state file for %q: %w", key, err)
	}
	return entry.Value, entry.Version, entry.Timestamp, nil
}

// Set replaces a record. The file is written to a temp file and then renamed into place.
func (s *FileStateStore) Set(key string, value []byte, version int, timestamp int64) error {
	if !json.Valid(value) {
		return fmt.Errorf("file state store only accepts JSON values (key %q)", key)
	}
	raw, err := json.MarshalIndent(storedEntry{Version: version, Timestamp: timestamp, Value: value}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path(key))
}

// Keys lists every stored key in ascending order.
func (s *FileStateStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, stateFileExt) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, stateFileExt))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op for the file backend.
func (s *FileStateStore) Close() error { return nil }

// GetStatus returns status information about the state store.
func (s *FileStateStore) GetStatus() (schema.StateStatus, error) {
	status := schema.StateStatus{Backend: string(schema.FileBackend), Connected: true}

	keys, err := s.Keys()
	if err != nil {
		return status, err
	}
	for _, key := range keys {
		_, _, ts, err := s.Get(key)
		if err != nil {
			return status, err
		}
		if status.TotalEntries == 0 || time.Unix(ts, 0).Before(status.OldestEntryTime) {
			status.OldestEntryTime = time.Unix(ts, 0)
		}
		if status.TotalEntries == 0 || time.Unix(ts, 0).After(status.LastEntryTime) {
			status.LastEntryTime = time.Unix(ts, 0)
		}
		status.TotalEntries++
		if info, err := os.Stat(s.path(key)); err == nil {
			status.TableSizeBytes += info.Size()
		}
	}
	return status, nil
}
