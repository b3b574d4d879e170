package iocache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
	bolt "go.etcd.io/bbolt"
)

// storedEntry is how the bolt and file backends keep a record on disk.
type storedEntry struct {
	Version   int             `json:"version"`
	Timestamp int64           `json:"timestamp"`
	Value     json.RawMessage `json:"value"`
}

// BoltStateStore keeps state records in a single bbolt bucket.
type BoltStateStore struct {
	db   *bolt.DB
	path string
}

var _ contract.StateStore = &BoltStateStore{} // Compile-time check

// NewBoltStateStore opens or creates a bbolt file at path. An empty path uses the default location.
func NewBoltStateStore(path string) (*BoltStateStore, error) {
	if path == "" {
		path = contract.GetBoltFilePath()
	}

	// Open database with user read/write permissions only (0600)
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database at %q: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateTable))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", stateTable, err)
	}

	return &BoltStateStore{db: db, path: path}, nil
}

// Get retrieves a record by key.
func (s *BoltStateStore) Get(key string) ([]byte, int, int64, error) {
	var entry storedEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(stateTable)).Get([]byte(key))
		if raw == nil {
			return contract.ErrStateNotFound
		}
		return json.Unmarshal(raw, &entry)
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return entry.Value, entry.Version, entry.Timestamp, nil
}

// Set inserts or replaces a record. Values must be JSON.
func (s *BoltStateStore) Set(key string, value []byte, version int, timestamp int64) error {
	if !json.Valid(value) {
		return fmt.Errorf("bolt state store only accepts JSON values (key %q)", key)
	}
	raw, err := json.Marshal(storedEntry{Version: version, Timestamp: timestamp, Value: value})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateTable)).Put([]byte(key), raw)
	})
}

// Keys lists every stored key in ascending order. Bolt iterates keys in byte order.
func (s *BoltStateStore) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateTable)).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Close closes the bolt file.
func (s *BoltStateStore) Close() error {
	return s.db.Close()
}

// GetStatus returns status information about the state store.
func (s *BoltStateStore) GetStatus() (schema.StateStatus, error) {
	status := schema.StateStatus{Backend: string(schema.BoltBackend), Connected: true}

	var oldest, last int64
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateTable)).ForEach(func(_, raw []byte) error {
			var entry storedEntry
			if err := json.Unmarshal(raw, &entry); err != nil {
				return err
			}
			if status.TotalEntries == 0 || entry.Timestamp < oldest {
				oldest = entry.Timestamp
			}
			if status.TotalEntries == 0 || entry.Timestamp > last {
				last = entry.Timestamp
			}
			status.TotalEntries++
			return nil
		})
	})
	if err != nil {
		return status, fmt.Errorf("failed to scan bolt bucket: %w", err)
	}

	if status.TotalEntries > 0 {
		status.OldestEntryTime = time.Unix(oldest, 0)
		status.LastEntryTime = time.Unix(last, 0)
	}
	if info, err := os.Stat(s.path); err == nil {
		status.TableSizeBytes = info.Size()
	}
	return status, nil
}
