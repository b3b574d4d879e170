package iocache

import (
	"fmt"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
)

// noneStateStore discards writes and never finds anything.
type noneStateStore struct{}

var _ contract.StateStore = noneStateStore{} // Compile-time check

func (noneStateStore) Get(string) ([]byte, int, int64, error) {
	return nil, 0, 0, contract.ErrStateNotFound
}
func (noneStateStore) Set(string, []byte, int, int64) error { return nil }
func (noneStateStore) Keys() ([]string, error)              { return nil, nil }
func (noneStateStore) Close() error                         { return nil }
func (noneStateStore) GetStatus() (schema.StateStatus, error) {
	return schema.StateStatus{Backend: string(schema.NoneBackend)}, nil
}

// NewStateStore returns the state store for a backend.
func NewStateStore(backend schema.DatabaseBackend, connStr string) (contract.StateStore, error) {
	var store contract.StateStore
	var err error
	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		store, err = NewSQLStateStore(stateTable, backend, connStr)
	case schema.BoltBackend:
		store, err = NewBoltStateStore(connStr)
	case schema.FileBackend:
		store, err = NewFileStateStore(connStr)
	case schema.NoneBackend:
		return noneStateStore{}, nil
	default:
		return nil, fmt.Errorf("unsupported state backend: %s. Must be sqlite, mysql, postgresql, bolt, file, or none", backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
