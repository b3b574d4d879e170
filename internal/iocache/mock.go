package iocache

import (
	"time"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetStateStore implements the StoreManager interface.
func (m *MockStoreManager) GetStateStore() contract.StateStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.StateStore)
	return store
}

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockStateStore is a mock implementation of StateStore for testing.
type MockStateStore struct {
	mock.Mock
}

var _ contract.StateStore = &MockStateStore{} // Compile-time check

// Get implements the StateStore interface.
func (m *MockStateStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the StateStore interface.
func (m *MockStateStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Keys implements the StateStore interface.
func (m *MockStateStore) Keys() ([]string, error) {
	args := m.Called()
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

// Close implements the StateStore interface.
func (m *MockStateStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the StateStore interface.
func (m *MockStateStore) GetStatus() (schema.StateStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StateStatus), args.Error(1)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, configParams map[string]any) (string, error) {
	args := m.Called(startTime, configParams)
	return args.String(0), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID string, endTime time.Time, summary schema.RunSummary) error {
	args := m.Called(runID, endTime, summary)
	return args.Error(0)
}

// RecordEvents implements the RunStore interface.
func (m *MockRunStore) RecordEvents(runID string, events []schema.Event, recordedAt time.Time) error {
	args := m.Called(runID, events, recordedAt)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllEvents implements the RunStore interface.
func (m *MockRunStore) GetAllEvents() ([]schema.RunEventRecord, error) {
	args := m.Called()
	events, _ := args.Get(0).([]schema.RunEventRecord)
	return events, args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
