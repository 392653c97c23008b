package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/events"
	"github.com/phrazzld/realitycheck-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockDecisionStore mocks the store.DecisionStore interface
type MockDecisionStore struct {
	mock.Mock
}

var _ store.DecisionStore = (*MockDecisionStore)(nil)

func (m *MockDecisionStore) List(ctx context.Context, filter store.DecisionFilter) ([]domain.Decision, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Decision), args.Error(1)
}

func (m *MockDecisionStore) Get(ctx context.Context, id int64) (domain.Decision, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Decision), args.Error(1)
}

func (m *MockDecisionStore) Insert(ctx context.Context, d domain.Decision) (int64, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDecisionStore) Update(ctx context.Context, d domain.Decision) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDecisionStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDecisionStore) Categories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockDecisionStore) Tags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// WithTx returns the mock itself so expectations cover both paths.
func (m *MockDecisionStore) WithTx(*sql.Tx) store.DecisionStore {
	return m
}

// MockGroupStore mocks the store.GroupStore interface
type MockGroupStore struct {
	mock.Mock
}

var _ store.GroupStore = (*MockGroupStore)(nil)

func (m *MockGroupStore) List(ctx context.Context) ([]domain.DecisionGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DecisionGroup), args.Error(1)
}

func (m *MockGroupStore) Get(ctx context.Context, id int64) (domain.DecisionGroup, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.DecisionGroup), args.Error(1)
}

func (m *MockGroupStore) Insert(ctx context.Context, g domain.DecisionGroup) (int64, error) {
	args := m.Called(ctx, g)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGroupStore) Update(ctx context.Context, g domain.DecisionGroup) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGroupStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGroupStore) CountDecisions(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockGroupStore) WithTx(*sql.Tx) store.GroupStore {
	return m
}

// fakeTransactor runs the unit of work without a database.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	f.calls++
	return fn(ctx, nil)
}

// recordingEmitter remembers every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.DecisionEvent
}

func (r *recordingEmitter) EmitEvent(_ context.Context, e *events.DecisionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEmitter) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
