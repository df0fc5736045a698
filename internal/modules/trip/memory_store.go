package trip

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps route state in process. Used by tests and the demo CLI.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]RouteState
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]RouteState), now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, tripID string) (RouteState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[tripID]
	if !ok {
		return RouteState{}, ErrNotFound
	}
	return st, nil
}

func (m *MemoryStore) Save(_ context.Context, st RouteState) error {
	if !ValidID(st.TripID) {
		return ErrInvalidTripID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st.Destinations = append([]string(nil), st.Destinations...)
	st.UpdatedAt = m.now()
	m.states[st.TripID] = st
	return nil
}
