package ports_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/ports"
)

// mockStore is the smallest StateStore that satisfies the contract.
type mockStore struct {
	mu   sync.Mutex
	data map[string]*domain.State
}

func (m *mockStore) Save(_ context.Context, sessionID string, state *domain.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = state.Clone()
	return nil
}

func (m *mockStore) Load(_ context.Context, sessionID string) (*domain.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Clone(), nil
}

func (m *mockStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

func (m *mockStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestStateStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, &mockStore{data: make(map[string]*domain.State)})
}
