package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shhac/interfere/internal/domain"
)

// MemoryRepository implements Repository using in-memory storage for tests.
// Ordering matches SQLiteRepository so tests can swap one for the other.
type MemoryRepository struct {
	mu        sync.RWMutex
	nextID    int64
	endpoints map[int64]*domain.Endpoint

	// Fail, when set, is returned by every write
	Fail error
}

// NewMemoryRepository creates a new in-memory storage repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		endpoints: make(map[int64]*domain.Endpoint),
	}
}

func (m *MemoryRepository) id() int64 {
	m.nextID++
	return m.nextID
}

// CreateEndpoint stores a bare endpoint
func (m *MemoryRepository) CreateEndpoint(_ context.Context, url string, method domain.Method) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}

	id := m.id()
	m.endpoints[id] = &domain.Endpoint{ID: id, URL: url, Method: method}
	return id, nil
}

// CreateEndpointFull stores the endpoint with its responses and pairs
func (m *MemoryRepository) CreateEndpointFull(_ context.Context, endpoint domain.Endpoint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}

	id := m.id()
	stored := &domain.Endpoint{ID: id, URL: endpoint.URL, Method: endpoint.Method}
	for _, resp := range endpoint.Responses {
		stored.Responses = append(stored.Responses, m.newResponse(id, resp))
	}
	m.endpoints[id] = stored
	return id, nil
}

// UpdateEndpointURL changes the URL of an endpoint
func (m *MemoryRepository) UpdateEndpointURL(_ context.Context, id int64, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}

	e, ok := m.endpoints[id]
	if !ok {
		return ErrNotFound
	}
	e.URL = url
	return nil
}

// UpdateEndpointMethod changes the method of an endpoint
func (m *MemoryRepository) UpdateEndpointMethod(_ context.Context, id int64, method domain.Method) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}

	e, ok := m.endpoints[id]
	if !ok {
		return ErrNotFound
	}
	e.Method = method
	return nil
}

// DeleteEndpoint removes an endpoint and everything below it
func (m *MemoryRepository) DeleteEndpoint(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}

	if _, ok := m.endpoints[id]; !ok {
		return ErrNotFound
	}
	delete(m.endpoints, id)
	return nil
}

// FindEndpoint returns the newest endpoint with this URL and method
func (m *MemoryRepository) FindEndpoint(_ context.Context, url string, method domain.Method) (*domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *domain.Endpoint
	for _, e := range m.endpoints {
		if e.URL == url && e.Method == method && (found == nil || e.ID > found.ID) {
			found = e
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	out := m.snapshot(found)
	return &out, nil
}

// CreateResponse stores a response with its pairs
func (m *MemoryRepository) CreateResponse(_ context.Context, endpointID int64, response domain.Response) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}

	e, ok := m.endpoints[endpointID]
	if !ok {
		return 0, ErrNotFound
	}
	stored := m.newResponse(endpointID, response)
	e.Responses = append(e.Responses, stored)
	return stored.ID, nil
}

// UpdateResponse overwrites body, status and time of a response
func (m *MemoryRepository) UpdateResponse(_ context.Context, id int64, text string, code int, receivedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}

	resp := m.findResponse(id)
	if resp == nil {
		return ErrNotFound
	}
	resp.Text = text
	resp.Code = code
	resp.ReceivedAt = receivedAt
	return nil
}

// DeleteResponse removes a response and its pairs
func (m *MemoryRepository) DeleteResponse(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}

	for _, e := range m.endpoints {
		for i := range e.Responses {
			if e.Responses[i].ID == id {
				e.Responses = append(e.Responses[:i], e.Responses[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

// ResponseCount returns how many responses an endpoint has
func (m *MemoryRepository) ResponseCount(_ context.Context, endpointID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.endpoints[endpointID]
	if !ok {
		return 0, nil
	}
	return len(e.Responses), nil
}

// CreatePair stores a query parameter or header under a response
func (m *MemoryRepository) CreatePair(_ context.Context, kind domain.PairKind, responseID int64, pair domain.KeyValue) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}

	resp := m.findResponse(responseID)
	if resp == nil {
		return 0, ErrNotFound
	}
	pair.ID = m.id()
	pair.ParentResponseID = responseID
	resp.Request.SetPairs(kind, append(resp.Request.Pairs(kind), pair))
	return pair.ID, nil
}

// UpdatePair overwrites key, value and toggle of a pair
func (m *MemoryRepository) UpdatePair(_ context.Context, kind domain.PairKind, id int64, key, value string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}

	pair := m.findPair(kind, id)
	if pair == nil {
		return ErrNotFound
	}
	pair.Key, pair.Value, pair.On = key, value, on
	return nil
}

// DeletePair removes a pair
func (m *MemoryRepository) DeletePair(_ context.Context, kind domain.PairKind, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}

	for _, e := range m.endpoints {
		for i := range e.Responses {
			pairs := e.Responses[i].Request.Pairs(kind)
			for j := range pairs {
				if pairs[j].ID == id {
					e.Responses[i].Request.SetPairs(kind, append(pairs[:j:j], pairs[j+1:]...))
					return nil
				}
			}
		}
	}
	return ErrNotFound
}

// LoadEndpoints returns deep copies of the stored graph, newest endpoint first
func (m *MemoryRepository) LoadEndpoints(_ context.Context, search string) ([]domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(search)
	endpoints := []domain.Endpoint{}
	for _, e := range m.endpoints {
		if needle != "" && !strings.Contains(strings.ToLower(e.URL), needle) {
			continue
		}
		endpoints = append(endpoints, m.snapshot(e))
	}
	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].ID > endpoints[j].ID })
	return endpoints, nil
}

// Close is a no-op
func (m *MemoryRepository) Close() error {
	return nil
}

func (m *MemoryRepository) newResponse(endpointID int64, resp domain.Response) domain.Response {
	stored := domain.Response{
		ID:         m.id(),
		EndpointID: endpointID,
		Text:       resp.Text,
		Code:       resp.Code,
		ReceivedAt: resp.ReceivedAt,
	}
	if stored.ReceivedAt.IsZero() {
		stored.ReceivedAt = time.Now()
	}
	for _, kind := range []domain.PairKind{domain.QueryParam, domain.Header} {
		var pairs []domain.KeyValue
		for _, p := range resp.Request.Pairs(kind) {
			p.ID = m.id()
			p.ParentResponseID = stored.ID
			pairs = append(pairs, p)
		}
		stored.Request.SetPairs(kind, pairs)
	}
	return stored
}

func (m *MemoryRepository) findResponse(id int64) *domain.Response {
	for _, e := range m.endpoints {
		for i := range e.Responses {
			if e.Responses[i].ID == id {
				return &e.Responses[i]
			}
		}
	}
	return nil
}

func (m *MemoryRepository) findPair(kind domain.PairKind, id int64) *domain.KeyValue {
	for _, e := range m.endpoints {
		for i := range e.Responses {
			pairs := e.Responses[i].Request.Pairs(kind)
			for j := range pairs {
				if pairs[j].ID == id {
					return &pairs[j]
				}
			}
		}
	}
	return nil
}

// snapshot deep-copies an endpoint with responses newest first
func (m *MemoryRepository) snapshot(e *domain.Endpoint) domain.Endpoint {
	out := domain.Endpoint{ID: e.ID, URL: e.URL, Method: e.Method}
	for _, resp := range e.Responses {
		c := resp
		c.Request = resp.Request.Clone()
		out.Responses = append(out.Responses, c)
	}
	sort.SliceStable(out.Responses, func(i, j int) bool {
		a, b := out.Responses[i], out.Responses[j]
		if !a.ReceivedAt.Equal(b.ReceivedAt) {
			return a.ReceivedAt.After(b.ReceivedAt)
		}
		return a.ID > b.ID
	})
	return out
}
