package testutil

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/devaloi/pairline/internal/domain"
)

// MockClient implements hub.Client for testing.
type MockClient struct {
	Name     string
	messages [][]byte
	mu       sync.Mutex
}

// NewMockClient creates a new MockClient with the given name.
func NewMockClient(name string) *MockClient {
	return &MockClient{Name: name}
}

// ID returns the mock client's name.
func (m *MockClient) ID() string { return m.Name }

// Send records a message sent to the mock client.
func (m *MockClient) Send(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.messages = append(m.messages, cp)
}

// GetMessages returns a copy of all messages received by the mock client.
func (m *MockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([][]byte, len(m.messages))
	copy(cp, m.messages)
	return cp
}

// Notifications decodes every received frame.
func (m *MockClient) Notifications() []domain.Notification {
	msgs := m.GetMessages()
	out := make([]domain.Notification, 0, len(msgs))
	for _, data := range msgs {
		var n domain.Notification
		if err := json.Unmarshal(data, &n); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// MockStore implements store.RoomStore for testing.
type MockStore struct {
	mu    sync.Mutex
	rooms map[string][]string
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{rooms: make(map[string][]string)}
}

func (s *MockStore) CreateRoom(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; ok {
		return domain.ErrRoomExists
	}
	s.rooms[id] = []string{}
	return nil
}

func (s *MockStore) AddMember(_ context.Context, id, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, ok := s.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	s.rooms[id] = append(members, user)
	return nil
}

func (s *MockStore) Members(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, ok := s.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return append([]string{}, members...), nil
}

func (s *MockStore) ListRooms(_ context.Context) ([]domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]domain.Room, 0, len(s.rooms))
	for id, members := range s.rooms {
		rooms = append(rooms, domain.Room{ID: id, Members: append([]string{}, members...)})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

// Close is a no-op for the mock store.
func (s *MockStore) Close() error { return nil }
