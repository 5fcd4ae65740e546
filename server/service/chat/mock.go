package chat

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/lectern/lectern/store"
)

// MockSessionStore is an in-memory SessionStore for tests.
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*store.ChatSession
	messages []*store.ChatMessage
	nextSeq  int64

	// FailCreateMessage forces CreateChatMessage to fail when set.
	FailCreateMessage bool
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions: make(map[string]*store.ChatSession),
	}
}

func (m *MockSessionStore) CreateChatSession(_ context.Context, create *store.ChatSession) (*store.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *create
	m.sessions[create.ID] = &copied
	return create, nil
}

func (m *MockSessionStore) GetChatSession(_ context.Context, find *store.FindChatSession) (*store.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if find.ID != nil && s.ID != *find.ID {
			continue
		}
		if find.UserID != nil && s.UserID != *find.UserID {
			continue
		}
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (m *MockSessionStore) ListChatSessions(_ context.Context, find *store.FindChatSession) ([]*store.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]*store.ChatSession, 0)
	for _, s := range m.sessions {
		if find.ID != nil && s.ID != *find.ID {
			continue
		}
		if find.UserID != nil && s.UserID != *find.UserID {
			continue
		}
		copied := *s
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedTs > list[j].UpdatedTs
	})
	return list, nil
}

func (m *MockSessionStore) UpdateChatSession(_ context.Context, update *store.UpdateChatSession) (*store.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[update.ID]
	if !ok {
		return nil, errors.New("chat_session not found")
	}
	if update.Title != nil {
		s.Title = *update.Title
	}
	if update.UpdatedTs != nil {
		s.UpdatedTs = *update.UpdatedTs
	}
	copied := *s
	return &copied, nil
}

func (m *MockSessionStore) DeleteChatSession(_ context.Context, delete *store.DeleteChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[delete.ID]
	if !ok || (delete.UserID != nil && s.UserID != *delete.UserID) {
		return errors.New("chat_session not found")
	}
	m.deleteSessionLocked(delete.ID)
	return nil
}

func (m *MockSessionStore) deleteSessionLocked(sessionID string) {
	delete(m.sessions, sessionID)
	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.SessionID != sessionID {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
}

func (m *MockSessionStore) CreateChatMessage(_ context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreateMessage {
		return nil, errors.New("forced message failure")
	}

	m.nextSeq++
	create.Seq = m.nextSeq
	copied := *create
	m.messages = append(m.messages, &copied)
	return create, nil
}

func (m *MockSessionStore) ListChatMessages(_ context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]*store.ChatMessage, 0)
	for _, msg := range m.messages {
		if find.SessionID != nil && msg.SessionID != *find.SessionID {
			continue
		}
		if find.ID != nil && msg.ID != *find.ID {
			continue
		}
		copied := *msg
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Seq < list[j].Seq
	})
	return list, nil
}

// MessageCount reports how many messages a session holds.
func (m *MockSessionStore) MessageCount(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			count++
		}
	}
	return count
}
