package store

import (
	"sync"

	"github.com/effective-security/agentloop/pkg/llms"
)

// inMemory is a MessageStore backed by a map.
type inMemory struct {
	mu      sync.RWMutex
	storage map[string][]llms.Message
}

// NewInMemory returns an in-memory MessageStore.
func NewInMemory() MessageStore {
	return &inMemory{
		storage: make(map[string][]llms.Message),
	}
}

func (s *inMemory) Messages(chatID string) []llms.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.storage[chatID]
	out := make([]llms.Message, len(msgs))
	copy(out, msgs)
	return out
}

func (s *inMemory) Add(chatID string, msg llms.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.storage[chatID] = append(s.storage[chatID], msg)
	return nil
}

func (s *inMemory) Reset(chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.storage, chatID)
	return nil
}
