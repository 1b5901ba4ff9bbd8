// Package conversation tracks multi-step chat flows for the lifetime of the process.
package conversation

import "sync"

// State is what the bot expects next from a conversation
type State int

const (
	StateAwaitingCity State = iota + 1
)

// Store maps conversation ids to their pending state. Entries are lost on restart.
type Store struct {
	mu      sync.Mutex
	pending map[int64]State
}

func NewStore() *Store {
	return &Store{pending: make(map[int64]State)}
}

// MarkAwaitingCityInput records that the next free-text message is a city name
func (s *Store) MarkAwaitingCityInput(conversationID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[conversationID] = StateAwaitingCity
}

// ConsumeIfAwaiting clears the pending city flag and reports whether it was set
func (s *Store) ConsumeIfAwaiting(conversationID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[conversationID] != StateAwaitingCity {
		return false
	}
	delete(s.pending, conversationID)
	return true
}

// Len returns the number of conversations with a pending state
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
