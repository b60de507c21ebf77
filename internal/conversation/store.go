// Package conversation holds the in-memory message ledger used by
// chat-style backends. Each adapter instance owns exactly one Store;
// ledgers are never shared across instances.
package conversation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bridgefs/bridgefs/internal/vfs"
)

// NewConversationID is the placeholder identifier a caller writes to in
// order to allocate a fresh conversation.
const NewConversationID = "new"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in a conversation ledger.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Format renders the message as a single-line record.
func (m Message) Format() string {
	return fmt.Sprintf("%s [%s] %s", m.Timestamp.Format("2006-01-02 15:04:05"), m.Role, m.Content)
}

// Store maps conversation ids to ordered message lists. Display ordinals
// are 1-based; storage positions are 0-based. All methods are safe for
// concurrent use; the same adapter can be addressed by two in-flight
// dispatches at once.
type Store struct {
	mu            sync.RWMutex
	conversations map[string][]Message
}

// NewStore creates an empty ledger.
func NewStore() *Store {
	return &Store{conversations: make(map[string][]Message)}
}

// Create transitions id to active with an empty ledger. The placeholder
// id allocates a fresh unique id. Creating an existing conversation is a
// no-op.
func (s *Store) Create(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == NewConversationID || id == "" {
		id = uuid.NewString()
	}
	if _, ok := s.conversations[id]; !ok {
		s.conversations[id] = []Message{}
	}
	return id
}

// Exists reports whether a conversation is active.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.conversations[id]
	return ok
}

// IDs returns the ids of all active conversations.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.conversations))
	for id := range s.conversations {
		ids = append(ids, id)
	}
	return ids
}

// Messages returns a copy of a conversation's ledger in write order.
func (s *Store) Messages(id string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %q: %w", id, vfs.ErrNotFound)
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Len returns the number of messages in a conversation, zero if absent.
func (s *Store) Len(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations[id])
}

// AppendExchange appends the user message and the generated reply as a
// unit, activating the conversation if needed. It returns the effective
// conversation id (fresh when id was the placeholder).
func (s *Store) AppendExchange(id, userContent, assistantContent string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == NewConversationID || id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	s.conversations[id] = append(s.conversations[id],
		Message{Role: RoleUser, Content: userContent, Timestamp: now},
		Message{Role: RoleAssistant, Content: assistantContent, Timestamp: now},
	)
	return id
}

// Message returns the message at a 1-based display ordinal.
func (s *Store) Message(id string, ordinal int) (Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, ok := s.conversations[id]
	if !ok {
		return Message{}, fmt.Errorf("conversation %q: %w", id, vfs.ErrNotFound)
	}
	if ordinal < 1 || ordinal > len(msgs) {
		return Message{}, fmt.Errorf("message %d in %q: %w", ordinal, id, vfs.ErrNotFound)
	}
	return msgs[ordinal-1], nil
}

// DeleteMessage removes the message at a 1-based ordinal. Subsequent
// ordinals shift down; callers must not cache ordinals across a delete.
func (s *Store) DeleteMessage(id string, ordinal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("conversation %q: %w", id, vfs.ErrNotFound)
	}
	if ordinal < 1 || ordinal > len(msgs) {
		return fmt.Errorf("message %d in %q: %w", ordinal, id, vfs.ErrNotFound)
	}
	s.conversations[id] = append(msgs[:ordinal-1], msgs[ordinal:]...)
	return nil
}

// DeleteConversation removes an entire conversation.
func (s *Store) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return fmt.Errorf("conversation %q: %w", id, vfs.ErrNotFound)
	}
	delete(s.conversations, id)
	return nil
}

// Clear removes every conversation.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = make(map[string][]Message)
}
