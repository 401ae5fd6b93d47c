// Package conversation holds the message history and typing flag of one widget.
package conversation

import "github.com/zhouzirui/minichat/backend/internal/model/chat"

// Store is the ordered, append-only history of a widget session. It is not
// safe for concurrent use; the widget controller serializes every call.
type Store struct {
	messages []chat.Message
	typing   bool
}

// NewStore returns an empty conversation.
func NewStore() *Store {
	return &Store{messages: make([]chat.Message, 0, 16)}
}

// Append adds message to the end of the history.
func (s *Store) Append(message chat.Message) {
	s.messages = append(s.messages, message)
}

// SetTyping sets the typing indicator.
func (s *Store) SetTyping(typing bool) {
	s.typing = typing
}

// Snapshot copies the history and typing flag.
func (s *Store) Snapshot() chat.Snapshot {
	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return chat.Snapshot{Messages: copied, Typing: s.typing}
}

// Len returns the number of messages.
func (s *Store) Len() int {
	return len(s.messages)
}

// Typing reports the typing indicator.
func (s *Store) Typing() bool {
	return s.typing
}
