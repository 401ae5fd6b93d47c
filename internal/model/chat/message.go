package chat

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one immutable entry of a widget conversation.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps a message with a fresh ID and its creation time.
func NewMessage(sender Sender, text string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: at,
	}
}

// Snapshot is a read-only copy of the conversation.
type Snapshot struct {
	Messages []Message `json:"messages"`
	Typing   bool      `json:"isTyping"`
}
