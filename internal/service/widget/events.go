package widget

import "github.com/zhouzirui/minichat/backend/internal/model/chat"

// EventKind names what changed in a controller.
type EventKind string

const (
	EventWindow  EventKind = "window"
	EventDraft   EventKind = "draft"
	EventMessage EventKind = "message"
	EventTyping  EventKind = "typing"

	// EventUnmounted is the last event a listener sees; the controller is gone.
	EventUnmounted EventKind = "unmounted"
)

// Event describes a single state change. Only the field matching Kind is meaningful.
type Event struct {
	Seq         uint64           `json:"seq"`
	Kind        EventKind        `json:"kind"`
	WindowState chat.WindowState `json:"windowState,omitempty"`
	Draft       string           `json:"draft,omitempty"`
	Message     *chat.Message    `json:"message,omitempty"`
	Typing      bool             `json:"isTyping"`
}

// Listener receives controller events in mutation order.
type Listener func(Event)

type subscription struct {
	id uint64
	fn Listener
}
