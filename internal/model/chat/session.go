package chat

import "time"

// Session identifies one mounted widget instance.
type Session struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profileId"`
	CreatedAt time.Time `json:"createdAt"`
}

// WindowState is the visibility of the widget panel.
type WindowState string

const (
	WindowClosed  WindowState = "closed"
	WindowOpen    WindowState = "open"
	WindowClosing WindowState = "closing"
)

// Visible reports whether the panel is rendered (including its exit animation).
func (s WindowState) Visible() bool {
	return s == WindowOpen || s == WindowClosing
}
