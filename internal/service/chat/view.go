package chat

import (
	"context"
	"time"

	"github.com/zhouzirui/minichat/backend/internal/model/chat"
	"github.com/zhouzirui/minichat/backend/internal/model/profile"
	"github.com/zhouzirui/minichat/backend/internal/service/widget"
)

// MessageView is a message with its elapsed label rendered at read time.
type MessageView struct {
	chat.Message
	Elapsed string `json:"elapsed"`
}

// View is everything a presentation layer needs to draw one widget.
type View struct {
	SessionID   string           `json:"sessionId"`
	Profile     profile.Profile  `json:"profile"`
	WindowState chat.WindowState `json:"windowState"`
	Draft       string           `json:"draft"`
	CanSend     bool             `json:"canSend"`
	IsTyping    bool             `json:"isTyping"`
	Messages    []MessageView    `json:"messages"`
	RenderedAt  time.Time        `json:"renderedAt"`
}

// View renders the session's current state.
func (s *Service) View(_ context.Context, sessionID string) (View, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return View{}, err
	}
	return Render(e.session.ID, e.profile, e.controller), nil
}

// Render builds a View from a controller, labelling each message against the
// controller clock.
func Render(sessionID string, p profile.Profile, ctrl *widget.Controller) View {
	snap := ctrl.Snapshot()
	now := ctrl.Now()

	messages := make([]MessageView, len(snap.Messages))
	for i, m := range snap.Messages {
		messages[i] = MessageView{Message: m, Elapsed: chat.FormatElapsed(m.Timestamp, now)}
	}

	return View{
		SessionID:   sessionID,
		Profile:     p,
		WindowState: ctrl.WindowState(),
		Draft:       ctrl.Draft(),
		CanSend:     ctrl.CanSend(),
		IsTyping:    snap.Typing,
		Messages:    messages,
		RenderedAt:  now,
	}
}
