// Package tui renders one widget controller in the terminal with Bubble Tea.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/minichat/backend/internal/model/chat"
	"github.com/zhouzirui/minichat/backend/internal/model/profile"
	chatservice "github.com/zhouzirui/minichat/backend/internal/service/chat"
	"github.com/zhouzirui/minichat/backend/internal/service/widget"
)

const (
	panelWidth   = 56
	redrawPeriod = time.Second
)

var (
	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#3f51b5")).
			Padding(0, 2).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#3f51b5")).
			Padding(0, 1).
			Width(panelWidth)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3f51b5"))

	closingStyle = panelStyle.
			BorderForeground(lipgloss.Color("#52525b")).
			Faint(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#006064")).
			Background(lipgloss.Color("#e0f7fa")).
			Padding(0, 1)

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#212121")).
			Background(lipgloss.Color("#f5f5f5")).
			Padding(0, 1)

	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9e9e9e"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a")).Italic(true)
)

type eventMsg widget.Event

type tickMsg time.Time

// Model is the Bubble Tea model of the widget.
type Model struct {
	sessionID   string
	profile     profile.Profile
	ctrl        *widget.Controller
	input       textinput.Model
	events      chan widget.Event
	unsubscribe func()
}

// New binds a model to ctrl. Call Close when the program exits.
func New(sessionID string, p profile.Profile, ctrl *widget.Controller) *Model {
	in := textinput.New()
	in.Placeholder = p.Placeholder
	in.CharLimit = 500
	in.Width = panelWidth - 4
	in.Focus()

	m := &Model{
		sessionID: sessionID,
		profile:   p,
		ctrl:      ctrl,
		input:     in,
		events:    make(chan widget.Event, 64),
	}
	m.unsubscribe = ctrl.Subscribe(func(ev widget.Event) {
		select {
		case m.events <- ev:
		default:
			// The next tick redraws from a fresh snapshot anyway.
		}
	})
	return m
}

// Close stops forwarding controller events.
func (m *Model) Close() {
	m.unsubscribe()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent(), tick())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlT:
			m.ctrl.Toggle()
			return m, nil
		case tea.KeyEnter:
			if m.ctrl.WindowState() == chat.WindowOpen && m.ctrl.SendDraft() != nil {
				m.input.SetValue("")
			}
			return m, nil
		}
		if m.ctrl.WindowState() != chat.WindowOpen {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.ctrl.UpdateDraft(m.input.Value())
		return m, cmd

	case eventMsg:
		switch msg.Kind {
		case widget.EventUnmounted:
			return m, tea.Quit
		case widget.EventDraft:
			// The draft can change outside the input box, e.g. a send clears it.
			// Events arrive late, so sync to the current draft, not the event's.
			if draft := m.ctrl.Draft(); m.input.Value() != draft {
				m.input.SetValue(draft)
			}
		}
		return m, m.waitForEvent()

	case tickMsg:
		return m, tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	view := chatservice.Render(m.sessionID, m.profile, m.ctrl)
	if !view.WindowState.Visible() {
		return buttonStyle.Render("chat") + "  " + hintStyle.Render("ctrl+t to open, esc to quit") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  [ctrl+t close]", view.Profile.Title)))
	b.WriteString("\n")

	for _, msg := range view.Messages {
		b.WriteString(renderMessage(view.Profile, msg))
		b.WriteString("\n")
	}
	if view.IsTyping {
		b.WriteString(hintStyle.Render(view.Profile.TypingLabel))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	if view.CanSend {
		b.WriteString(captionStyle.Render("  enter to send"))
	}

	style := panelStyle
	if view.WindowState == chat.WindowClosing {
		style = closingStyle
	}
	return style.Render(b.String()) + "\n"
}

func renderMessage(p profile.Profile, msg chatservice.MessageView) string {
	caption := captionStyle.Render(msg.Elapsed)
	if msg.Sender == chat.SenderUser {
		bubble := userStyle.Render("you: " + msg.Text)
		return lipgloss.PlaceHorizontal(panelWidth, lipgloss.Right, bubble+" "+caption)
	}
	return botStyle.Render(p.BotName+": "+msg.Text) + " " + caption
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-m.events)
	}
}

func tick() tea.Cmd {
	return tea.Tick(redrawPeriod, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
