// Package widget implements the session controller of the support chat
// widget: the window state machine, draft handling and the
// send, typing, reply sequence.
package widget

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/minichat/backend/internal/clock"
	"github.com/zhouzirui/minichat/backend/internal/model/chat"
	"github.com/zhouzirui/minichat/backend/internal/service/conversation"
	"github.com/zhouzirui/minichat/backend/internal/service/responder"
)

const (
	DefaultCloseDelay = 500 * time.Millisecond
	DefaultReplyDelay = 1000 * time.Millisecond
)

// Options tunes the controller timers.
type Options struct {
	CloseDelay time.Duration
	ReplyDelay time.Duration
}

func (o Options) normalized() Options {
	if o.CloseDelay <= 0 {
		o.CloseDelay = DefaultCloseDelay
	}
	if o.ReplyDelay <= 0 {
		o.ReplyDelay = DefaultReplyDelay
	}
	return o
}

// Controller is the single mutator of one widget's state. Intents and timer
// callbacks are serialized by mu.
type Controller struct {
	mu        sync.Mutex
	clock     clock.Clock
	generator responder.Generator
	store     *conversation.Store
	opts      Options
	label     string

	window   chat.WindowState
	draft    string
	pending  map[uint64]*Deferred
	nextID   uint64
	seq      uint64
	subs     []subscription
	outbox   []Event
	draining bool
	detached bool
}

// New creates a controller in the Closed state with an empty conversation.
// label is only used to tag log lines.
func New(clk clock.Clock, generator responder.Generator, opts Options, label string) *Controller {
	return &Controller{
		clock:     clk,
		generator: generator,
		store:     conversation.NewStore(),
		opts:      opts.normalized(),
		label:     label,
		window:    chat.WindowClosed,
		pending:   make(map[uint64]*Deferred),
	}
}

// WindowState returns the current window state.
func (c *Controller) WindowState() chat.WindowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window
}

// Draft returns the unsent input.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// CanSend reports whether the current draft would be accepted by SendDraft.
func (c *Controller) CanSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.TrimSpace(c.draft) != ""
}

// Snapshot returns a copy of the history and typing flag.
func (c *Controller) Snapshot() chat.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Snapshot()
}

// Now reads the controller clock, for computing elapsed labels.
func (c *Controller) Now() time.Time {
	return c.clock.Now()
}

// Options returns the effective timer settings.
func (c *Controller) Options() Options {
	return c.opts
}

// Toggle opens a closed window or starts closing an open one. Closing settles
// at Closed after CloseDelay; the returned handle refers to that timer.
// Toggling while Closing does nothing and returns nil.
func (c *Controller) Toggle() *Deferred {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return nil
	}

	var (
		events []Event
		handle *Deferred
	)
	switch c.window {
	case chat.WindowClosed:
		events = append(events, c.setWindowLocked(chat.WindowOpen))
	case chat.WindowOpen:
		events = append(events, c.setWindowLocked(chat.WindowClosing))
		handle = c.scheduleLocked(DeferredClose, c.opts.CloseDelay, c.finishClose)
	case chat.WindowClosing:
		log.Debug().Str("session_id", c.label).Msg("toggle ignored while closing")
	}
	c.emit(events)
	return handle
}

// UpdateDraft replaces the unsent input.
func (c *Controller) UpdateDraft(text string) {
	c.mu.Lock()
	if c.detached || c.draft == text {
		c.mu.Unlock()
		return
	}
	c.draft = text
	c.emit([]Event{c.eventLocked(Event{Kind: EventDraft, Draft: text})})
}

// Send appends a user message with raw as given, clears the draft, shows the
// typing indicator and schedules a bot reply after ReplyDelay. Blank input is
// ignored and nil is returned. Overlapping sends each get their own reply.
func (c *Controller) Send(raw string) *Deferred {
	c.mu.Lock()
	if c.detached || strings.TrimSpace(raw) == "" {
		c.mu.Unlock()
		return nil
	}
	handle, events := c.sendLocked(raw)
	c.emit(events)
	return handle
}

// SendDraft sends the current draft.
func (c *Controller) SendDraft() *Deferred {
	c.mu.Lock()
	if c.detached || strings.TrimSpace(c.draft) == "" {
		c.mu.Unlock()
		return nil
	}
	handle, events := c.sendLocked(c.draft)
	c.emit(events)
	return handle
}

// Subscribe registers fn for change events and returns a function removing it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return func() {}
	}
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subs {
			if sub.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Teardown cancels every pending timer and detaches the controller. Current
// listeners receive one final EventUnmounted and are then dropped. Later
// intents are no-ops.
func (c *Controller) Teardown() {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return
	}
	c.detached = true
	for id, d := range c.pending {
		d.timer.Stop()
		delete(c.pending, id)
	}
	subs := c.subs
	c.subs = nil
	c.outbox = nil
	last := c.eventLocked(Event{Kind: EventUnmounted})
	c.mu.Unlock()

	log.Debug().Str("session_id", c.label).Int("listeners", len(subs)).Msg("widget controller torn down")
	for _, sub := range subs {
		sub.fn(last)
	}
}

// PendingCount reports scheduled timers that have not fired.
func (c *Controller) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Controller) sendLocked(raw string) (*Deferred, []Event) {
	msg := chat.NewMessage(chat.SenderUser, raw, c.clock.Now())
	c.store.Append(msg)

	events := []Event{c.eventLocked(Event{Kind: EventMessage, Message: &msg})}
	if c.draft != "" {
		c.draft = ""
		events = append(events, c.eventLocked(Event{Kind: EventDraft}))
	}
	c.store.SetTyping(true)
	events = append(events, c.eventLocked(Event{Kind: EventTyping, Typing: true}))

	handle := c.scheduleLocked(DeferredReply, c.opts.ReplyDelay, c.deliverReply)
	return handle, events
}

func (c *Controller) scheduleLocked(kind DeferredKind, delay time.Duration, fire func(id uint64)) *Deferred {
	c.nextID++
	id := c.nextID
	d := &Deferred{ctrl: c, id: id, kind: kind, due: c.clock.Now().Add(delay)}
	c.pending[id] = d
	d.timer = c.clock.AfterFunc(delay, func() { fire(id) })
	return d
}

// claimLocked removes a pending entry and reports whether the caller owns it.
func (c *Controller) claimLocked(id uint64) (*Deferred, bool) {
	d, ok := c.pending[id]
	if !ok {
		return nil, false
	}
	delete(c.pending, id)
	return d, true
}

func (c *Controller) finishClose(id uint64) {
	c.mu.Lock()
	if _, ok := c.claimLocked(id); !ok || c.detached {
		c.mu.Unlock()
		return
	}
	var events []Event
	if c.window == chat.WindowClosing {
		events = append(events, c.setWindowLocked(chat.WindowClosed))
	}
	c.emit(events)
}

func (c *Controller) deliverReply(id uint64) {
	c.mu.Lock()
	if _, ok := c.claimLocked(id); !ok || c.detached {
		c.mu.Unlock()
		return
	}
	msg := chat.NewMessage(chat.SenderBot, c.generator.Generate(), c.clock.Now())
	c.store.Append(msg)
	c.store.SetTyping(false)
	c.emit([]Event{
		c.eventLocked(Event{Kind: EventMessage, Message: &msg}),
		c.eventLocked(Event{Kind: EventTyping, Typing: false}),
	})
}

func (c *Controller) cancel(id uint64) bool {
	c.mu.Lock()
	d, ok := c.claimLocked(id)
	if !ok {
		c.mu.Unlock()
		return false
	}
	d.timer.Stop()

	var events []Event
	switch d.kind {
	case DeferredClose:
		if c.window == chat.WindowClosing {
			events = append(events, c.setWindowLocked(chat.WindowClosed))
		}
	case DeferredReply:
		if !c.replyPendingLocked() && c.store.Typing() {
			c.store.SetTyping(false)
			events = append(events, c.eventLocked(Event{Kind: EventTyping, Typing: false}))
		}
	}
	c.emit(events)
	return true
}

func (c *Controller) replyPendingLocked() bool {
	for _, d := range c.pending {
		if d.kind == DeferredReply {
			return true
		}
	}
	return false
}

func (c *Controller) setWindowLocked(state chat.WindowState) Event {
	c.window = state
	return c.eventLocked(Event{Kind: EventWindow, WindowState: state})
}

func (c *Controller) eventLocked(ev Event) Event {
	c.seq++
	ev.Seq = c.seq
	return ev
}

// emit must be called with mu held and releases it. Events are queued and
// delivered outside the lock by whichever goroutine is not already draining,
// so listeners see them in mutation order and may call back into the
// controller.
func (c *Controller) emit(events []Event) {
	if len(c.subs) == 0 {
		c.mu.Unlock()
		return
	}
	c.outbox = append(c.outbox, events...)
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.outbox) > 0 {
		batch := c.outbox
		c.outbox = nil
		subs := append([]subscription(nil), c.subs...)
		c.mu.Unlock()

		for _, ev := range batch {
			for _, sub := range subs {
				sub.fn(ev)
			}
		}

		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}
