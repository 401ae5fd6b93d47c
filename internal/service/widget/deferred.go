package widget

import (
	"time"

	"github.com/zhouzirui/minichat/backend/internal/clock"
)

// DeferredKind tells which timer a Deferred handle refers to.
type DeferredKind string

const (
	DeferredClose DeferredKind = "close"
	DeferredReply DeferredKind = "reply"
)

// Deferred is the handle of a scheduled controller action.
type Deferred struct {
	ctrl  *Controller
	id    uint64
	kind  DeferredKind
	due   time.Time
	timer clock.Timer
}

// Kind reports whether this is the close-animation or the reply timer.
func (d *Deferred) Kind() DeferredKind {
	return d.kind
}

// Due is the instant the action fires.
func (d *Deferred) Due() time.Time {
	return d.due
}

// Cancel stops the action if it has not run yet and reports whether it did.
// A canceled reply is never appended. A canceled close settles the window at
// Closed straight away.
func (d *Deferred) Cancel() bool {
	return d.ctrl.cancel(d.id)
}
