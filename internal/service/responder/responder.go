// Package responder produces the simulated bot replies.
package responder

import (
	"errors"
	"math/rand/v2"
)

// ErrNoReplies is returned when a canned reply set is empty.
var ErrNoReplies = errors.New("canned reply set is empty")

// Generator produces the text of a bot reply.
type Generator interface {
	Generate() string
}

// Canned picks uniformly from a fixed set of replies. Consecutive calls may
// return the same reply.
type Canned struct {
	replies []string
	pick    func(n int) int
}

// Option customizes a Canned generator.
type Option func(*Canned)

// WithPicker replaces the random index source. pick must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(c *Canned) {
		c.pick = pick
	}
}

// NewCanned builds a generator over a copy of replies.
func NewCanned(replies []string, opts ...Option) (*Canned, error) {
	if len(replies) == 0 {
		return nil, ErrNoReplies
	}
	c := &Canned{
		replies: append([]string(nil), replies...),
		pick:    rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate returns one member of the reply set.
func (c *Canned) Generate() string {
	return c.replies[c.pick(len(c.replies))]
}

// Replies returns a copy of the reply set.
func (c *Canned) Replies() []string {
	return append([]string(nil), c.replies...)
}
