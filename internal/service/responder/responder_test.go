package responder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var replies = []string{
	"Thank you for your message. We're here to assist!",
	"Can I help you with something else?",
	"Our team is working on your request.",
	"Feel free to ask anything!",
	"Thanks for reaching out!",
}

func TestNewCannedRejectsEmptySet(t *testing.T) {
	_, err := NewCanned(nil)
	require.ErrorIs(t, err, ErrNoReplies)
}

func TestCannedCoversWholeSet(t *testing.T) {
	gen, err := NewCanned(replies)
	require.NoError(t, err)

	counts := make(map[string]int)
	const draws = 5000
	for i := 0; i < draws; i++ {
		counts[gen.Generate()]++
	}

	require.Len(t, counts, len(replies))
	for _, reply := range replies {
		// Uniform expectation is 1000; allow a wide band.
		require.Greater(t, counts[reply], 700, reply)
		require.Less(t, counts[reply], 1300, reply)
	}
}

func TestCannedWithPicker(t *testing.T) {
	next := 0
	gen, err := NewCanned(replies, WithPicker(func(n int) int {
		i := next % n
		next++
		return i
	}))
	require.NoError(t, err)

	require.Equal(t, replies[0], gen.Generate())
	require.Equal(t, replies[1], gen.Generate())
}

func TestCannedCopiesInput(t *testing.T) {
	in := []string{"only"}
	gen, err := NewCanned(in)
	require.NoError(t, err)
	in[0] = "changed"

	require.Equal(t, "only", gen.Generate())
	require.Equal(t, []string{"only"}, gen.Replies())
}
