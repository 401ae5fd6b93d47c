package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	c := NewManual(epoch)
	var fired []string
	var at []time.Time

	c.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "late"); at = append(at, c.Now()) })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "early"); at = append(at, c.Now()) })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "early-2"); at = append(at, c.Now()) })

	c.Advance(99 * time.Millisecond)
	require.Empty(t, fired)
	require.Equal(t, 3, c.Pending())

	c.Advance(time.Second)
	require.Equal(t, []string{"early", "early-2", "late"}, fired)
	require.Equal(t, epoch.Add(100*time.Millisecond), at[0])
	require.Equal(t, epoch.Add(300*time.Millisecond), at[2])
	require.Equal(t, epoch.Add(1099*time.Millisecond), c.Now())
	require.Zero(t, c.Pending())
}

func TestManualStop(t *testing.T) {
	c := NewManual(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	c.Advance(2 * time.Second)
	require.False(t, fired)
}

func TestManualStopAfterFire(t *testing.T) {
	c := NewManual(epoch)
	timer := c.AfterFunc(time.Second, func() {})
	c.Advance(time.Second)
	require.False(t, timer.Stop())
}

func TestManualChainedTimersWithinWindow(t *testing.T) {
	c := NewManual(epoch)
	var got []time.Time
	c.AfterFunc(time.Second, func() {
		got = append(got, c.Now())
		c.AfterFunc(time.Second, func() { got = append(got, c.Now()) })
	})

	c.Advance(5 * time.Second)
	require.Equal(t, []time.Time{epoch.Add(time.Second), epoch.Add(2 * time.Second)}, got)
	require.Equal(t, epoch.Add(5*time.Second), c.Now())
}

func TestSystemClockAfterFunc(t *testing.T) {
	c := System()
	done := make(chan struct{})
	c.AfterFunc(5*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("system timer did not fire")
	}
}
