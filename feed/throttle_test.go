package feed_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/vinnote-client/feed"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock shared by throttles under test.
type fakeClock struct {
	lock sync.Mutex
	now  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

func TestThrottle_Guards(t *testing.T) {
	clock := newFakeClock()
	th := feed.NewThrottle(feed.WithNowTime(clock.Now))

	outcome, _ := th.Admit()
	require.Equal(t, feed.Performed, outcome)
	require.True(t, th.InFlight())

	outcome, _ = th.Admit()
	require.Equal(t, feed.DroppedInFlight, outcome)

	th.Release()
	clock.Advance(time.Second)
	outcome, _ = th.Admit()
	require.Equal(t, feed.DroppedDebounce, outcome)

	clock.Advance(600 * time.Millisecond)
	outcome, _ = th.Admit()
	require.Equal(t, feed.Performed, outcome)
	th.Release()
}

func TestThrottle_DroppedCallsDoNotMoveDebounce(t *testing.T) {
	clock := newFakeClock()
	th := feed.NewThrottle(feed.WithNowTime(clock.Now), feed.WithDebounce(time.Second))

	outcome, _ := th.Admit()
	require.Equal(t, feed.Performed, outcome)
	th.Release()

	clock.Advance(900 * time.Millisecond)
	outcome, _ = th.Admit()
	require.Equal(t, feed.DroppedDebounce, outcome)

	// Measured from the last admitted call, not the dropped one.
	clock.Advance(200 * time.Millisecond)
	outcome, _ = th.Admit()
	require.Equal(t, feed.Performed, outcome)
	th.Release()
}

func TestThrottle_Cooldown(t *testing.T) {
	clock := newFakeClock()
	th := feed.NewThrottle(feed.WithNowTime(clock.Now), feed.WithCooldown(10*time.Second))

	until := th.TripCooldown()
	require.Equal(t, clock.Now().Add(10*time.Second), until)

	clock.Advance(4 * time.Second)
	outcome, remaining := th.Admit()
	require.Equal(t, feed.DroppedCooldown, outcome)
	require.Equal(t, 6*time.Second, remaining)

	clock.Advance(6 * time.Second)
	outcome, _ = th.Admit()
	require.Equal(t, feed.Performed, outcome)
}

func TestOutcome_String(t *testing.T) {
	require.Equal(t, "performed", feed.Performed.String())
	require.Equal(t, "dropped-in-flight", feed.DroppedInFlight.String())
	require.Equal(t, "dropped-cooldown", feed.DroppedCooldown.String())
	require.Equal(t, "dropped-debounce", feed.DroppedDebounce.String())
	require.Equal(t, "unknown", feed.Outcome(42).String())
}
