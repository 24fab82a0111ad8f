package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/eliza/internal/model"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStack(t *testing.T) (*Stack, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}
	return NewStack(Options{Clock: clock}), clock
}

func TestPushAndPeek(t *testing.T) {
	s, _ := newTestStack(t)
	assert.True(t, s.IsEmpty())
	_, ok := s.Peek()
	assert.False(t, ok)

	s.Push(model.TopicEmotion, "müde", 2)
	s.Push(model.TopicFamily, "mutter", 1)

	top, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, model.TopicFamily, top.Topic)
	assert.Equal(t, "mutter", top.Keyword)
	assert.Equal(t, 0, top.TurnsSinceUpdate)
	assert.Equal(t, 2, s.Len())
}

func TestPushDoesNotMerge(t *testing.T) {
	s, _ := newTestStack(t)
	s.Push(model.TopicEmotion, "müde", 1)
	s.Push(model.TopicEmotion, "traurig", 1)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "traurig", items[0].Keyword)
	assert.Equal(t, "müde", items[1].Keyword)
}

func TestPushClampsWeight(t *testing.T) {
	s, _ := newTestStack(t)
	s.Push(model.TopicNone, "x", 0)
	s.Push(model.TopicNone, "y", -4)
	for _, it := range s.Items() {
		assert.Equal(t, 1, it.Weight)
	}
}

func TestDecayByTurns(t *testing.T) {
	s, _ := newTestStack(t)
	s.Push(model.TopicEmotion, "müde", 1)

	s.AgeOneTurn()
	assert.False(t, s.IsEmpty(), "weight 1 item must survive one turn")

	s.AgeOneTurn()
	assert.True(t, s.IsEmpty(), "weight 1 item must expire after two turns")
}

func TestWeightedDecay(t *testing.T) {
	s, _ := newTestStack(t)
	s.Push(model.TopicDesire, "reisen", 3)

	for i := 0; i < 5; i++ {
		s.AgeOneTurn()
		require.False(t, s.IsEmpty(), "weight 3 item expired after %d turns", i+1)
	}
	s.AgeOneTurn()
	assert.True(t, s.IsEmpty())
}

func TestAgeOneTurnAgesEveryItem(t *testing.T) {
	s, _ := newTestStack(t)
	s.Push(model.TopicEmotion, "a", 5)
	s.Push(model.TopicFamily, "b", 5)
	s.AgeOneTurn()

	for _, it := range s.Items() {
		assert.Equal(t, 1, it.TurnsSinceUpdate)
	}
}

func TestDecayByTime(t *testing.T) {
	s, clock := newTestStack(t)
	s.Push(model.TopicEmotion, "müde", 2)

	clock.Advance(60 * time.Second)
	s.CleanupExpired()
	assert.False(t, s.IsEmpty(), "exactly at the weighted timeout is not expired")

	clock.Advance(time.Millisecond)
	s.CleanupExpired()
	assert.True(t, s.IsEmpty())
}

// An expired item under a live top survives cleanup until the top goes.
func TestCleanupOnlySweepsFromTop(t *testing.T) {
	s, clock := newTestStack(t)
	s.Push(model.TopicEmotion, "old", 1)
	clock.Advance(20 * time.Second)
	s.Push(model.TopicDesire, "new", 10)

	// old: 40s > 30s timeout; new: 20s of a 300s budget.
	clock.Advance(20 * time.Second)
	s.CleanupExpired()

	require.Equal(t, 2, s.Len(), "expired item below a live top must not be purged")
	items := s.Items()
	assert.True(t, items[1].Expired(clock.Now(), DefaultBaseMaxTurns, DefaultBaseTimeout))

	top, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, "new", top.Keyword)

	// Once the top expires the sweep reaches the stale item too.
	clock.Advance(10 * time.Minute)
	s.CleanupExpired()
	assert.True(t, s.IsEmpty())
}

func TestCleanupStopsAtFirstLiveTop(t *testing.T) {
	s, _ := newTestStack(t)
	s.Push(model.TopicFamily, "bottom", 10)
	s.Push(model.TopicEmotion, "middle", 1)
	s.Push(model.TopicEmotion, "top", 1)

	s.AgeOneTurn()
	s.AgeOneTurn()

	require.Equal(t, 1, s.Len())
	top, _ := s.Peek()
	assert.Equal(t, "bottom", top.Keyword)
}

func TestNewStackDefaults(t *testing.T) {
	s := NewStack(Options{})
	assert.Equal(t, DefaultBaseMaxTurns, s.opts.BaseMaxTurns)
	assert.Equal(t, DefaultBaseTimeout, s.opts.BaseTimeout)
	assert.NotNil(t, s.opts.Clock)
}
