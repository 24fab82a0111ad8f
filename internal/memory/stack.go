// Package memory holds the short-term conversational context: a LIFO stack
// of recently touched topics that decay by turns and wall-clock time.
package memory

import (
	"time"

	"github.com/rcliao/eliza/internal/model"
)

const (
	DefaultBaseMaxTurns = 2
	DefaultBaseTimeout  = 30 * time.Second
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Item is one remembered topic.
type Item struct {
	Topic            model.Topic `json:"topic"`
	Keyword          string      `json:"keyword"`
	Weight           int         `json:"weight"`
	TurnsSinceUpdate int         `json:"turns_since_update"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Expired reports whether the item has outlived its weighted budget of turns
// or time.
func (it Item) Expired(now time.Time, baseMaxTurns int, baseTimeout time.Duration) bool {
	maxTurns := baseMaxTurns * it.Weight
	timeout := baseTimeout * time.Duration(it.Weight)
	return it.TurnsSinceUpdate >= maxTurns || now.Sub(it.CreatedAt) > timeout
}

// Options configures a Stack.
type Options struct {
	BaseMaxTurns int
	BaseTimeout  time.Duration
	Clock        Clock
}

// DefaultOptions returns the default decay policy.
func DefaultOptions() Options {
	return Options{
		BaseMaxTurns: DefaultBaseMaxTurns,
		BaseTimeout:  DefaultBaseTimeout,
		Clock:        SystemClock{},
	}
}

// Stack is the context stack. It is not safe for concurrent use; each
// conversation owns its own Stack.
type Stack struct {
	items []Item // top is the last element
	opts  Options
}

// NewStack creates an empty stack. Zero-valued option fields take defaults.
func NewStack(opts Options) *Stack {
	def := DefaultOptions()
	if opts.BaseMaxTurns <= 0 {
		opts.BaseMaxTurns = def.BaseMaxTurns
	}
	if opts.BaseTimeout <= 0 {
		opts.BaseTimeout = def.BaseTimeout
	}
	if opts.Clock == nil {
		opts.Clock = def.Clock
	}
	return &Stack{opts: opts}
}

// Push adds a new top entry. Existing entries for the same topic are left
// alone.
func (s *Stack) Push(topic model.Topic, keyword string, weight int) {
	s.items = append(s.items, Item{
		Topic:     topic,
		Keyword:   keyword,
		Weight:    max(1, weight),
		CreatedAt: s.opts.Clock.Now(),
	})
}

// AgeOneTurn increments the turn counter of every item, then sweeps expired
// items off the top.
func (s *Stack) AgeOneTurn() {
	for i := range s.items {
		s.items[i].TurnsSinceUpdate++
	}
	s.CleanupExpired()
}

// CleanupExpired pops items while the top one is expired. It stops at the
// first live top, so expired items beneath it stay until they surface.
func (s *Stack) CleanupExpired() {
	now := s.opts.Clock.Now()
	for len(s.items) > 0 {
		top := s.items[len(s.items)-1]
		if !top.Expired(now, s.opts.BaseMaxTurns, s.opts.BaseTimeout) {
			return
		}
		s.items = s.items[:len(s.items)-1]
	}
}

// Peek returns the top item.
func (s *Stack) Peek() (Item, bool) {
	if len(s.items) == 0 {
		return Item{}, false
	}
	return s.items[len(s.items)-1], true
}

// IsEmpty reports whether the stack holds no items.
func (s *Stack) IsEmpty() bool { return len(s.items) == 0 }

// Len returns the number of items, including unswept expired ones.
func (s *Stack) Len() int { return len(s.items) }

// Items returns a snapshot, most recent first.
func (s *Stack) Items() []Item {
	out := make([]Item, len(s.items))
	for i, it := range s.items {
		out[len(s.items)-1-i] = it
	}
	return out
}
