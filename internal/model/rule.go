// Package model defines the core rule data types.
package model

import (
	"fmt"
	"strings"
)

// Topic tags the subject a rule touches. The set is closed.
type Topic int

const (
	TopicNone Topic = iota
	TopicEmotion
	TopicFamily
	TopicDesire
	TopicReason
	TopicHobby
)

// Topics lists every topic in declaration order.
var Topics = []Topic{TopicNone, TopicEmotion, TopicFamily, TopicDesire, TopicReason, TopicHobby}

var topicNames = map[Topic]string{
	TopicNone:    "none",
	TopicEmotion: "emotion",
	TopicFamily:  "family",
	TopicDesire:  "desire",
	TopicReason:  "reason",
	TopicHobby:   "hobby",
}

func (t Topic) String() string {
	if s, ok := topicNames[t]; ok {
		return s
	}
	return fmt.Sprintf("topic(%d)", int(t))
}

// ParseTopic parses a topic name case-insensitively. The empty string is
// TopicNone.
func ParseTopic(s string) (Topic, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TopicNone, nil
	}
	for t, name := range topicNames {
		if name == s {
			return t, nil
		}
	}
	return TopicNone, fmt.Errorf("unknown topic %q (valid: none, emotion, family, desire, reason, hobby)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Topic) MarshalText() ([]byte, error) {
	if _, ok := topicNames[t]; !ok {
		return nil, fmt.Errorf("invalid topic %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Topic) UnmarshalText(b []byte) error {
	parsed, err := ParseTopic(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Rule is one pattern/response pairing. Rules are read-only once handed to
// an engine.
type Rule struct {
	ID            string   `json:"id,omitempty" yaml:"id,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Pattern       string   `json:"pattern" yaml:"pattern"`
	Priority      int      `json:"priority" yaml:"priority"`
	Topic         Topic    `json:"topic" yaml:"topic"`
	Responses     []string `json:"responses" yaml:"responses"`
	ContextWeight int      `json:"contextWeight" yaml:"contextWeight"`
	Active        bool     `json:"isActive" yaml:"isActive"`
}

// SameAs reports whether two rules are the same for selection purposes.
func (r Rule) SameAs(o Rule) bool {
	return r.Priority == o.Priority && r.Pattern == o.Pattern
}

// Clone returns a copy that shares no slices with r.
func (r Rule) Clone() Rule {
	c := r
	c.Responses = append([]string(nil), r.Responses...)
	return c
}

// RuleSet is the document shape of a rule file.
type RuleSet struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Rules []Rule `json:"rules" yaml:"rules"`
}
