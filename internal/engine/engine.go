// Package engine implements the rule matcher and response composer.
package engine

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/rcliao/eliza/internal/memory"
	"github.com/rcliao/eliza/internal/model"
	"github.com/rcliao/eliza/internal/reflection"
)

// ErrNoRules is returned when an engine is built without rules.
var ErrNoRules = errors.New("no rules loaded")

// Picker chooses uniformly among n options, returning an index in [0, n).
// *rand.Rand satisfies it.
type Picker interface {
	Intn(n int) int
}

// Selection is the outcome of a successful match.
type Selection struct {
	Rule model.Rule
	// Groups holds the captured groups, whole match first.
	Groups []string
}

// Keyword is the text remembered for the selection: the first capture group,
// or the whole match when the pattern has no groups.
func (s Selection) Keyword() string {
	if len(s.Groups) > 1 {
		return s.Groups[1]
	}
	if len(s.Groups) == 1 {
		return s.Groups[0]
	}
	return ""
}

// Args returns the template arguments: the explicit capture groups in order,
// followed by the whole match. With no capture groups {0} is the whole match.
func (s Selection) Args() []string {
	if len(s.Groups) == 0 {
		return nil
	}
	args := make([]string, 0, len(s.Groups))
	args = append(args, s.Groups[1:]...)
	return append(args, s.Groups[0])
}

type compiledRule struct {
	rule model.Rule
	re   *regexp2.Regexp
}

// Engine holds one conversation: its rules and its context stack. It is not
// safe for concurrent use.
type Engine struct {
	rules     []compiledRule
	skipped   int
	stack     *memory.Stack
	reflector *reflection.Table
	picker    Picker
	log       *zap.Logger
}

type config struct {
	picker       Picker
	clock        memory.Clock
	log          *zap.Logger
	reflector    *reflection.Table
	baseMaxTurns int
	baseTimeout  time.Duration
	matchTimeout time.Duration
}

// Option configures an Engine.
type Option func(*config)

// WithPicker sets the random source for tie-breaks and template choice.
func WithPicker(p Picker) Option { return func(c *config) { c.picker = p } }

// WithClock sets the clock used for context expiry.
func WithClock(clk memory.Clock) Option { return func(c *config) { c.clock = clk } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *config) { c.log = l } }

// WithReflection replaces the default reflection table.
func WithReflection(t *reflection.Table) Option { return func(c *config) { c.reflector = t } }

// WithDecay sets the base turn and time budget of context items.
func WithDecay(baseMaxTurns int, baseTimeout time.Duration) Option {
	return func(c *config) {
		c.baseMaxTurns = baseMaxTurns
		c.baseTimeout = baseTimeout
	}
}

// WithMatchTimeout bounds each pattern evaluation.
func WithMatchTimeout(d time.Duration) Option { return func(c *config) { c.matchTimeout = d } }

// New builds an engine over rules. Rules with a pattern that does not
// compile, or without responses, are logged and skipped.
func New(rules []model.Rule, opts ...Option) (*Engine, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	cfg := config{
		picker:       rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:        memory.SystemClock{},
		log:          zap.NewNop(),
		reflector:    reflection.DefaultTable(),
		baseMaxTurns: memory.DefaultBaseMaxTurns,
		baseTimeout:  memory.DefaultBaseTimeout,
		matchTimeout: DefaultMatchTimeout,
	}
	for _, o := range opts {
		o(&cfg)
	}

	e := &Engine{
		stack: memory.NewStack(memory.Options{
			BaseMaxTurns: cfg.baseMaxTurns,
			BaseTimeout:  cfg.baseTimeout,
			Clock:        cfg.clock,
		}),
		reflector: cfg.reflector,
		picker:    cfg.picker,
		log:       cfg.log,
	}

	for _, r := range rules {
		if len(r.Responses) == 0 {
			e.skip(r, errors.New("rule has no responses"))
			continue
		}
		re, err := compilePattern(r.Pattern, cfg.matchTimeout)
		if err != nil {
			e.skip(r, err)
			continue
		}
		groups := len(re.GetGroupNumbers())
		for _, tmpl := range r.Responses {
			if p := maxPlaceholder(tmpl); p >= groups {
				e.log.Warn("response references a missing group",
					zap.String("rule", ruleName(r)),
					zap.String("response", tmpl),
					zap.Int("groups", groups))
			}
		}
		e.rules = append(e.rules, compiledRule{rule: r.Clone(), re: re})
	}

	e.log.Debug("engine ready", zap.Int("rules", len(e.rules)), zap.Int("skipped", e.skipped))
	return e, nil
}

func (e *Engine) skip(r model.Rule, err error) {
	e.skipped++
	e.log.Warn("skipping rule", zap.String("rule", ruleName(r)), zap.String("pattern", r.Pattern), zap.Error(err))
}

func ruleName(r model.Rule) string {
	if r.ID != "" {
		return r.ID
	}
	return r.Pattern
}

// Rules returns the number of usable rules.
func (e *Engine) Rules() int { return len(e.rules) }

// Skipped returns the number of rules rejected at construction.
func (e *Engine) Skipped() int { return e.skipped }

// Memory returns a snapshot of the context stack, most recent first.
func (e *Engine) Memory() []memory.Item { return e.stack.Items() }

// Match evaluates every active rule against input and selects a winner
// among the highest-priority matches. It has no side effects on the
// context stack, and the returned rule is a copy.
func (e *Engine) Match(input string) (Selection, bool) {
	input = normalize(input)

	var candidates []Selection
	best := 0
	for _, cr := range e.rules {
		if !cr.rule.Active {
			continue
		}
		m, err := cr.re.FindStringMatch(input)
		if err != nil {
			e.log.Warn("rule evaluation failed", zap.String("rule", ruleName(cr.rule)), zap.Error(err))
			continue
		}
		if m == nil {
			continue
		}
		if len(candidates) == 0 || cr.rule.Priority > best {
			best = cr.rule.Priority
		}
		candidates = append(candidates, Selection{Rule: cr.rule, Groups: groupValues(m)})
	}
	if len(candidates) == 0 {
		return Selection{}, false
	}

	tied := candidates[:0]
	for _, c := range candidates {
		if c.Rule.Priority == best {
			tied = append(tied, c)
		}
	}
	sel := tied[e.picker.Intn(len(tied))]
	sel.Rule = sel.Rule.Clone()
	return sel, true
}

func groupValues(m *regexp2.Match) []string {
	groups := m.Groups()
	out := make([]string, len(groups))
	for i := range groups {
		out[i] = groups[i].String()
	}
	return out
}

// Respond runs one conversational turn.
func (e *Engine) Respond(input string) string {
	if strings.TrimSpace(input) == "" {
		return e.fallback()
	}

	sel, ok := e.Match(input)
	if !ok {
		e.stack.AgeOneTurn()
		return e.fromContext()
	}

	e.stack.Push(sel.Rule.Topic, sel.Keyword(), sel.Rule.ContextWeight)

	template := sel.Rule.Responses[e.picker.Intn(len(sel.Rule.Responses))]
	args := sel.Args()
	for i, a := range args {
		args[i] = e.reflector.Reflect(a)
	}

	e.log.Debug("rule matched",
		zap.String("rule", ruleName(sel.Rule)),
		zap.Int("priority", sel.Rule.Priority),
		zap.Stringer("topic", sel.Rule.Topic),
		zap.String("keyword", sel.Keyword()))

	return formatTemplate(template, args)
}

func (e *Engine) fromContext() string {
	top, ok := e.stack.Peek()
	if !ok {
		return e.fallback()
	}
	if reply, ok := followUp(top); ok {
		return reply
	}
	return e.fallback()
}
