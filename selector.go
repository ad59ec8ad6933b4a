package adaptive

import (
	"fmt"
	"regexp"
	"strings"
)

// SelectionRule maps a case-insensitive text pattern to a strategy tag.
// Rules are evaluated in order; in multi-select mode every matching rule
// contributes its tag, in single-select mode the first match wins.
type SelectionRule struct {
	Name     string   `yaml:"name"`
	Pattern  string   `yaml:"pattern"`
	Strategy Strategy `yaml:"strategy"`

	re *regexp.Regexp
}

// compile builds the case-insensitive matcher for the rule pattern.
func (r *SelectionRule) compile() error {
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return fmt.Errorf("selection rule %q: %w", r.Name, err)
	}
	r.re = re
	return nil
}

// DefaultFanOutRules returns the ordered rule table for the initial
// multi-select fan-out. The complexity predicate (word count, comma
// clauses) is structural rather than textual and lives in Select itself.
func DefaultFanOutRules() []SelectionRule {
	return []SelectionRule{
		{Name: "conditional", Pattern: `\b(if|then|therefore|implies|because)\b`, Strategy: StrategyLogical},
		{Name: "explanatory", Pattern: `\b(why|explain|reason|cause)\b`, Strategy: StrategyAbductive},
		{Name: "creative", Pattern: `\b(creative|innovative|new approach|alternative)\b`, Strategy: StrategyLateral},
	}
}

// DefaultAdaptiveRules returns the ordered rule table for single-select
// adaptive picking. First match wins.
func DefaultAdaptiveRules() []SelectionRule {
	return []SelectionRule{
		{Name: "conditional", Pattern: `if.*then|implies|therefore`, Strategy: StrategyLogical},
		{Name: "causal", Pattern: `\bwhy\b|\bcause\b|\bbecause\b`, Strategy: StrategyAbductive},
		{Name: "creative", Pattern: `creative|innovative|new way|design`, Strategy: StrategyLateral},
		{Name: "multi-clause", Pattern: `.*,.*and.*|.*,.*or.*|multiple|several`, Strategy: StrategyBranching},
	}
}

// complexityWordThreshold triggers BRANCHING in fan-out mode for long or
// multi-clause questions.
const complexityWordThreshold = 10

// Selector maps question text and context to strategy tags using ordered
// heuristic rules. It never fails: SEQUENTIAL is the sole default when
// nothing matches.
type Selector struct {
	fanOutRules   []SelectionRule
	adaptiveRules []SelectionRule
}

// NewSelector builds a selector from the given rule tables. Empty tables
// fall back to the defaults. Invalid patterns return an error rather than
// panicking at match time.
func NewSelector(fanOut, adaptive []SelectionRule) (*Selector, error) {
	if len(fanOut) == 0 {
		fanOut = DefaultFanOutRules()
	}
	if len(adaptive) == 0 {
		adaptive = DefaultAdaptiveRules()
	}

	s := &Selector{fanOutRules: fanOut, adaptiveRules: adaptive}
	for i := range s.fanOutRules {
		if err := s.fanOutRules[i].compile(); err != nil {
			return nil, err
		}
	}
	for i := range s.adaptiveRules {
		if err := s.adaptiveRules[i].compile(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DefaultSelector returns a selector over the built-in rule tables.
func DefaultSelector() *Selector {
	s, err := NewSelector(nil, nil)
	if err != nil {
		// Built-in patterns are constants; a compile failure is a bug.
		panic(err)
	}
	return s
}

// Select evaluates the fan-out rules against the question. Predicates are
// independent, not mutually exclusive: every matching rule contributes its
// tag. Long or comma-separated questions additionally contribute
// BRANCHING. Returns at least one tag.
func (s *Selector) Select(q Question) []Strategy {
	var tags []Strategy
	for i := range s.fanOutRules {
		rule := &s.fanOutRules[i]
		if rule.re.MatchString(q.Text) {
			tags = appendTag(tags, rule.Strategy)
		}
	}

	if q.WordCount() > complexityWordThreshold || multiClause(q.Text) {
		tags = appendTag(tags, StrategyBranching)
	}

	if len(tags) == 0 {
		tags = append(tags, StrategySequential)
	}
	return tags
}

// SelectOne picks a single strategy for an adaptive attempt. Priority:
// text rules in table order, then context domain hints, then historical
// performance when the context carries prior-strategy history, then
// SEQUENTIAL.
func (s *Selector) SelectOne(q Question, tracker *PerformanceTracker) Strategy {
	for i := range s.adaptiveRules {
		rule := &s.adaptiveRules[i]
		if rule.re.MatchString(q.Text) {
			return rule.Strategy
		}
	}

	if domain, ok := q.ContextString(ContextDomain); ok {
		switch strings.ToLower(domain) {
		case "math", "physics", "logic":
			return StrategyLogical
		case "art", "design", "innovation":
			return StrategyLateral
		}
	}

	if _, ok := q.ContextValue(ContextPreviousStrategies); ok && tracker != nil {
		return tracker.Best()
	}

	return StrategySequential
}

// multiClause reports whether the text contains comma-separated clauses.
func multiClause(text string) bool {
	parts := strings.Split(text, ",")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return false
		}
	}
	return true
}

func appendTag(tags []Strategy, tag Strategy) []Strategy {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
