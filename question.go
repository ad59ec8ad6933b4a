package adaptive

import "strings"

// Context keys recognized on a Question. Callers may carry arbitrary
// additional keys; these are the ones the orchestrator consults.
const (
	// ContextDomain carries a domain hint ("math", "art", ...) used by
	// single-select strategy picking and validation config construction.
	ContextDomain = "domain"

	// ContextValidationLevel overrides the derived validation level
	// ("basic", "standard", "strict", "expert").
	ContextValidationLevel = "validation_level"

	// ContextMinConfidence overrides the per-level minimum confidence.
	ContextMinConfidence = "min_confidence"

	// ContextPreviousStrategies marks that the caller carries prior
	// strategy history, enabling performance-based selection.
	ContextPreviousStrategies = "previous_strategies"

	// ContextResearch carries a *ResearchContext injected before dispatch.
	ContextResearch = "research"
)

// Question is an immutable question plus optional free-form context.
// Construct with NewQuestion; the context map is copied on the way in and
// never mutated afterward.
type Question struct {
	Text string

	context map[string]any
}

// NewQuestion builds a Question, copying the provided context map.
func NewQuestion(text string, context map[string]any) Question {
	q := Question{Text: text}
	if len(context) > 0 {
		q.context = make(map[string]any, len(context))
		for k, v := range context {
			q.context[k] = v
		}
	}
	return q
}

// Blank reports whether the question text is empty or whitespace-only.
func (q Question) Blank() bool {
	return strings.TrimSpace(q.Text) == ""
}

// ContextValue returns the context entry for key, if present.
func (q Question) ContextValue(key string) (any, bool) {
	v, ok := q.context[key]
	return v, ok
}

// ContextString returns the context entry for key as a string.
func (q Question) ContextString(key string) (string, bool) {
	v, ok := q.context[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ContextFloat returns the context entry for key as a float64. Integer
// values are widened.
func (q Question) ContextFloat(key string) (float64, bool) {
	v, ok := q.context[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Context returns a copy of the full context map.
func (q Question) Context() map[string]any {
	if q.context == nil {
		return nil
	}
	out := make(map[string]any, len(q.context))
	for k, v := range q.context {
		out[k] = v
	}
	return out
}

// WithContextValue returns a copy of the question with one additional
// context entry. The receiver is unchanged.
func (q Question) WithContextValue(key string, value any) Question {
	next := NewQuestion(q.Text, q.context)
	if next.context == nil {
		next.context = make(map[string]any, 1)
	}
	next.context[key] = value
	return next
}

// WordCount returns the number of whitespace-separated words in the text.
func (q Question) WordCount() int {
	return len(strings.Fields(q.Text))
}
