package adaptive

import "strings"

// Attempt records one completed selection-dispatch-validate cycle for a
// question in flight.
type Attempt struct {
	Strategy Strategy
	Result   ReasoningResult
	Feedback ValidationFeedback
}

// attemptState tracks a single question's progress through the revision
// loop. Created when processing starts, discarded on completion; never
// shared across questions.
type attemptState struct {
	current Strategy
	number  int
	history []Attempt
}

func (s *attemptState) record(tag Strategy, result ReasoningResult, feedback ValidationFeedback) {
	s.history = append(s.history, Attempt{Strategy: tag, Result: result, Feedback: feedback})
}

// tried returns the strategies attempted so far, in order.
func (s *attemptState) tried() []Strategy {
	tags := make([]Strategy, len(s.history))
	for i, a := range s.history {
		tags[i] = a.Strategy
	}
	return tags
}

// aspectFloor is the score below which an aspect drives the next strategy
// choice.
const aspectFloor = 0.6

// NextStrategy picks the replacement strategy after a rejected attempt.
// It is a pure function of the feedback and the performance snapshot:
// identical inputs always yield the identical choice. Priority: a
// "logical fallacy" issue forces LOGICAL; a "creativity" suggestion
// forces LATERAL; an "evidence" suggestion forces ABDUCTIVE; then weak
// reasoning, creativity, or completeness aspect scores force LOGICAL,
// LATERAL, or BRANCHING respectively; otherwise the tag with the highest
// average confidence in the snapshot.
func NextStrategy(feedback ValidationFeedback, snapshot map[Strategy]PerformanceRecord) Strategy {
	if containsFold(feedback.Issues, "logical fallacy") {
		return StrategyLogical
	}
	if containsFold(feedback.Suggestions, "creativity") {
		return StrategyLateral
	}
	if containsFold(feedback.Suggestions, "evidence") {
		return StrategyAbductive
	}

	scores := feedback.AspectScores
	if score, ok := scores[AspectReasoning]; ok && score < aspectFloor {
		return StrategyLogical
	}
	if score, ok := scores[Aspect("creativity")]; ok && score < aspectFloor {
		return StrategyLateral
	}
	if score, ok := scores[AspectCompleteness]; ok && score < aspectFloor {
		return StrategyBranching
	}

	return bestStrategy(snapshot)
}

// containsFold reports whether any entry contains the substring,
// case-insensitively.
func containsFold(entries []string, substr string) bool {
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e), substr) {
			return true
		}
	}
	return false
}
