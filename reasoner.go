package adaptive

import "context"

// ReasoningStep is one labeled step in a reasoner's derivation.
type ReasoningStep struct {
	Step       string  `json:"step"`
	Output     string  `json:"output"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ReasoningResult is the outcome of a single Reasoner invocation. It is
// owned exclusively by the dispatcher call site and never shared across
// concurrent invocations.
type ReasoningResult struct {
	Strategy   Strategy          `json:"strategy"`
	Answer     string            `json:"answer"`
	Confidence float64           `json:"confidence"`
	Steps      []ReasoningStep   `json:"steps,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Reasoner produces an answer, a confidence in [0,1], and labeled steps
// for a question. All strategy implementations satisfy this single
// interface; there is no runtime capability probing.
//
// A failed invocation returns a non-nil error (typically *ReasoningError).
// The dispatcher recovers per-strategy failures locally.
type Reasoner interface {
	// Strategy returns the tag this reasoner implements.
	Strategy() Strategy

	// Reason derives an answer for the question. Implementations may
	// suspend on their own I/O; they must honor ctx cancellation in
	// whatever blocking work they do.
	Reason(ctx context.Context, q Question) (ReasoningResult, error)
}
