package adaptive

import (
	"errors"
	"fmt"
)

// ErrEmptyQuestion is returned by Process for blank input. It is raised
// before any dispatch or tracker mutation.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// ReasoningError reports a failed Reasoner invocation. The dispatcher
// converts these to zero-confidence placeholder results; they never reach
// the orchestrator's caller directly.
type ReasoningError struct {
	Strategy Strategy
	Message  string
	Cause    error
	Context  map[string]string
}

func (e *ReasoningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("reasoning failed (%s): %s: %v", e.Strategy, e.Message, e.Cause)
	}
	return fmt.Sprintf("reasoning failed (%s): %s", e.Strategy, e.Message)
}

func (e *ReasoningError) Unwrap() error { return e.Cause }

// ValidationError reports a failed Validator invocation. Distinct from a
// validation rejection, which is feedback, not an error.
type ValidationError struct {
	Message string
	Cause   error
	Context map[string]string
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation failed: %s: %v", e.Message, e.Cause)
	}
	return "validation failed: " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// ExhaustedError is the terminal error surfaced when the revision loop
// runs out of attempts without an accepted answer.
type ExhaustedError struct {
	Attempts       int
	Strategies     []Strategy
	LastConfidence float64
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf(
		"failed to generate satisfactory answer after %d attempts (strategies: %v, last confidence: %.2f)",
		e.Attempts, e.Strategies, e.LastConfidence,
	)
}
