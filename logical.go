package adaptive

import (
	"context"
	"fmt"

	"github.com/zoobzio/zyn"
)

// LogicalReasoner treats the question as a formal argument: extract
// premises, derive the conclusion deductively, then probe the argument's
// validity. Suited to conditional and mathematical questions where the
// answer should follow necessarily from the premises.
type LogicalReasoner struct {
	provider    Provider
	temperature float32
}

// NewLogicalReasoner creates a logical reasoner at deterministic
// temperature.
func NewLogicalReasoner() *LogicalReasoner {
	return &LogicalReasoner{
		temperature: DefaultReasoningTemperature,
	}
}

// WithProvider sets the provider for this reasoner.
func (r *LogicalReasoner) WithProvider(p Provider) *LogicalReasoner {
	r.provider = p
	return r
}

// WithTemperature sets the synapse temperature.
func (r *LogicalReasoner) WithTemperature(temp float32) *LogicalReasoner {
	r.temperature = temp
	return r
}

// Strategy identifies this reasoner.
func (r *LogicalReasoner) Strategy() Strategy {
	return StrategyLogical
}

// Reason runs formalize, deduce, verify on a fresh session.
func (r *LogicalReasoner) Reason(ctx context.Context, q Question) (ReasoningResult, error) {
	provider, err := ResolveProvider(ctx, r.provider)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyLogical, Message: "provider resolution failed", Cause: err}
	}

	session := zyn.NewSession()
	var steps []ReasoningStep

	baseContext := ""
	if rc := researchFromQuestion(q); rc != nil {
		baseContext = rc.Render()
	}

	premises, err := r.formalize(ctx, session, provider, q, baseContext)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyLogical, Message: "formalization failed", Cause: err}
	}
	steps = append(steps, ReasoningStep{Step: "formalize", Output: premises})

	answer, err := r.deduce(ctx, session, provider, q, premises)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyLogical, Message: "deduction failed", Cause: err}
	}
	steps = append(steps, ReasoningStep{Step: "deduce", Output: answer})

	confidence, valid, err := r.verify(ctx, session, provider, premises, answer)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyLogical, Message: "validity check failed", Cause: err}
	}
	steps = append(steps, ReasoningStep{Step: "verify", Output: fmt.Sprintf("valid=%t", valid), Confidence: confidence})

	return ReasoningResult{
		Strategy:   StrategyLogical,
		Answer:     answer,
		Confidence: confidence,
		Steps:      steps,
		Metadata: map[string]string{
			"evidence": premises,
			"valid":    fmt.Sprintf("%t", valid),
		},
	}, nil
}

// formalize extracts premises and logical structure from the question.
func (r *LogicalReasoner) formalize(ctx context.Context, session *zyn.Session, provider Provider, q Question, baseContext string) (string, error) {
	synapse, err := zyn.Transform("Extract the premises and logical structure", provider)
	if err != nil {
		return "", fmt.Errorf("failed to create transform synapse: %w", err)
	}

	premises, err := synapse.FireWithInput(ctx, session, zyn.TransformInput{
		Text:        q.Text,
		Context:     baseContext,
		Style:       "List each premise on its own line, make implicit assumptions explicit, and name the logical form (modus ponens, syllogism, etc.) if one applies.",
		Temperature: r.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("transform synapse execution failed: %w", err)
	}
	return premises, nil
}

// deduce derives the conclusion from the premises.
func (r *LogicalReasoner) deduce(ctx context.Context, session *zyn.Session, provider Provider, q Question, premises string) (string, error) {
	synapse, err := zyn.Transform("Derive the conclusion deductively from the premises", provider)
	if err != nil {
		return "", fmt.Errorf("failed to create transform synapse: %w", err)
	}

	answer, err := synapse.FireWithInput(ctx, session, zyn.TransformInput{
		Text:        q.Text,
		Context:     fmt.Sprintf("Premises:\n%s", premises),
		Style:       "Apply only the stated premises. Show each inference step. State the conclusion plainly at the end.",
		Temperature: r.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("transform synapse execution failed: %w", err)
	}
	return answer, nil
}

// verify probes whether the conclusion validly follows from the premises.
func (r *LogicalReasoner) verify(ctx context.Context, session *zyn.Session, provider Provider, premises, answer string) (float64, bool, error) {
	probe, err := zyn.Binary("Does the conclusion follow validly from the premises, with no logical fallacies?", provider)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create binary synapse: %w", err)
	}

	resp, err := probe.FireWithInput(ctx, session, zyn.BinaryInput{
		Subject:     answer,
		Context:     fmt.Sprintf("Premises:\n%s", premises),
		Temperature: r.temperature,
	})
	if err != nil {
		return 0, false, fmt.Errorf("binary synapse execution failed: %w", err)
	}

	confidence := float64(resp.Confidence)
	if !resp.Decision {
		confidence = 1.0 - confidence
	}
	return confidence, resp.Decision, nil
}

// DefaultReasoners returns one reasoner per strategy, in canonical order.
func DefaultReasoners() []Reasoner {
	return []Reasoner{
		NewSequentialReasoner(),
		NewBranchingReasoner(),
		NewAbductiveReasoner(),
		NewLateralReasoner(),
		NewLogicalReasoner(),
	}
}

var _ Reasoner = (*LogicalReasoner)(nil)
