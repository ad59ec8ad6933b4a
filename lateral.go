package adaptive

import (
	"context"
	"fmt"

	"github.com/zoobzio/zyn"
)

// LateralReasoner approaches a question sideways: reframe it from an
// unexpected angle at creative temperature, answer the reframed version,
// then probe whether the result is genuinely novel rather than a
// conventional answer in disguise.
type LateralReasoner struct {
	provider    Provider
	temperature float32
}

// NewLateralReasoner creates a lateral reasoner at creative temperature.
func NewLateralReasoner() *LateralReasoner {
	return &LateralReasoner{
		temperature: DefaultCreativeTemperature,
	}
}

// WithProvider sets the provider for this reasoner.
func (r *LateralReasoner) WithProvider(p Provider) *LateralReasoner {
	r.provider = p
	return r
}

// WithTemperature sets the synapse temperature.
func (r *LateralReasoner) WithTemperature(temp float32) *LateralReasoner {
	r.temperature = temp
	return r
}

// Strategy identifies this reasoner.
func (r *LateralReasoner) Strategy() Strategy {
	return StrategyLateral
}

// Reason runs reframe, answer, novelty-check on a fresh session.
func (r *LateralReasoner) Reason(ctx context.Context, q Question) (ReasoningResult, error) {
	provider, err := ResolveProvider(ctx, r.provider)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyLateral, Message: "provider resolution failed", Cause: err}
	}

	session := zyn.NewSession()
	var steps []ReasoningStep

	baseContext := ""
	if rc := researchFromQuestion(q); rc != nil {
		baseContext = rc.Render()
	}

	reframed, err := r.reframe(ctx, session, provider, q, baseContext)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyLateral, Message: "reframing failed", Cause: err}
	}
	steps = append(steps, ReasoningStep{Step: "reframe", Output: reframed})

	answer, err := r.answer(ctx, session, provider, q, reframed)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyLateral, Message: "answer generation failed", Cause: err}
	}
	steps = append(steps, ReasoningStep{Step: "answer", Output: answer})

	confidence, novel, err := r.noveltyCheck(ctx, session, provider, q, answer)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyLateral, Message: "novelty check failed", Cause: err}
	}
	steps = append(steps, ReasoningStep{Step: "novelty", Output: fmt.Sprintf("novel=%t", novel), Confidence: confidence})

	return ReasoningResult{
		Strategy:   StrategyLateral,
		Answer:     answer,
		Confidence: confidence,
		Steps:      steps,
		Metadata: map[string]string{
			"reframed": reframed,
			"novel":    fmt.Sprintf("%t", novel),
		},
	}, nil
}

// reframe restates the question from an unconventional angle.
func (r *LateralReasoner) reframe(ctx context.Context, session *zyn.Session, provider Provider, q Question, baseContext string) (string, error) {
	synapse, err := zyn.Transform("Reframe the question from an unexpected perspective", provider)
	if err != nil {
		return "", fmt.Errorf("failed to create transform synapse: %w", err)
	}

	reframed, err := synapse.FireWithInput(ctx, session, zyn.TransformInput{
		Text:        q.Text,
		Context:     baseContext,
		Style:       "Invert an assumption, borrow an analogy from an unrelated field, or change the frame entirely. One reframed question, nothing else.",
		Temperature: r.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("transform synapse execution failed: %w", err)
	}
	return reframed, nil
}

// answer resolves the reframed question back onto the original one.
func (r *LateralReasoner) answer(ctx context.Context, session *zyn.Session, provider Provider, q Question, reframed string) (string, error) {
	synapse, err := zyn.Transform("Answer the original question through the reframed lens", provider)
	if err != nil {
		return "", fmt.Errorf("failed to create transform synapse: %w", err)
	}

	answer, err := synapse.FireWithInput(ctx, session, zyn.TransformInput{
		Text:        q.Text,
		Context:     fmt.Sprintf("Reframed as: %s", reframed),
		Style:       "Use the reframing to reach an answer a conventional approach would miss, then translate it back to the original question's terms.",
		Temperature: r.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("transform synapse execution failed: %w", err)
	}
	return answer, nil
}

// noveltyCheck probes whether the answer offers a genuinely different
// perspective. The probe runs at deterministic temperature regardless of
// the reasoner's creative setting.
func (r *LateralReasoner) noveltyCheck(ctx context.Context, session *zyn.Session, provider Provider, q Question, answer string) (float64, bool, error) {
	probe, err := zyn.Binary("Does this answer offer a genuinely novel perspective while still addressing the question?", provider)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create binary synapse: %w", err)
	}

	resp, err := probe.FireWithInput(ctx, session, zyn.BinaryInput{
		Subject:     answer,
		Context:     fmt.Sprintf("Question: %s", q.Text),
		Temperature: DefaultReasoningTemperature,
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

var _ Reasoner = (*LateralReasoner)(nil)
