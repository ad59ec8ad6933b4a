package adaptive

import (
	"context"
	"fmt"
	"strings"

	"github.com/zoobzio/zyn"
)

// hypothesisCount is how many candidate explanations the generation stage
// asks for.
const hypothesisCount = 3

// AbductiveReasoner infers the best explanation: generate candidate
// hypotheses, rank them by explanatory power, then elaborate the winner
// into an answer.
type AbductiveReasoner struct {
	provider    Provider
	temperature float32
}

// NewAbductiveReasoner creates an abductive reasoner.
func NewAbductiveReasoner() *AbductiveReasoner {
	return &AbductiveReasoner{
		temperature: DefaultReasoningTemperature,
	}
}

// WithProvider sets the provider for this reasoner.
func (r *AbductiveReasoner) WithProvider(p Provider) *AbductiveReasoner {
	r.provider = p
	return r
}

// WithTemperature sets the synapse temperature.
func (r *AbductiveReasoner) WithTemperature(temp float32) *AbductiveReasoner {
	r.temperature = temp
	return r
}

// Strategy identifies this reasoner.
func (r *AbductiveReasoner) Strategy() Strategy {
	return StrategyAbductive
}

// Reason runs the generate-rank-elaborate sequence on a fresh session.
func (r *AbductiveReasoner) Reason(ctx context.Context, q Question) (ReasoningResult, error) {
	provider, err := ResolveProvider(ctx, r.provider)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyAbductive, Message: "provider resolution failed", Cause: err}
	}

	session := zyn.NewSession()
	var steps []ReasoningStep

	baseContext := ""
	if rc := researchFromQuestion(q); rc != nil {
		baseContext = rc.Render()
	}

	hypotheses, err := r.generateHypotheses(ctx, session, provider, q, baseContext)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyAbductive, Message: "hypothesis generation failed", Cause: err}
	}
	steps = append(steps, ReasoningStep{Step: "hypothesize", Output: strings.Join(hypotheses, "; ")})

	best, confidence, reasoning, err := r.rankHypotheses(ctx, session, provider, q, hypotheses)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyAbductive, Message: "hypothesis ranking failed", Cause: err}
	}
	steps = append(steps, ReasoningStep{Step: "rank", Output: best, Confidence: confidence})

	answer, err := r.elaborate(ctx, session, provider, q, best, baseContext)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyAbductive, Message: "elaboration failed", Cause: err}
	}
	steps = append(steps, ReasoningStep{Step: "elaborate", Output: answer, Confidence: confidence})

	metadata := map[string]string{
		"hypotheses": fmt.Sprintf("%d", len(hypotheses)),
	}
	if len(reasoning) > 0 {
		metadata["evidence"] = strings.Join(reasoning, "; ")
	}

	return ReasoningResult{
		Strategy:   StrategyAbductive,
		Answer:     answer,
		Confidence: confidence,
		Steps:      steps,
		Metadata:   metadata,
	}, nil
}

// generateHypotheses asks the transform synapse for candidate
// explanations, one per line.
func (r *AbductiveReasoner) generateHypotheses(ctx context.Context, session *zyn.Session, provider Provider, q Question, baseContext string) ([]string, error) {
	synapse, err := zyn.Transform(
		fmt.Sprintf("Generate %d distinct plausible explanations", hypothesisCount),
		provider,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transform synapse: %w", err)
	}

	output, err := synapse.FireWithInput(ctx, session, zyn.TransformInput{
		Text:        q.Text,
		Context:     baseContext,
		Style:       fmt.Sprintf("List exactly %d candidate explanations, one per line, no numbering or preamble. Each must be independently plausible.", hypothesisCount),
		Temperature: r.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("transform synapse execution failed: %w", err)
	}

	var hypotheses []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789. "))
		if line != "" {
			hypotheses = append(hypotheses, line)
		}
	}
	if len(hypotheses) == 0 {
		return nil, fmt.Errorf("no hypotheses produced")
	}
	return hypotheses, nil
}

// rankHypotheses orders candidates by explanatory power and returns the
// winner with the ranking confidence and reasoning.
func (r *AbductiveReasoner) rankHypotheses(ctx context.Context, session *zyn.Session, provider Provider, q Question, hypotheses []string) (string, float64, []string, error) {
	synapse, err := zyn.NewRanking("explanatory power: which hypothesis best accounts for the observations with the fewest assumptions", provider)
	if err != nil {
		return "", 0, nil, fmt.Errorf("failed to create ranking synapse: %w", err)
	}

	resp, err := synapse.FireWithInput(ctx, session, zyn.RankingInput{
		Items:       hypotheses,
		Context:     fmt.Sprintf("Question: %s", q.Text),
		Temperature: r.temperature,
	})
	if err != nil {
		return "", 0, nil, fmt.Errorf("ranking synapse execution failed: %w", err)
	}
	if len(resp.Ranked) == 0 {
		return "", 0, nil, fmt.Errorf("ranking returned no items")
	}

	return resp.Ranked[0], float64(resp.Confidence), resp.Reasoning, nil
}

// elaborate expands the winning hypothesis into the final answer.
func (r *AbductiveReasoner) elaborate(ctx context.Context, session *zyn.Session, provider Provider, q Question, hypothesis, baseContext string) (string, error) {
	synapse, err := zyn.Transform("Develop the selected explanation into a complete answer", provider)
	if err != nil {
		return "", fmt.Errorf("failed to create transform synapse: %w", err)
	}

	answer, err := synapse.FireWithInput(ctx, session, zyn.TransformInput{
		Text:        hypothesis,
		Context:     fmt.Sprintf("Question: %s\n%s", q.Text, baseContext),
		Style:       "Explain why this is the best explanation, what evidence supports it, and what would falsify it.",
		Temperature: r.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("transform synapse execution failed: %w", err)
	}
	return answer, nil
}

var _ Reasoner = (*AbductiveReasoner)(nil)
