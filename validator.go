package adaptive

import (
	"context"
	"fmt"
	"strings"

	"github.com/zoobzio/zyn"
)

// aspectQuestions phrase each aspect as a yes/no probe for the binary
// synapse.
var aspectQuestions = map[Aspect]string{
	AspectCompleteness: "Does the answer fully address every part of the question?",
	AspectRelevance:    "Is the answer directly relevant to the question asked?",
	AspectAccuracy:     "Is the answer factually accurate?",
	AspectClarity:      "Is the answer clearly written and easy to follow?",
	AspectConsistency:  "Is the answer internally consistent, free of contradictions?",
	AspectSourcing:     "Does the answer ground its claims in evidence or sources?",
	AspectReasoning:    "Is the reasoning behind the answer sound and free of logical fallacies?",
}

// SynapseValidator judges answers with one binary synapse probe per
// required aspect. Each probe yields a decision, a confidence, and
// reasoning; failed aspects contribute issues (and their reasoning
// becomes suggestions), and the overall confidence is the mean of the
// per-aspect scores.
type SynapseValidator struct {
	provider    Provider
	temperature float32
}

// NewSynapseValidator creates a validator. The provider resolves through
// the usual hierarchy when not set explicitly.
func NewSynapseValidator() *SynapseValidator {
	return &SynapseValidator{
		temperature: DefaultReasoningTemperature,
	}
}

// WithProvider sets the provider for this validator.
func (v *SynapseValidator) WithProvider(p Provider) *SynapseValidator {
	v.provider = p
	return v
}

// WithTemperature sets the probe temperature.
func (v *SynapseValidator) WithTemperature(temp float32) *SynapseValidator {
	v.temperature = temp
	return v
}

// Validate probes each required aspect and folds the responses into a
// judgment. The probes share one session so later aspects see earlier
// exchanges.
func (v *SynapseValidator) Validate(ctx context.Context, question, answer string, cfg ValidationConfig, vctx map[string]any) (Judgment, error) {
	provider, err := ResolveProvider(ctx, v.provider)
	if err != nil {
		return Judgment{}, fmt.Errorf("validate: %w", err)
	}

	session := zyn.NewSession()
	probeContext := buildProbeContext(question, answer, cfg, vctx)

	judgment := Judgment{
		Aspects:  make(map[Aspect]float64, len(cfg.RequiredAspects)),
		Metadata: map[string]string{"level": string(cfg.Level)},
	}

	var total float64
	for _, aspect := range cfg.RequiredAspects {
		q, ok := aspectQuestions[aspect]
		if !ok {
			q = fmt.Sprintf("Does the answer satisfy the %s criterion?", aspect)
		}

		synapse, err := zyn.Binary(q, provider)
		if err != nil {
			return Judgment{}, fmt.Errorf("validate: failed to create binary synapse: %w", err)
		}

		resp, err := synapse.FireWithInput(ctx, session, zyn.BinaryInput{
			Subject:     answer,
			Context:     probeContext,
			Temperature: v.temperature,
		})
		if err != nil {
			return Judgment{}, fmt.Errorf("validate: %s probe failed: %w", aspect, err)
		}

		score := float64(resp.Confidence)
		if !resp.Decision {
			score = 1.0 - score
			judgment.Issues = append(judgment.Issues, fmt.Sprintf("%s check failed", aspect))
			for _, reason := range resp.Reasoning {
				judgment.Suggestions = append(judgment.Suggestions, reason)
			}
		}
		judgment.Aspects[aspect] = score
		total += score
	}

	if n := len(cfg.RequiredAspects); n > 0 {
		judgment.Confidence = total / float64(n)
	}

	if cfg.CrossValidate {
		if err := v.crossValidate(ctx, session, provider, answer, probeContext, &judgment); err != nil {
			return Judgment{}, err
		}
	}

	return judgment, nil
}

// crossValidate runs one extra holistic probe and averages it into the
// overall confidence. A negative decision adds its reasoning as issues.
func (v *SynapseValidator) crossValidate(ctx context.Context, session *zyn.Session, provider Provider, answer, probeContext string, judgment *Judgment) error {
	synapse, err := zyn.Binary("Considering all quality criteria together, is this answer trustworthy?", provider)
	if err != nil {
		return fmt.Errorf("validate: failed to create cross-validation synapse: %w", err)
	}

	resp, err := synapse.FireWithInput(ctx, session, zyn.BinaryInput{
		Subject:     answer,
		Context:     probeContext,
		Temperature: v.temperature,
	})
	if err != nil {
		return fmt.Errorf("validate: cross-validation probe failed: %w", err)
	}

	score := float64(resp.Confidence)
	if !resp.Decision {
		score = 1.0 - score
		judgment.Issues = append(judgment.Issues, resp.Reasoning...)
	}
	judgment.Confidence = (judgment.Confidence + score) / 2
	judgment.Metadata["cross_validated"] = "true"

	return nil
}

// buildProbeContext renders the question and validation context for the
// aspect probes.
func buildProbeContext(question, answer string, cfg ValidationConfig, vctx map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question)
	if cfg.Domain != "" {
		fmt.Fprintf(&b, "Domain: %s\n", cfg.Domain)
	}
	if strategy, ok := vctx["strategy_used"].(string); ok && strategy != "" {
		fmt.Fprintf(&b, "Reasoning strategy: %s\n", strategy)
	}
	if steps, ok := vctx["reasoning_steps"].([]ReasoningStep); ok && len(steps) > 0 {
		b.WriteString("Reasoning steps:\n")
		for i, step := range steps {
			fmt.Fprintf(&b, "  %d. %s: %s\n", i+1, step.Step, step.Output)
		}
	}
	if evidence, ok := vctx["evidence"].(string); ok && evidence != "" {
		fmt.Fprintf(&b, "Evidence: %s\n", evidence)
	}
	return b.String()
}

var _ Validator = (*SynapseValidator)(nil)
