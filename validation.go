package adaptive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
)

// ValidationLevel controls how demanding validation is.
type ValidationLevel string

// Validation levels, least to most demanding.
const (
	LevelBasic    ValidationLevel = "basic"
	LevelStandard ValidationLevel = "standard"
	LevelStrict   ValidationLevel = "strict"
	LevelExpert   ValidationLevel = "expert"
)

// ParseValidationLevel converts a string to a ValidationLevel.
func ParseValidationLevel(s string) (ValidationLevel, error) {
	level := ValidationLevel(strings.ToLower(s))
	switch level {
	case LevelBasic, LevelStandard, LevelStrict, LevelExpert:
		return level, nil
	}
	return "", fmt.Errorf("unknown validation level: %q", s)
}

// minConfidenceFor returns the per-level default acceptance threshold.
func minConfidenceFor(level ValidationLevel) float64 {
	switch level {
	case LevelStandard:
		return 0.7
	case LevelStrict:
		return 0.8
	case LevelExpert:
		return 0.9
	default:
		return 0.6
	}
}

// Aspect is a named quality dimension scored independently by the
// validator.
type Aspect string

// The validation aspects.
const (
	AspectCompleteness Aspect = "completeness"
	AspectRelevance    Aspect = "relevance"
	AspectAccuracy     Aspect = "accuracy"
	AspectClarity      Aspect = "clarity"
	AspectConsistency  Aspect = "consistency"
	AspectSourcing     Aspect = "sourcing"
	AspectReasoning    Aspect = "reasoning"
)

// ValidationConfig tells the validator what to demand of an answer. Built
// fresh per attempt from question and context; immutable afterward.
type ValidationConfig struct {
	Level           ValidationLevel
	RequiredAspects []Aspect
	MinConfidence   float64
	CrossValidate   bool
	Domain          string
}

// Question structure thresholds for deriving a validation level.
const (
	strictWordThreshold   = 20
	standardWordThreshold = 10
)

// BuildValidationConfig derives a validation configuration from the
// question and its context. The level comes from a context override when
// present, else from question length and punctuation. Completeness and
// relevance are always required; STANDARD and above add accuracy, clarity,
// consistency; STRICT and above add sourcing and reasoning quality.
func BuildValidationConfig(q Question) ValidationConfig {
	level := LevelBasic
	if override, ok := q.ContextString(ContextValidationLevel); ok {
		if parsed, err := ParseValidationLevel(override); err == nil {
			level = parsed
		}
	} else {
		words := q.WordCount()
		switch {
		case words > strictWordThreshold || strings.Contains(q.Text, ","):
			level = LevelStrict
		case words > standardWordThreshold:
			level = LevelStandard
		}
	}

	aspects := []Aspect{AspectCompleteness, AspectRelevance}
	if level != LevelBasic {
		aspects = append(aspects, AspectAccuracy, AspectClarity, AspectConsistency)
	}
	if level == LevelStrict || level == LevelExpert {
		aspects = append(aspects, AspectSourcing, AspectReasoning)
	}

	minConfidence := minConfidenceFor(level)
	if override, ok := q.ContextFloat(ContextMinConfidence); ok {
		minConfidence = override
	}

	domain, _ := q.ContextString(ContextDomain)

	return ValidationConfig{
		Level:           level,
		RequiredAspects: aspects,
		MinConfidence:   minConfidence,
		CrossValidate:   level == LevelStrict || level == LevelExpert,
		Domain:          domain,
	}
}

// Judgment is the validator's raw output.
type Judgment struct {
	Confidence  float64
	Aspects     map[Aspect]float64
	Issues      []string
	Suggestions []string
	Metadata    map[string]string
}

// Validator judges an answer's quality against a validation config. A
// failed invocation returns a non-nil error (typically *ValidationError);
// a low score is feedback, not an error.
type Validator interface {
	Validate(ctx context.Context, question, answer string, cfg ValidationConfig, vctx map[string]any) (Judgment, error)
}

// ValidationFeedback is the revision decision derived deterministically
// from a Judgment and the active config.
type ValidationFeedback struct {
	Confidence       float64            `json:"confidence"`
	Issues           []string           `json:"issues,omitempty"`
	Suggestions      []string           `json:"suggestions,omitempty"`
	AspectScores     map[Aspect]float64 `json:"aspect_scores,omitempty"`
	RequiresRevision bool               `json:"requires_revision"`
}

// Gate invokes the validator with an enhanced context and translates its
// judgment into a revision decision.
type Gate struct {
	validator Validator
}

// NewGate wraps a validator.
func NewGate(v Validator) *Gate {
	return &Gate{validator: v}
}

// Check validates the aggregated result. The enhanced context carries the
// selected strategy, its steps, any evidence, and the question's own
// context. RequiresRevision is set iff the validator's confidence falls
// below the config's minimum.
func (g *Gate) Check(ctx context.Context, q Question, result ReasoningResult, cfg ValidationConfig) (ValidationFeedback, error) {
	enhanced := map[string]any{
		"strategy_used":   string(result.Strategy),
		"reasoning_steps": result.Steps,
	}
	if evidence, ok := result.Metadata["evidence"]; ok {
		enhanced["evidence"] = evidence
	}
	for k, v := range q.Context() {
		enhanced[k] = v
	}

	start := time.Now()
	judgment, err := g.validator.Validate(ctx, q.Text, result.Answer, cfg, enhanced)
	if err != nil {
		return ValidationFeedback{}, &ValidationError{Message: "validator invocation failed", Cause: err}
	}

	feedback := ValidationFeedback{
		Confidence:       judgment.Confidence,
		Issues:           judgment.Issues,
		Suggestions:      judgment.Suggestions,
		AspectScores:     judgment.Aspects,
		RequiresRevision: judgment.Confidence < cfg.MinConfidence,
	}

	capitan.Emit(ctx, ValidationCompleted,
		FieldTraceID.Field(traceFromContext(ctx)),
		FieldLevel.Field(string(cfg.Level)),
		FieldConfidence.Field(float32(feedback.Confidence)),
		FieldIssueCount.Field(len(feedback.Issues)),
		FieldSuggestionCount.Field(len(feedback.Suggestions)),
		FieldDuration.Field(time.Since(start)),
	)

	return feedback, nil
}
