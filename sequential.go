package adaptive

import (
	"context"
	"fmt"

	"github.com/zoobzio/pipz"
	"github.com/zoobzio/zyn"
)

// seqThread carries one question through the sequential pipeline stages.
type seqThread struct {
	question    Question
	session     *zyn.Session
	provider    Provider
	temperature float32
	steps       []ReasoningStep
	answer      string
	confidence  float64
}

// Clone satisfies pipz's Cloner requirement. Stages mutate the thread in
// place; the clone shares the session by design, since a branched stage
// still belongs to the same conversation.
func (t *seqThread) Clone() *seqThread {
	clone := *t
	clone.steps = make([]ReasoningStep, len(t.steps))
	copy(clone.steps, t.steps)
	return &clone
}

// push records a completed stage.
func (t *seqThread) push(step, output string, confidence float64) {
	t.steps = append(t.steps, ReasoningStep{Step: step, Output: output, Confidence: confidence})
}

// priorContext renders earlier stage outputs as synapse context.
func (t *seqThread) priorContext() string {
	out := ""
	for _, s := range t.steps {
		out += fmt.Sprintf("%s: %s\n", s.Step, s.Output)
	}
	if rc := researchFromQuestion(t.question); rc != nil {
		out += rc.Render()
	}
	return out
}

// SequentialReasoner works a question step by step: restate, analyze,
// derive, conclude. Each stage is a pipeline processor whose output feeds
// the next stage's context, and a final binary probe scores the
// conclusion.
type SequentialReasoner struct {
	provider    Provider
	temperature float32
	pipeline    *pipz.Sequence[*seqThread]
}

// NewSequentialReasoner creates a sequential reasoner.
func NewSequentialReasoner() *SequentialReasoner {
	r := &SequentialReasoner{
		temperature: DefaultReasoningTemperature,
	}
	r.pipeline = pipz.NewSequence(pipz.NewIdentity("sequential", ""),
		pipz.Apply(pipz.NewIdentity("restate", ""), r.restate),
		pipz.Apply(pipz.NewIdentity("analyze", ""), r.analyze),
		pipz.Apply(pipz.NewIdentity("derive", ""), r.derive),
		pipz.Apply(pipz.NewIdentity("conclude", ""), r.conclude),
	)
	return r
}

// WithProvider sets the provider for this reasoner.
func (r *SequentialReasoner) WithProvider(p Provider) *SequentialReasoner {
	r.provider = p
	return r
}

// WithTemperature sets the synapse temperature.
func (r *SequentialReasoner) WithTemperature(temp float32) *SequentialReasoner {
	r.temperature = temp
	return r
}

// Strategy identifies this reasoner.
func (r *SequentialReasoner) Strategy() Strategy {
	return StrategySequential
}

// Reason runs the staged pipeline over a fresh session.
func (r *SequentialReasoner) Reason(ctx context.Context, q Question) (ReasoningResult, error) {
	provider, err := ResolveProvider(ctx, r.provider)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategySequential, Message: "provider resolution failed", Cause: err}
	}

	thread := &seqThread{
		question:    q,
		session:     zyn.NewSession(),
		provider:    provider,
		temperature: r.temperature,
	}

	thread, err = r.pipeline.Process(ctx, thread)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategySequential, Message: "pipeline failed", Cause: err}
	}

	return ReasoningResult{
		Strategy:   StrategySequential,
		Answer:     thread.answer,
		Confidence: thread.confidence,
		Steps:      thread.steps,
		Metadata:   map[string]string{"stages": fmt.Sprintf("%d", len(thread.steps))},
	}, nil
}

// transformStage runs one transform synapse over the thread.
func (r *SequentialReasoner) transformStage(ctx context.Context, t *seqThread, name, prompt, style string) (*seqThread, error) {
	synapse, err := zyn.Transform(prompt, t.provider)
	if err != nil {
		return t, fmt.Errorf("%s: failed to create transform synapse: %w", name, err)
	}

	output, err := synapse.FireWithInput(ctx, t.session, zyn.TransformInput{
		Text:        t.question.Text,
		Context:     t.priorContext(),
		Style:       style,
		Temperature: t.temperature,
	})
	if err != nil {
		return t, fmt.Errorf("%s: transform synapse execution failed: %w", name, err)
	}

	t.push(name, output, 0)
	return t, nil
}

func (r *SequentialReasoner) restate(ctx context.Context, t *seqThread) (*seqThread, error) {
	return r.transformStage(ctx, t, "restate",
		"Restate the question precisely, identifying what is being asked",
		"State the core question and any implicit sub-questions. Be precise.")
}

func (r *SequentialReasoner) analyze(ctx context.Context, t *seqThread) (*seqThread, error) {
	return r.transformStage(ctx, t, "analyze",
		"Identify the facts, definitions, and relationships relevant to answering",
		"List the knowns, the unknowns, and how they relate. Note any research findings that bear on the question.")
}

func (r *SequentialReasoner) derive(ctx context.Context, t *seqThread) (*seqThread, error) {
	return r.transformStage(ctx, t, "derive",
		"Work through the reasoning step by step toward an answer",
		"Build on the analysis one inference at a time. Show the chain, not just the destination.")
}

// conclude produces the final answer and scores it with a binary probe.
func (r *SequentialReasoner) conclude(ctx context.Context, t *seqThread) (*seqThread, error) {
	t, err := r.transformStage(ctx, t, "conclude",
		"State the final answer succinctly",
		"Give the direct answer first, then one or two sentences of justification.")
	if err != nil {
		return t, err
	}
	t.answer = t.steps[len(t.steps)-1].Output

	probe, err := zyn.Binary("Does this conclusion follow from the reasoning steps?", t.provider)
	if err != nil {
		return t, fmt.Errorf("conclude: failed to create binary synapse: %w", err)
	}
	resp, err := probe.FireWithInput(ctx, t.session, zyn.BinaryInput{
		Subject:     t.answer,
		Context:     t.priorContext(),
		Temperature: t.temperature,
	})
	if err != nil {
		return t, fmt.Errorf("conclude: binary synapse execution failed: %w", err)
	}

	t.confidence = float64(resp.Confidence)
	if !resp.Decision {
		t.confidence = 1.0 - t.confidence
	}
	t.steps[len(t.steps)-1].Confidence = t.confidence
	return t, nil
}

var _ Reasoner = (*SequentialReasoner)(nil)
