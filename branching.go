package adaptive

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/zoobzio/zyn"
)

// branchPath is one exploration angle for the branching reasoner. Weight
// biases winner selection toward the more reliable angles.
type branchPath struct {
	name   string
	prompt string
	style  string
	weight float64
}

// Exploration paths, most to least reliable.
var branchPaths = []branchPath{
	{
		name:   "factual",
		prompt: "Answer from established facts and definitions",
		style:  "Ground every claim in known facts. Flag anything uncertain.",
		weight: 1.0,
	},
	{
		name:   "analytical",
		prompt: "Answer by decomposing the question and reasoning through its parts",
		style:  "Break the question into components, resolve each, then synthesize.",
		weight: 0.8,
	},
	{
		name:   "comparative",
		prompt: "Answer by comparing the alternatives the question implies",
		style:  "Identify the candidate answers or interpretations and weigh them against each other.",
		weight: 0.6,
	},
}

// pathOutcome is one path's result with its weighted score.
type pathOutcome struct {
	path       branchPath
	answer     string
	confidence float64
	steps      []ReasoningStep
	err        error
}

// BranchingReasoner explores several angles concurrently and keeps the
// path whose weighted confidence is highest. Paths fail independently; as
// long as one succeeds an answer comes back.
type BranchingReasoner struct {
	provider    Provider
	temperature float32
}

// NewBranchingReasoner creates a branching reasoner.
func NewBranchingReasoner() *BranchingReasoner {
	return &BranchingReasoner{
		temperature: DefaultReasoningTemperature,
	}
}

// WithProvider sets the provider for this reasoner.
func (r *BranchingReasoner) WithProvider(p Provider) *BranchingReasoner {
	r.provider = p
	return r
}

// WithTemperature sets the synapse temperature.
func (r *BranchingReasoner) WithTemperature(temp float32) *BranchingReasoner {
	r.temperature = temp
	return r
}

// Strategy identifies this reasoner.
func (r *BranchingReasoner) Strategy() Strategy {
	return StrategyBranching
}

// Reason fans out over the paths, each on its own session, and selects
// the winner by confidence times path weight.
func (r *BranchingReasoner) Reason(ctx context.Context, q Question) (ReasoningResult, error) {
	provider, err := ResolveProvider(ctx, r.provider)
	if err != nil {
		return ReasoningResult{}, &ReasoningError{Strategy: StrategyBranching, Message: "provider resolution failed", Cause: err}
	}

	outcomes := make([]pathOutcome, len(branchPaths))
	var wg sync.WaitGroup
	for i, path := range branchPaths {
		wg.Add(1)
		go func(i int, path branchPath) {
			defer wg.Done()
			outcomes[i] = r.explorePath(ctx, provider, path, q)
		}(i, path)
	}
	wg.Wait()

	var winner *pathOutcome
	var winnerScore float64
	var successful []string
	for i := range outcomes {
		o := &outcomes[i]
		if o.err != nil {
			continue
		}
		successful = append(successful, o.path.name)
		if score := o.confidence * o.path.weight; winner == nil || score > winnerScore {
			winner = o
			winnerScore = score
		}
	}

	if winner == nil {
		return ReasoningResult{}, &ReasoningError{
			Strategy: StrategyBranching,
			Message:  "all exploration paths failed",
			Cause:    outcomes[0].err,
			Context:  map[string]string{"paths": fmt.Sprintf("%d", len(branchPaths))},
		}
	}

	return ReasoningResult{
		Strategy:   StrategyBranching,
		Answer:     winner.answer,
		Confidence: winner.confidence,
		Steps:      winner.steps,
		Metadata: map[string]string{
			"selected_path":    winner.path.name,
			"attempted_paths":  fmt.Sprintf("%d", len(branchPaths)),
			"successful_paths": strings.Join(successful, ","),
		},
	}, nil
}

// explorePath runs one angle: a transform for the answer, a binary probe
// for its confidence.
func (r *BranchingReasoner) explorePath(ctx context.Context, provider Provider, path branchPath, q Question) pathOutcome {
	outcome := pathOutcome{path: path}
	session := zyn.NewSession()

	synapse, err := zyn.Transform(path.prompt, provider)
	if err != nil {
		outcome.err = fmt.Errorf("%s: failed to create transform synapse: %w", path.name, err)
		return outcome
	}

	pathContext := ""
	if rc := researchFromQuestion(q); rc != nil {
		pathContext = rc.Render()
	}

	answer, err := synapse.FireWithInput(ctx, session, zyn.TransformInput{
		Text:        q.Text,
		Context:     pathContext,
		Style:       path.style,
		Temperature: r.temperature,
	})
	if err != nil {
		outcome.err = fmt.Errorf("%s: transform synapse execution failed: %w", path.name, err)
		return outcome
	}

	probe, err := zyn.Binary("Is this a well-supported answer to the question?", provider)
	if err != nil {
		outcome.err = fmt.Errorf("%s: failed to create binary synapse: %w", path.name, err)
		return outcome
	}
	resp, err := probe.FireWithInput(ctx, session, zyn.BinaryInput{
		Subject:     answer,
		Context:     fmt.Sprintf("Question: %s\nApproach: %s", q.Text, path.prompt),
		Temperature: r.temperature,
	})
	if err != nil {
		outcome.err = fmt.Errorf("%s: binary synapse execution failed: %w", path.name, err)
		return outcome
	}

	confidence := float64(resp.Confidence)
	if !resp.Decision {
		confidence = 1.0 - confidence
	}

	outcome.answer = answer
	outcome.confidence = confidence
	outcome.steps = []ReasoningStep{
		{Step: path.name, Output: answer, Confidence: confidence},
	}
	return outcome
}

var _ Reasoner = (*BranchingReasoner)(nil)
