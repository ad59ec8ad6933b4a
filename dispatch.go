package adaptive

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
)

// Dispatcher runs the reasoners for a set of strategy tags concurrently.
// A failed invocation becomes a synthetic zero-confidence result carrying
// the error in its metadata; it never aborts sibling invocations or the
// overall call. The dispatcher does not filter or rank.
type Dispatcher struct {
	reasoners map[Strategy]Reasoner
}

// NewDispatcher builds a dispatcher over the given reasoners, keyed by
// their strategy tags. A later reasoner with the same tag replaces an
// earlier one.
func NewDispatcher(reasoners ...Reasoner) *Dispatcher {
	d := &Dispatcher{reasoners: make(map[Strategy]Reasoner, len(reasoners))}
	for _, r := range reasoners {
		d.reasoners[r.Strategy()] = r
	}
	return d
}

// Reasoner returns the registered reasoner for a tag.
func (d *Dispatcher) Reasoner(tag Strategy) (Reasoner, bool) {
	r, ok := d.reasoners[tag]
	return r, ok
}

// Strategies returns the tags with a registered reasoner, in canonical
// order.
func (d *Dispatcher) Strategies() []Strategy {
	var tags []Strategy
	for _, tag := range Strategies() {
		if _, ok := d.reasoners[tag]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// branchOutcome carries one per-strategy result back from the fan-out,
// keyed by its position in the selection order.
type branchOutcome struct {
	index  int
	result ReasoningResult
}

// Dispatch invokes the reasoner for every tag concurrently and blocks
// until all complete. The returned slice preserves the selection order of
// tags regardless of completion order; aggregation depends only on that
// order. Tags without a registered reasoner yield a synthetic failure
// result like any other error.
func (d *Dispatcher) Dispatch(ctx context.Context, tags []Strategy, q Question) []ReasoningResult {
	traceID := traceFromContext(ctx)

	outcomes := make(chan branchOutcome, len(tags))
	var wg sync.WaitGroup
	wg.Add(len(tags))

	for i, tag := range tags {
		go func(i int, tag Strategy) {
			defer wg.Done()

			capitan.Emit(ctx, BranchStarted,
				FieldTraceID.Field(traceID),
				FieldStrategy.Field(string(tag)),
			)
			start := time.Now()

			outcomes <- branchOutcome{index: i, result: d.runBranch(ctx, tag, q, traceID, start)}
		}(i, tag)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	results := make([]ReasoningResult, len(tags))
	for out := range outcomes {
		results[out.index] = out.result
	}
	return results
}

// runBranch executes one reasoner, recovering failure into a placeholder
// result so siblings are unaffected.
func (d *Dispatcher) runBranch(ctx context.Context, tag Strategy, q Question, traceID string, start time.Time) ReasoningResult {
	reasoner, ok := d.reasoners[tag]
	if !ok {
		err := &ReasoningError{Strategy: tag, Message: "no reasoner registered"}
		capitan.Error(ctx, BranchFailed,
			FieldTraceID.Field(traceID),
			FieldStrategy.Field(string(tag)),
			FieldError.Field(err),
		)
		return placeholderResult(tag, err)
	}

	result, err := reasoner.Reason(ctx, q)
	if err != nil {
		capitan.Error(ctx, BranchFailed,
			FieldTraceID.Field(traceID),
			FieldStrategy.Field(string(tag)),
			FieldDuration.Field(time.Since(start)),
			FieldError.Field(err),
		)
		return placeholderResult(tag, err)
	}

	result.Strategy = tag
	capitan.Emit(ctx, BranchCompleted,
		FieldTraceID.Field(traceID),
		FieldStrategy.Field(string(tag)),
		FieldConfidence.Field(float32(result.Confidence)),
		FieldDuration.Field(time.Since(start)),
	)
	return result
}

// placeholderResult is the zero-confidence stand-in for a failed branch.
func placeholderResult(tag Strategy, err error) ReasoningResult {
	return ReasoningResult{
		Strategy:   tag,
		Answer:     "",
		Confidence: 0.0,
		Steps:      []ReasoningStep{},
		Metadata:   map[string]string{"error": err.Error()},
	}
}
