package adaptive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Result is the final outcome of processing one question.
type Result struct {
	Answer      string                         `json:"answer"`
	Confidence  float64                        `json:"confidence"`
	Steps       []ReasoningStep                `json:"reasoning_steps,omitempty"`
	Metadata    map[string]string              `json:"metadata,omitempty"`
	Validation  ValidationFeedback             `json:"validation"`
	Performance map[Strategy]PerformanceRecord `json:"performance,omitempty"`
}

// Orchestrator coordinates strategy selection, concurrent dispatch,
// aggregation, validation, and adaptive revision for questions. It is an
// explicit instance, not process-global state: construct one with New and
// inject it where needed. A single orchestrator may process concurrent
// questions; the performance tracker is the only shared mutable state and
// serializes its own updates.
type Orchestrator struct {
	selector   *Selector
	dispatcher *Dispatcher
	gate       *Gate
	tracker    *PerformanceTracker
	researcher Researcher
	history    History
	cfg        Config
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *Orchestrator) { o.cfg = cfg }
}

// WithSelector replaces the default selector.
func WithSelector(s *Selector) Option {
	return func(o *Orchestrator) { o.selector = s }
}

// WithTracker shares an existing performance tracker, e.g. one restored
// from history.
func WithTracker(t *PerformanceTracker) Option {
	return func(o *Orchestrator) { o.tracker = t }
}

// WithResearcher enables research lookups before dispatch.
func WithResearcher(r Researcher) Option {
	return func(o *Orchestrator) { o.researcher = r }
}

// WithHistory enables attempt and performance persistence.
func WithHistory(h History) Option {
	return func(o *Orchestrator) { o.history = h }
}

// New constructs an orchestrator over the given reasoners and validator.
func New(reasoners []Reasoner, validator Validator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		dispatcher: NewDispatcher(reasoners...),
		gate:       NewGate(validator),
		cfg:        DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.selector == nil {
		if len(o.cfg.FanOutRules) > 0 || len(o.cfg.AdaptiveRules) > 0 {
			s, err := NewSelector(o.cfg.FanOutRules, o.cfg.AdaptiveRules)
			if err != nil {
				panic(err)
			}
			o.selector = s
		} else {
			o.selector = DefaultSelector()
		}
	}
	if o.tracker == nil {
		o.tracker = NewPerformanceTracker()
	}
	if o.cfg.MaxAttempts < 1 {
		o.cfg.MaxAttempts = 1
	}
	return o
}

// Tracker returns the orchestrator's performance tracker.
func (o *Orchestrator) Tracker() *PerformanceTracker {
	return o.tracker
}

// traceKeyType keys the per-question trace ID in context.
type traceKeyType struct{}

var traceKey = traceKeyType{}

// withTrace stores a trace ID in the context.
func withTrace(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

// traceFromContext retrieves the trace ID, empty when absent.
func traceFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceKey).(string); ok {
		return id
	}
	return ""
}

// Process routes a question through the selection-dispatch-validate loop
// until an answer is accepted or the attempt budget is exhausted.
//
// Blank input returns ErrEmptyQuestion before any dispatch or tracker
// mutation. After Config.MaxAttempts rejected attempts the terminal
// *ExhaustedError carries the attempt count, the strategies tried, and
// the last observed confidence.
func (o *Orchestrator) Process(ctx context.Context, text string, qctx map[string]any) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyQuestion
	}

	q := NewQuestion(text, qctx)
	traceID := uuid.New().String()
	ctx = withTrace(ctx, traceID)
	start := time.Now()

	capitan.Emit(ctx, QuestionReceived,
		FieldTraceID.Field(traceID),
		FieldQuestion.Field(q.Text),
	)

	q = o.integrateResearch(ctx, q)
	cfg := BuildValidationConfig(q)

	state := &attemptState{}
	var lastFeedback ValidationFeedback

	for state.number < o.cfg.MaxAttempts {
		state.number++

		tags := o.selectAttempt(q, state)
		capitan.Emit(ctx, AttemptStarted,
			FieldTraceID.Field(traceID),
			FieldAttempt.Field(state.number),
			FieldStrategies.Field(joinTags(tags)),
			FieldLevel.Field(string(cfg.Level)),
		)

		outcomes := o.dispatcher.Dispatch(ctx, tags, q)
		aggregated := Aggregate(outcomes)
		capitan.Emit(ctx, ResultsAggregated,
			FieldTraceID.Field(traceID),
			FieldBranchCount.Field(len(outcomes)),
			FieldSurvivorCount.Field(survivorCount(outcomes)),
			FieldConfidence.Field(float32(aggregated.Confidence)),
		)

		feedback, err := o.gate.Check(ctx, q, aggregated, cfg)
		if err != nil {
			return Result{}, err
		}
		lastFeedback = feedback

		tag := attemptStrategy(aggregated, tags)
		o.tracker.Update(tag, feedback.Confidence)
		capitan.Emit(ctx, TrackerUpdated,
			FieldTraceID.Field(traceID),
			FieldStrategy.Field(string(tag)),
			FieldConfidence.Field(float32(feedback.Confidence)),
		)

		state.record(tag, aggregated, feedback)
		o.recordAttempt(ctx, traceID, state.number, tag, aggregated, feedback)

		if !feedback.RequiresRevision {
			result := o.buildResult(aggregated, feedback, cfg, state)
			capitan.Emit(ctx, QuestionAnswered,
				FieldTraceID.Field(traceID),
				FieldAttempt.Field(state.number),
				FieldStrategy.Field(string(tag)),
				FieldConfidence.Field(float32(result.Confidence)),
				FieldAnswerSize.Field(len(result.Answer)),
				FieldDuration.Field(time.Since(start)),
			)
			return result, nil
		}

		if state.number >= o.cfg.MaxAttempts {
			break
		}

		state.current = NextStrategy(feedback, o.tracker.Snapshot())
		capitan.Emit(ctx, RevisionTriggered,
			FieldTraceID.Field(traceID),
			FieldAttempt.Field(state.number),
			FieldStrategy.Field(string(state.current)),
			FieldConfidence.Field(float32(feedback.Confidence)),
			FieldIssueCount.Field(len(feedback.Issues)),
		)
	}

	exhausted := &ExhaustedError{
		Attempts:       state.number,
		Strategies:     state.tried(),
		LastConfidence: lastFeedback.Confidence,
	}
	capitan.Error(ctx, RetriesExhausted,
		FieldTraceID.Field(traceID),
		FieldAttempt.Field(state.number),
		FieldConfidence.Field(float32(lastFeedback.Confidence)),
		FieldError.Field(exhausted),
	)
	return Result{}, exhausted
}

// selectAttempt chooses the strategies for one attempt: the multi-select
// fan-out on the first round (when enabled), a single adaptive pick
// afterward. The two selection modes compose as sequential phases.
func (o *Orchestrator) selectAttempt(q Question, state *attemptState) []Strategy {
	if state.number == 1 {
		if o.cfg.InitialFanOut {
			return o.selector.Select(q)
		}
		state.current = o.selector.SelectOne(q, o.tracker)
	}
	return []Strategy{state.current}
}

// integrateResearch consults the researcher and injects its context into
// the question when confident enough. Failures degrade to no context.
func (o *Orchestrator) integrateResearch(ctx context.Context, q Question) Question {
	if o.researcher == nil {
		return q
	}

	rc, err := o.researcher.Research(ctx, q.Text)
	if err != nil {
		capitan.Error(ctx, ResearchCompleted,
			FieldTraceID.Field(traceFromContext(ctx)),
			FieldError.Field(err),
		)
		return q
	}

	capitan.Emit(ctx, ResearchCompleted,
		FieldTraceID.Field(traceFromContext(ctx)),
		FieldFindingCount.Field(len(rc.Findings)),
		FieldConfidence.Field(float32(rc.Confidence)),
	)

	if rc.Confidence <= ResearchFloor {
		return q
	}
	return q.WithContextValue(ContextResearch, rc)
}

// recordAttempt persists one attempt when history is configured. Write
// failures are reported and swallowed; persistence never blocks an
// answer.
func (o *Orchestrator) recordAttempt(ctx context.Context, traceID string, attempt int, tag Strategy, result ReasoningResult, feedback ValidationFeedback) {
	if o.history == nil {
		return
	}

	record := AttemptRecord{
		TraceID:    traceID,
		Attempt:    attempt,
		Strategy:   string(tag),
		Answer:     result.Answer,
		Confidence: feedback.Confidence,
		Accepted:   !feedback.RequiresRevision,
		Created:    time.Now(),
	}
	if err := o.history.RecordAttempt(ctx, &record); err != nil {
		capitan.Error(ctx, HistoryWriteFailed,
			FieldTraceID.Field(traceID),
			FieldError.Field(err),
		)
	}
}

// buildResult assembles the accepted answer with validation metadata and
// the running performance snapshot.
func (o *Orchestrator) buildResult(aggregated ReasoningResult, feedback ValidationFeedback, cfg ValidationConfig, state *attemptState) Result {
	metadata := make(map[string]string, len(aggregated.Metadata)+2)
	for k, v := range aggregated.Metadata {
		metadata[k] = v
	}
	metadata["validation_level"] = string(cfg.Level)
	metadata["attempts"] = fmt.Sprintf("%d", state.number)

	return Result{
		Answer:      aggregated.Answer,
		Confidence:  feedback.Confidence,
		Steps:       aggregated.Steps,
		Metadata:    metadata,
		Validation:  feedback,
		Performance: o.tracker.Snapshot(),
	}
}

// Chain exposes the orchestrator as a pipz processor over Exchange, so a
// question can ride inside a larger pipeline.
func (o *Orchestrator) Chain() pipz.Processor[*Exchange] {
	return pipz.Apply(pipz.NewIdentity("adaptive-process", ""), func(ctx context.Context, ex *Exchange) (*Exchange, error) {
		result, err := o.Process(ctx, ex.Question, ex.Context)
		if err != nil {
			return ex, err
		}
		ex.Result = &result
		return ex, nil
	})
}

// Exchange is the pipeline payload for Chain.
type Exchange struct {
	Question string
	Context  map[string]any
	Result   *Result
}

// Clone satisfies pipz's Cloner requirement for parallel connectors.
func (e *Exchange) Clone() *Exchange {
	clone := &Exchange{Question: e.Question}
	if e.Context != nil {
		clone.Context = make(map[string]any, len(e.Context))
		for k, v := range e.Context {
			clone.Context[k] = v
		}
	}
	if e.Result != nil {
		r := *e.Result
		clone.Result = &r
	}
	return clone
}

// survivorCount counts outcomes above the confidence floor.
func survivorCount(results []ReasoningResult) int {
	n := 0
	for _, r := range results {
		if r.Confidence >= ConfidenceFloor {
			n++
		}
	}
	return n
}

// joinTags renders strategies for signal fields.
func joinTags(tags []Strategy) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
