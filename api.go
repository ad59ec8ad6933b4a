// Package adaptive routes a natural-language question through one or more
// interchangeable reasoning strategies, combines their outputs, and revises
// the choice of strategy based on validation feedback until an acceptable
// answer is produced or the attempt budget is exhausted.
//
// # Core Types
//
// The package is built around a small set of concepts:
//
//   - [Question] - Immutable question text plus an optional context map
//   - [Strategy] - A named reasoning approach (closed enumeration)
//   - [Reasoner] - A worker producing an answer and confidence for a question
//   - [Validator] - A worker judging an answer against configured aspects
//   - [Orchestrator] - The engine tying selection, dispatch, aggregation,
//     validation, and revision together
//
// # Processing
//
// Construct an orchestrator with a set of reasoners and a validator, then
// call Process:
//
//	orc := adaptive.New(adaptive.DefaultReasoners(), validator)
//	result, err := orc.Process(ctx, "Why does ice float on water?", nil)
//
// The first attempt fans out to every strategy the selector matches and
// merges the surviving results. If validation rejects the merged answer,
// subsequent attempts pick a single replacement strategy driven by the
// validator's issues, suggestions, and aspect scores, bounded by
// [Config.MaxAttempts]. Per-strategy performance accumulates in a
// [PerformanceTracker] and biases future selections.
//
// # Bundled Reasoners
//
// One Reasoner implementation ships per strategy:
//
//   - [SequentialReasoner] - staged restate, analyze, derive, conclude
//   - [BranchingReasoner] - weighted parallel sub-paths, winner-take-all
//   - [AbductiveReasoner] - hypothesis generation and best-explanation pick
//   - [LateralReasoner] - creative reframing at higher temperature
//   - [LogicalReasoner] - formalization plus a validity probe
//
// All are LLM-backed through zyn synapses and resolve their provider via
// the hierarchy in [ResolveProvider]. Any implementation of [Reasoner] can
// replace them.
//
// # Persistence
//
// The [History] interface records attempts and performance snapshots;
// [SoyHistory] implements it with soy on PostgreSQL. The orchestrator
// operates fully without one.
//
// # Observability
//
// The package emits capitan signals throughout execution. See signals.go
// for the catalog, including QuestionReceived, AttemptStarted,
// BranchCompleted, ValidationCompleted, RevisionTriggered, and
// RetriesExhausted.
package adaptive
