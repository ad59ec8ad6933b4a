package adaptive

import "github.com/zoobzio/capitan"

// Signal definitions for orchestration events.
// Signals follow the pattern: adaptive.<entity>.<event>.
var (
	// Question lifecycle signals.
	QuestionReceived = capitan.NewSignal(
		"adaptive.question.received",
		"New question accepted for processing with trace ID",
	)
	QuestionAnswered = capitan.NewSignal(
		"adaptive.question.answered",
		"Question completed with an accepted answer",
	)

	// Attempt loop signals.
	AttemptStarted = capitan.NewSignal(
		"adaptive.attempt.started",
		"Selection-dispatch-validate cycle began",
	)
	RevisionTriggered = capitan.NewSignal(
		"adaptive.attempt.revised",
		"Validation rejected the answer and a new strategy was picked",
	)
	RetriesExhausted = capitan.NewSignal(
		"adaptive.attempt.exhausted",
		"Attempt budget spent without an accepted answer",
	)

	// Dispatch signals.
	BranchStarted = capitan.NewSignal(
		"adaptive.branch.started",
		"Per-strategy reasoner invocation began",
	)
	BranchCompleted = capitan.NewSignal(
		"adaptive.branch.completed",
		"Per-strategy reasoner invocation finished",
	)
	BranchFailed = capitan.NewSignal(
		"adaptive.branch.failed",
		"Reasoner failed; converted to zero-confidence placeholder",
	)

	// Aggregation and validation signals.
	ResultsAggregated = capitan.NewSignal(
		"adaptive.results.aggregated",
		"Dispatcher outcomes filtered and merged into one answer",
	)
	ValidationCompleted = capitan.NewSignal(
		"adaptive.validation.completed",
		"Validator judged the aggregated answer",
	)

	// Tracker signals.
	TrackerUpdated = capitan.NewSignal(
		"adaptive.tracker.updated",
		"Per-strategy performance record advanced",
	)

	// Research signals.
	ResearchCompleted = capitan.NewSignal(
		"adaptive.research.completed",
		"Research lookup finished before dispatch",
	)

	// History signals.
	HistoryWriteFailed = capitan.NewSignal(
		"adaptive.history.write_failed",
		"Attempt record could not be persisted; processing continued",
	)
)

// Field keys for orchestration event data.
var (
	// Question metadata.
	FieldTraceID  = capitan.NewStringKey("trace_id")
	FieldQuestion = capitan.NewStringKey("question")

	// Attempt metadata.
	FieldAttempt    = capitan.NewIntKey("attempt")
	FieldStrategy   = capitan.NewStringKey("strategy")
	FieldStrategies = capitan.NewStringKey("strategies")

	// Scores.
	FieldConfidence = capitan.NewFloat32Key("confidence")
	FieldLevel      = capitan.NewStringKey("validation_level")

	// Counts.
	FieldBranchCount     = capitan.NewIntKey("branch_count")
	FieldSurvivorCount   = capitan.NewIntKey("survivor_count")
	FieldIssueCount      = capitan.NewIntKey("issue_count")
	FieldSuggestionCount = capitan.NewIntKey("suggestion_count")
	FieldFindingCount    = capitan.NewIntKey("finding_count")
	FieldAnswerSize      = capitan.NewIntKey("answer_size")

	// Timing.
	FieldDuration = capitan.NewDurationKey("duration")

	// Error information.
	FieldError = capitan.NewErrorKey("error")
)
