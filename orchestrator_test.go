package adaptive

import (
	"context"
	"errors"
	"testing"
)

func acceptingValidator(confidence float64) *stubValidator {
	return &stubValidator{judgments: []Judgment{{Confidence: confidence}}}
}

func TestProcessEmptyQuestion(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "a", conf: 0.9}
	orch := New([]Reasoner{seq}, acceptingValidator(0.9))

	_, err := orch.Process(context.Background(), "   ", nil)
	if !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}

	if seq.calls != 0 {
		t.Error("blank input reached a reasoner")
	}
	for tag, rec := range orch.Tracker().Snapshot() {
		if rec.TotalCount != 0 {
			t.Errorf("blank input mutated tracker for %s", tag)
		}
	}
}

func TestProcessAcceptsFirstAttempt(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "four", conf: 0.9}
	orch := New([]Reasoner{seq}, acceptingValidator(0.85))

	result, err := orch.Process(context.Background(), "What is two plus two", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Answer != "four" {
		t.Errorf("answer = %q", result.Answer)
	}
	if result.Confidence != 0.85 {
		t.Errorf("confidence = %f, expected validator's 0.85", result.Confidence)
	}
	if result.Metadata["attempts"] != "1" {
		t.Errorf("attempts = %q", result.Metadata["attempts"])
	}
	if result.Metadata["validation_level"] != "basic" {
		t.Errorf("validation_level = %q", result.Metadata["validation_level"])
	}

	rec := result.Performance[StrategySequential]
	if rec.TotalCount != 1 || rec.SuccessCount != 1 {
		t.Errorf("tracker record: %+v", rec)
	}
}

func TestProcessRevisesOnLogicalFallacy(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "flawed", conf: 0.8}
	logical := &stubReasoner{tag: StrategyLogical, answer: "sound", conf: 0.9}
	validator := &stubValidator{judgments: []Judgment{
		{Confidence: 0.4, Issues: []string{"logical fallacy detected in the argument"}},
		{Confidence: 0.9},
	}}

	orch := New([]Reasoner{seq, logical}, validator)
	result, err := orch.Process(context.Background(), "What is two plus two", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if logical.calls != 1 {
		t.Errorf("logical reasoner called %d times, expected 1", logical.calls)
	}
	if result.Answer != "sound" {
		t.Errorf("answer = %q, expected revised attempt's answer", result.Answer)
	}
	if result.Metadata["attempts"] != "2" {
		t.Errorf("attempts = %q", result.Metadata["attempts"])
	}

	// Both attempts fed the tracker.
	if rec := result.Performance[StrategySequential]; rec.TotalCount != 1 {
		t.Errorf("sequential record: %+v", rec)
	}
	if rec := result.Performance[StrategyLogical]; rec.TotalCount != 1 || rec.SuccessCount != 1 {
		t.Errorf("logical record: %+v", rec)
	}
}

func TestProcessExhaustsAttempts(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "weak", conf: 0.8}
	orch := New([]Reasoner{seq}, acceptingValidator(0.1))

	_, err := orch.Process(context.Background(), "What is two plus two", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T", err)
	}
	if exhausted.Attempts != DefaultMaxAttempts {
		t.Errorf("attempts = %d, expected %d", exhausted.Attempts, DefaultMaxAttempts)
	}
	if len(exhausted.Strategies) != DefaultMaxAttempts {
		t.Errorf("strategies tried = %v", exhausted.Strategies)
	}
	if exhausted.LastConfidence != 0.1 {
		t.Errorf("last confidence = %f", exhausted.LastConfidence)
	}
}

func TestProcessRespectsMaxAttempts(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "weak", conf: 0.8}
	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	orch := New([]Reasoner{seq}, acceptingValidator(0.1), WithConfig(cfg))

	_, err := orch.Process(context.Background(), "What is two plus two", nil)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 1 {
		t.Errorf("attempts = %d, expected 1", exhausted.Attempts)
	}
}

func TestProcessValidatorErrorAborts(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "a", conf: 0.9}
	validator := &stubValidator{err: errors.New("synapse down")}
	orch := New([]Reasoner{seq}, validator)

	_, err := orch.Process(context.Background(), "What is two plus two", nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestProcessFanOutDispatchesAllSelected(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "s", conf: 0.8}
	logical := &stubReasoner{tag: StrategyLogical, answer: "l", conf: 0.8}
	abductive := &stubReasoner{tag: StrategyAbductive, answer: "a", conf: 0.8}
	orch := New([]Reasoner{seq, logical, abductive}, acceptingValidator(0.9))

	// Conditional plus causal keywords select logical and abductive.
	_, err := orch.Process(context.Background(), "If it rains, explain why", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if logical.calls != 1 || abductive.calls != 1 {
		t.Errorf("fan-out missed a branch: logical=%d abductive=%d", logical.calls, abductive.calls)
	}
	if seq.calls != 0 {
		t.Errorf("sequential dispatched without a matching rule: %d", seq.calls)
	}
}

func TestProcessWithoutInitialFanOut(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "s", conf: 0.8}
	logical := &stubReasoner{tag: StrategyLogical, answer: "l", conf: 0.8}
	cfg := DefaultConfig()
	cfg.InitialFanOut = false
	orch := New([]Reasoner{seq, logical}, acceptingValidator(0.9), WithConfig(cfg))

	// Single-select picks logical for the conditional; sequential is never
	// dispatched.
	_, err := orch.Process(context.Background(), "if x then y", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logical.calls != 1 || seq.calls != 0 {
		t.Errorf("adaptive pick wrong: logical=%d sequential=%d", logical.calls, seq.calls)
	}
}

func TestProcessInjectsResearch(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "a", conf: 0.9}
	researcher := NewStaticResearcher(map[string]*ResearchContext{
		"tides": {
			Query:      "tides",
			Findings:   []Finding{{Source: "noaa", Excerpt: "the moon pulls the ocean", Score: 0.9}},
			Confidence: 0.9,
		},
	})
	orch := New([]Reasoner{seq}, acceptingValidator(0.9), WithResearcher(researcher))

	if _, err := orch.Process(context.Background(), "What causes tides", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rc := researchFromQuestion(seq.lastQ)
	if rc == nil {
		t.Fatal("research context not injected")
	}
	if len(rc.Findings) != 1 || rc.Findings[0].Source != "noaa" {
		t.Errorf("unexpected research context: %+v", rc)
	}
}

func TestProcessSkipsLowConfidenceResearch(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "a", conf: 0.9}
	researcher := NewStaticResearcher(map[string]*ResearchContext{
		"plus": {Query: "plus", Confidence: 0.3},
	})
	orch := New([]Reasoner{seq}, acceptingValidator(0.9), WithResearcher(researcher))

	if _, err := orch.Process(context.Background(), "What is two plus two", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc := researchFromQuestion(seq.lastQ); rc != nil {
		t.Error("low-confidence research context was injected")
	}
}

func TestProcessRecordsHistory(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "flawed", conf: 0.8}
	logical := &stubReasoner{tag: StrategyLogical, answer: "sound", conf: 0.9}
	validator := &stubValidator{judgments: []Judgment{
		{Confidence: 0.4, Issues: []string{"logical fallacy"}},
		{Confidence: 0.9},
	}}
	history := NewMemoryHistory()
	orch := New([]Reasoner{seq, logical}, validator, WithHistory(history))

	if _, err := orch.Process(context.Background(), "What is two plus two", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history.mu.Lock()
	attempts := append([]*AttemptRecord(nil), history.attempts...)
	history.mu.Unlock()

	if len(attempts) != 2 {
		t.Fatalf("recorded %d attempts, expected 2", len(attempts))
	}
	if attempts[0].Accepted {
		t.Error("rejected attempt marked accepted")
	}
	if !attempts[1].Accepted || attempts[1].Strategy != "logical" {
		t.Errorf("accepted attempt wrong: %+v", attempts[1])
	}
	if attempts[0].TraceID == "" || attempts[0].TraceID != attempts[1].TraceID {
		t.Error("attempts do not share a trace ID")
	}

	byTrace, err := history.AttemptsByTrace(context.Background(), attempts[0].TraceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byTrace) != 2 {
		t.Errorf("AttemptsByTrace returned %d records", len(byTrace))
	}
}

func TestProcessSharedTrackerAcrossQuestions(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "a", conf: 0.9}
	tracker := NewPerformanceTracker()
	orch := New([]Reasoner{seq}, acceptingValidator(0.9), WithTracker(tracker))

	for i := 0; i < 3; i++ {
		if _, err := orch.Process(context.Background(), "What is two plus two", nil); err != nil {
			t.Fatalf("question %d: %v", i, err)
		}
	}

	if rec := tracker.Record(StrategySequential); rec.TotalCount != 3 {
		t.Errorf("shared tracker TotalCount = %d, expected 3", rec.TotalCount)
	}
}

func TestOrchestratorChain(t *testing.T) {
	seq := &stubReasoner{tag: StrategySequential, answer: "four", conf: 0.9}
	orch := New([]Reasoner{seq}, acceptingValidator(0.9))

	ex := &Exchange{Question: "What is two plus two"}
	out, err := orch.Chain().Process(context.Background(), ex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Result == nil || out.Result.Answer != "four" {
		t.Errorf("chain result: %+v", out.Result)
	}
}

func TestExchangeClone(t *testing.T) {
	ex := &Exchange{
		Question: "q",
		Context:  map[string]any{"a": 1},
		Result:   &Result{Answer: "x"},
	}
	clone := ex.Clone()
	clone.Context["b"] = 2
	clone.Result.Answer = "y"

	if _, ok := ex.Context["b"]; ok {
		t.Error("clone shares context map")
	}
	if ex.Result.Answer != "x" {
		t.Error("clone shares result")
	}
}
