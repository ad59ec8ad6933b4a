package adaptive

import (
	"context"
	"sync"
	"time"
)

// AttemptRecord is one persisted selection-dispatch-validate cycle.
type AttemptRecord struct {
	ID         string    `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	TraceID    string    `db:"trace_id" type:"text" constraints:"notnull"`
	Attempt    int       `db:"attempt" type:"int" constraints:"notnull"`
	Strategy   string    `db:"strategy" type:"text" constraints:"notnull"`
	Answer     string    `db:"answer" type:"text" constraints:"notnull"`
	Confidence float64   `db:"confidence" type:"float" constraints:"notnull"`
	Accepted   bool      `db:"accepted" type:"boolean" constraints:"notnull"`
	Created    time.Time `db:"created" type:"timestamp" constraints:"notnull"`
	Embedding  Vector    `db:"embedding" type:"vector(1536)"`
}

// PerformanceRow is the persisted form of one strategy's running record.
type PerformanceRow struct {
	Strategy      string    `db:"strategy" type:"text" constraints:"primarykey"`
	SuccessCount  int       `db:"success_count" type:"int" constraints:"notnull"`
	TotalCount    int       `db:"total_count" type:"int" constraints:"notnull"`
	AvgConfidence float64   `db:"avg_confidence" type:"float" constraints:"notnull"`
	Updated       time.Time `db:"updated" type:"timestamp" constraints:"notnull"`
}

// History persists attempts and performance records across runs. Writes
// are best effort from the orchestrator's point of view: a failure is
// reported but never blocks an answer.
type History interface {
	RecordAttempt(ctx context.Context, record *AttemptRecord) error
	AttemptsByTrace(ctx context.Context, traceID string) ([]*AttemptRecord, error)
	SavePerformance(ctx context.Context, snapshot map[Strategy]PerformanceRecord) error
	LoadPerformance(ctx context.Context) (map[Strategy]PerformanceRecord, error)
}

// MaxAttemptsPerStrategy bounds how many attempt records MemoryHistory
// retains per strategy. Oldest records are evicted first.
const MaxAttemptsPerStrategy = 100

// MemoryHistory is an in-memory History for tests and single-process
// runs.
type MemoryHistory struct {
	mu          sync.Mutex
	attempts    []*AttemptRecord
	performance map[Strategy]PerformanceRecord
}

// NewMemoryHistory creates an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		performance: make(map[Strategy]PerformanceRecord),
	}
}

// RecordAttempt stores a copy of the record, evicting the oldest record
// for the same strategy once MaxAttemptsPerStrategy is reached.
func (h *MemoryHistory) RecordAttempt(_ context.Context, record *AttemptRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0
	oldest := -1
	for i, a := range h.attempts {
		if a.Strategy == record.Strategy {
			count++
			if oldest < 0 {
				oldest = i
			}
		}
	}
	if count >= MaxAttemptsPerStrategy && oldest >= 0 {
		h.attempts = append(h.attempts[:oldest], h.attempts[oldest+1:]...)
	}

	stored := *record
	h.attempts = append(h.attempts, &stored)
	return nil
}

// AttemptsByTrace returns the attempts for a trace, in insertion order.
func (h *MemoryHistory) AttemptsByTrace(_ context.Context, traceID string) ([]*AttemptRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*AttemptRecord
	for _, a := range h.attempts {
		if a.TraceID == traceID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

// SavePerformance replaces the stored snapshot.
func (h *MemoryHistory) SavePerformance(_ context.Context, snapshot map[Strategy]PerformanceRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.performance = make(map[Strategy]PerformanceRecord, len(snapshot))
	for tag, rec := range snapshot {
		h.performance[tag] = rec
	}
	return nil
}

// LoadPerformance returns a copy of the stored snapshot.
func (h *MemoryHistory) LoadPerformance(_ context.Context) (map[Strategy]PerformanceRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[Strategy]PerformanceRecord, len(h.performance))
	for tag, rec := range h.performance {
		out[tag] = rec
	}
	return out, nil
}

var _ History = (*MemoryHistory)(nil)
