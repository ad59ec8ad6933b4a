package adaptive

import "sync"

// PerformanceRecord tracks how a strategy has fared across attempts.
// AvgConfidence is always the exact arithmetic mean of every confidence
// observed for the tag to date.
type PerformanceRecord struct {
	SuccessCount  int     `json:"success_count"`
	TotalCount    int     `json:"total_count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// PerformanceTracker maintains per-strategy performance records. It is the
// only state shared across questions processed by one orchestrator; Update
// serializes read-modify-write under a mutex so concurrent questions can
// safely share a tracker.
type PerformanceTracker struct {
	mu      sync.Mutex
	records map[Strategy]PerformanceRecord
}

// NewPerformanceTracker returns a tracker with a zero record for every
// strategy tag.
func NewPerformanceTracker() *PerformanceTracker {
	t := &PerformanceTracker{records: make(map[Strategy]PerformanceRecord, len(Strategies()))}
	for _, tag := range Strategies() {
		t.records[tag] = PerformanceRecord{}
	}
	return t
}

// Update records one observed confidence for the tag. Success is counted
// at confidence >= SuccessThreshold; the running mean uses
// avg' = (avg*(n-1) + confidence) / n with n the post-increment total.
// Called once per attempt, after validation, regardless of outcome.
func (t *PerformanceTracker) Update(tag Strategy, confidence float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.records[tag]
	rec.TotalCount++
	if confidence >= SuccessThreshold {
		rec.SuccessCount++
	}
	n := float64(rec.TotalCount)
	rec.AvgConfidence = (rec.AvgConfidence*(n-1) + confidence) / n
	t.records[tag] = rec
}

// Record returns the current record for one tag.
func (t *PerformanceTracker) Record(tag Strategy) PerformanceRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.records[tag]
}

// Snapshot returns a copy of all records.
func (t *PerformanceTracker) Snapshot() map[Strategy]PerformanceRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[Strategy]PerformanceRecord, len(t.records))
	for tag, rec := range t.records {
		out[tag] = rec
	}
	return out
}

// Best returns the tag with the highest average confidence. Ties break by
// canonical strategy order, keeping the result deterministic.
func (t *PerformanceTracker) Best() Strategy {
	return bestStrategy(t.Snapshot())
}

// Reset clears the given tags, or every record when none are given.
// Exposed for test isolation; not used in normal operation.
func (t *PerformanceTracker) Reset(tags ...Strategy) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(tags) == 0 {
		tags = Strategies()
	}
	for _, tag := range tags {
		t.records[tag] = PerformanceRecord{}
	}
}

// Restore overwrites records from a snapshot, e.g. one loaded from
// History. Unknown tags are ignored.
func (t *PerformanceTracker) Restore(snapshot map[Strategy]PerformanceRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for tag, rec := range snapshot {
		if tag.Valid() {
			t.records[tag] = rec
		}
	}
}

// bestStrategy picks the highest average confidence from a snapshot,
// breaking ties by canonical order.
func bestStrategy(snapshot map[Strategy]PerformanceRecord) Strategy {
	best := StrategySequential
	bestAvg := -1.0
	for _, tag := range Strategies() {
		if rec, ok := snapshot[tag]; ok && rec.AvgConfidence > bestAvg {
			best = tag
			bestAvg = rec.AvgConfidence
		}
	}
	return best
}
