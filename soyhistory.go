package adaptive

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zoobzio/astql/postgres"
	"github.com/zoobzio/soy"
)

// SoyHistory implements History using soy over Postgres.
type SoyHistory struct {
	attempts    *soy.Soy[AttemptRecord]
	performance *soy.Soy[PerformanceRow]
	embedder    Embedder
	db          *sqlx.DB
}

// NewSoyHistory creates a soy-backed History implementation.
func NewSoyHistory(db *sqlx.DB) (*SoyHistory, error) {
	renderer := postgres.New()

	attempts, err := soy.New[AttemptRecord](db, "attempts", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize attempts table: %w", err)
	}

	performance, err := soy.New[PerformanceRow](db, "strategy_performance", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize performance table: %w", err)
	}

	return &SoyHistory{
		attempts:    attempts,
		performance: performance,
		db:          db,
	}, nil
}

// WithEmbedder attaches an embedder so stored attempts carry answer
// embeddings for similarity search.
func (h *SoyHistory) WithEmbedder(e Embedder) *SoyHistory {
	h.embedder = e
	return h
}

// RecordAttempt persists an attempt, embedding its answer when an
// embedder is configured. Embedding failures degrade to a record without
// a vector.
func (h *SoyHistory) RecordAttempt(ctx context.Context, record *AttemptRecord) error {
	if h.embedder != nil && record.Embedding == nil && record.Answer != "" {
		if vec, err := h.embedder.Embed(ctx, record.Answer); err == nil {
			record.Embedding = vec
		}
	}

	inserted, err := h.attempts.Insert().Exec(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	record.ID = inserted.ID
	return nil
}

// AttemptsByTrace loads all attempts for a trace, ordered by attempt
// number.
func (h *SoyHistory) AttemptsByTrace(ctx context.Context, traceID string) ([]*AttemptRecord, error) {
	records, err := h.attempts.Query().
		Where("trace_id", "=", "trace_id").
		OrderBy("attempt", "asc").
		Exec(ctx, map[string]any{"trace_id": traceID})
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts by trace ID: %w", err)
	}
	return records, nil
}

// SearchAttempts finds accepted attempts whose answers are semantically
// closest to the query embedding.
func (h *SoyHistory) SearchAttempts(ctx context.Context, embedding Vector, limit int) ([]*AttemptRecord, error) {
	records, err := h.attempts.Query().
		WhereNotNull("embedding").
		OrderByExpr("embedding", "<->", "query_embedding", "asc").
		Limit(limit).
		Exec(ctx, map[string]any{"query_embedding": embedding})
	if err != nil {
		return nil, fmt.Errorf("failed to search attempts: %w", err)
	}
	return records, nil
}

// SavePerformance replaces the stored snapshot with the given one.
func (h *SoyHistory) SavePerformance(ctx context.Context, snapshot map[Strategy]PerformanceRecord) error {
	for tag, rec := range snapshot {
		_, err := h.performance.Remove().
			Where("strategy", "=", "strategy").
			Exec(ctx, map[string]any{"strategy": string(tag)})
		if err != nil {
			return fmt.Errorf("failed to clear performance row: %w", err)
		}

		row := PerformanceRow{
			Strategy:      string(tag),
			SuccessCount:  rec.SuccessCount,
			TotalCount:    rec.TotalCount,
			AvgConfidence: rec.AvgConfidence,
			Updated:       time.Now(),
		}
		if _, err := h.performance.Insert().Exec(ctx, &row); err != nil {
			return fmt.Errorf("failed to insert performance row: %w", err)
		}
	}
	return nil
}

// LoadPerformance reads the stored snapshot, skipping rows for unknown
// strategies.
func (h *SoyHistory) LoadPerformance(ctx context.Context) (map[Strategy]PerformanceRecord, error) {
	rows, err := h.performance.Query().
		OrderBy("strategy", "asc").
		Exec(ctx, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("failed to load performance: %w", err)
	}

	out := make(map[Strategy]PerformanceRecord, len(rows))
	for _, row := range rows {
		tag, err := ParseStrategy(row.Strategy)
		if err != nil {
			continue
		}
		out[tag] = PerformanceRecord{
			SuccessCount:  row.SuccessCount,
			TotalCount:    row.TotalCount,
			AvgConfidence: row.AvgConfidence,
		}
	}
	return out, nil
}

// Close closes the underlying database connection.
func (h *SoyHistory) Close() error {
	return h.db.Close()
}

var _ History = (*SoyHistory)(nil)
