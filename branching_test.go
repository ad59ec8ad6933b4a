package adaptive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/zoobzio/zyn"
)

// mockBranchingProvider serves all three paths concurrently; confidence
// varies per path so winner selection is observable.
type mockBranchingProvider struct {
	mu        sync.Mutex
	callCount int
	failPath  string
}

func (m *mockBranchingProvider) Call(_ context.Context, messages []zyn.Message, _ float32) (*zyn.ProviderResponse, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	lastMessage := messages[len(messages)-1]

	if m.failPath != "" {
		for _, msg := range messages {
			if strings.Contains(msg.Content, m.failPath) {
				return nil, fmt.Errorf("path unavailable")
			}
		}
	}

	if strings.Contains(lastMessage.Content, "Transform:") {
		return &zyn.ProviderResponse{
			Content: `{"output": "a path answer", "confidence": 0.9, "changes": [], "reasoning": ["explored the angle"]}`,
			Usage:   zyn.TokenUsage{Prompt: 10, Completion: 10, Total: 20},
		}, nil
	}

	return &zyn.ProviderResponse{
		Content: `{"decision": true, "confidence": 0.8, "reasoning": ["well supported"]}`,
		Usage:   zyn.TokenUsage{Prompt: 10, Completion: 10, Total: 20},
	}, nil
}

func (m *mockBranchingProvider) Name() string {
	return "mock-branching"
}

func TestBranchingReasonerSelectsWeightedWinner(t *testing.T) {
	provider := &mockBranchingProvider{}
	r := NewBranchingReasoner().WithProvider(provider)

	result, err := r.Reason(context.Background(), NewQuestion("Compare the options", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Strategy != StrategyBranching {
		t.Errorf("strategy = %s", result.Strategy)
	}
	// Equal confidences: the factual path's 1.0 weight wins.
	if got := result.Metadata["selected_path"]; got != "factual" {
		t.Errorf("selected_path = %q, expected factual", got)
	}
	if got := result.Metadata["attempted_paths"]; got != "3" {
		t.Errorf("attempted_paths = %q", got)
	}

	successful := strings.Split(result.Metadata["successful_paths"], ",")
	if len(successful) != 3 {
		t.Errorf("successful_paths = %q", result.Metadata["successful_paths"])
	}

	// Winner confidence is unweighted; the weight only ranks.
	if result.Confidence != 0.8 {
		t.Errorf("confidence = %f, expected 0.8", result.Confidence)
	}

	// Two calls per path: transform plus probe.
	if provider.callCount != 6 {
		t.Errorf("provider called %d times, expected 6", provider.callCount)
	}
}

func TestBranchingReasonerSurvivesPathFailure(t *testing.T) {
	// The factual path fails; a surviving path still answers.
	provider := &mockBranchingProvider{failPath: "established facts"}
	r := NewBranchingReasoner().WithProvider(provider)

	result, err := r.Reason(context.Background(), NewQuestion("q", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Metadata["selected_path"] == "factual" {
		t.Error("failed path selected as winner")
	}
	if !strings.Contains(result.Metadata["successful_paths"], "analytical") {
		t.Errorf("successful_paths = %q", result.Metadata["successful_paths"])
	}
}

func TestBranchingReasonerAllPathsFail(t *testing.T) {
	provider := &mockBranchingProvider{failPath: "Transform"}
	r := NewBranchingReasoner().WithProvider(provider)

	_, err := r.Reason(context.Background(), NewQuestion("q", nil))
	if err == nil {
		t.Fatal("expected error when every path fails")
	}

	var rerr *ReasoningError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ReasoningError, got %T", err)
	}
	if rerr.Strategy != StrategyBranching {
		t.Errorf("error strategy = %s", rerr.Strategy)
	}
}
