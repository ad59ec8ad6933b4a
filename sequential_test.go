package adaptive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zoobzio/zyn"
)

// mockSequentialProvider answers transform calls with a stage output and
// binary calls with a confident yes.
type mockSequentialProvider struct {
	callCount int
	failAt    int
}

func (m *mockSequentialProvider) Call(_ context.Context, messages []zyn.Message, _ float32) (*zyn.ProviderResponse, error) {
	m.callCount++

	if m.failAt > 0 && m.callCount == m.failAt {
		return nil, fmt.Errorf("provider unavailable")
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	lastMessage := messages[len(messages)-1]

	if strings.Contains(lastMessage.Content, "Transform:") {
		return &zyn.ProviderResponse{
			Content: fmt.Sprintf(`{"output": "stage %d output", "confidence": 0.9, "changes": [], "reasoning": ["worked the stage"]}`, m.callCount),
			Usage:   zyn.TokenUsage{Prompt: 10, Completion: 10, Total: 20},
		}, nil
	}

	return &zyn.ProviderResponse{
		Content: `{"decision": true, "confidence": 0.9, "reasoning": ["conclusion follows"]}`,
		Usage:   zyn.TokenUsage{Prompt: 10, Completion: 10, Total: 20},
	}, nil
}

func (m *mockSequentialProvider) Name() string {
	return "mock-sequential"
}

func TestSequentialReasonerStages(t *testing.T) {
	provider := &mockSequentialProvider{}
	r := NewSequentialReasoner().WithProvider(provider)

	result, err := r.Reason(context.Background(), NewQuestion("What is two plus two", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Strategy != StrategySequential {
		t.Errorf("strategy = %s", result.Strategy)
	}
	if len(result.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(result.Steps))
	}

	wantSteps := []string{"restate", "analyze", "derive", "conclude"}
	for i, want := range wantSteps {
		if result.Steps[i].Step != want {
			t.Errorf("step %d = %q, expected %q", i, result.Steps[i].Step, want)
		}
	}

	// The answer is the conclude stage's output.
	if result.Answer != result.Steps[3].Output {
		t.Errorf("answer %q does not match conclude output %q", result.Answer, result.Steps[3].Output)
	}
	if result.Confidence != 0.9 {
		t.Errorf("confidence = %f, expected 0.9", result.Confidence)
	}

	// Four transforms plus one binary probe.
	if provider.callCount != 5 {
		t.Errorf("provider called %d times, expected 5", provider.callCount)
	}
}

func TestSequentialReasonerStageFailure(t *testing.T) {
	provider := &mockSequentialProvider{failAt: 2}
	r := NewSequentialReasoner().WithProvider(provider)

	_, err := r.Reason(context.Background(), NewQuestion("q", nil))
	if err == nil {
		t.Fatal("expected error")
	}

	var rerr *ReasoningError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ReasoningError, got %T", err)
	}
	if rerr.Strategy != StrategySequential {
		t.Errorf("error strategy = %s", rerr.Strategy)
	}
}

func TestSequentialReasonerNoProvider(t *testing.T) {
	SetProvider(nil)
	defer SetProvider(nil)

	r := NewSequentialReasoner()
	_, err := r.Reason(context.Background(), NewQuestion("q", nil))
	if err == nil {
		t.Fatal("expected error without a provider")
	}
}
