package adaptive

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/zoobzio/zyn"
)

// mockAbductiveProvider distinguishes the three stages by their task text.
type mockAbductiveProvider struct {
	callCount int
}

func (m *mockAbductiveProvider) Call(_ context.Context, messages []zyn.Message, _ float32) (*zyn.ProviderResponse, error) {
	m.callCount++

	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	lastMessage := messages[len(messages)-1]

	// Ranking synapse call.
	if strings.Contains(lastMessage.Content, "explanatory power") || strings.Contains(lastMessage.Content, "Items:") {
		return &zyn.ProviderResponse{
			Content: `{"ranked": ["the moon's gravity", "solar wind", "ocean currents"], "confidence": 0.88, "reasoning": ["gravity accounts for the periodicity"]}`,
			Usage:   zyn.TokenUsage{Prompt: 10, Completion: 20, Total: 30},
		}, nil
	}

	// Elaboration transform.
	if strings.Contains(lastMessage.Content, "Develop the selected explanation") {
		return &zyn.ProviderResponse{
			Content: `{"output": "Tides follow the moon because its gravity pulls the ocean.", "confidence": 0.9, "changes": [], "reasoning": ["expanded the hypothesis"]}`,
			Usage:   zyn.TokenUsage{Prompt: 10, Completion: 20, Total: 30},
		}, nil
	}

	// Hypothesis generation transform.
	return &zyn.ProviderResponse{
		Content: `{"output": "the moon's gravity\nsolar wind\nocean currents", "confidence": 0.85, "changes": [], "reasoning": ["listed candidates"]}`,
		Usage:   zyn.TokenUsage{Prompt: 10, Completion: 20, Total: 30},
	}, nil
}

func (m *mockAbductiveProvider) Name() string {
	return "mock-abductive"
}

func TestAbductiveReasonerSequence(t *testing.T) {
	provider := &mockAbductiveProvider{}
	r := NewAbductiveReasoner().WithProvider(provider)

	result, err := r.Reason(context.Background(), NewQuestion("Why do tides follow the moon", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Strategy != StrategyAbductive {
		t.Errorf("strategy = %s", result.Strategy)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d: %v", len(result.Steps), result.Steps)
	}
	if result.Steps[0].Step != "hypothesize" || result.Steps[1].Step != "rank" || result.Steps[2].Step != "elaborate" {
		t.Errorf("step sequence wrong: %v", result.Steps)
	}

	// Ranking winner drives the elaboration and the confidence.
	if result.Steps[1].Output != "the moon's gravity" {
		t.Errorf("ranked winner = %q", result.Steps[1].Output)
	}
	if result.Confidence != 0.88 {
		t.Errorf("confidence = %f, expected ranking's 0.88", result.Confidence)
	}
	if !strings.Contains(result.Answer, "gravity") {
		t.Errorf("answer = %q", result.Answer)
	}

	if result.Metadata["hypotheses"] != "3" {
		t.Errorf("hypotheses metadata = %q", result.Metadata["hypotheses"])
	}
	if result.Metadata["evidence"] == "" {
		t.Error("ranking reasoning should surface as evidence metadata")
	}
}

// mockNumberedHypothesesProvider returns a numbered, bulleted hypothesis
// list to exercise the list parser.
type mockNumberedHypothesesProvider struct {
	mockAbductiveProvider
}

func (m *mockNumberedHypothesesProvider) Call(ctx context.Context, messages []zyn.Message, temp float32) (*zyn.ProviderResponse, error) {
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		if strings.Contains(last.Content, "Generate") && strings.Contains(last.Content, "explanations") {
			return &zyn.ProviderResponse{
				Content: "{\"output\": \"1. the moon's gravity\\n- solar wind\\n* ocean currents\\n\\n\", \"confidence\": 0.85, \"changes\": [], \"reasoning\": []}",
				Usage:   zyn.TokenUsage{Prompt: 10, Completion: 20, Total: 30},
			}, nil
		}
	}
	return m.mockAbductiveProvider.Call(ctx, messages, temp)
}

func TestAbductiveReasonerParsesNumberedHypotheses(t *testing.T) {
	r := NewAbductiveReasoner().WithProvider(&mockNumberedHypothesesProvider{})

	result, err := r.Reason(context.Background(), NewQuestion("Why do tides follow the moon", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Bullets, numbering, and blank lines are stripped.
	if result.Metadata["hypotheses"] != "3" {
		t.Errorf("hypotheses = %q, expected 3", result.Metadata["hypotheses"])
	}
}
