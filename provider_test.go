package adaptive

import (
	"context"
	"errors"
	"testing"

	"github.com/zoobzio/zyn"
)

// mockProvider returns a fixed response for any call.
type mockProvider struct {
	name string
}

func (m *mockProvider) Call(_ context.Context, _ []zyn.Message, _ float32) (*zyn.ProviderResponse, error) {
	return &zyn.ProviderResponse{
		Content: "mock response",
		Usage: zyn.TokenUsage{
			Prompt:     10,
			Completion: 5,
			Total:      15,
		},
	}, nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func TestSetGetProvider(t *testing.T) {
	SetProvider(nil)
	defer SetProvider(nil)

	if p := GetProvider(); p != nil {
		t.Error("expected nil provider")
	}

	mock := &mockProvider{name: "global"}
	SetProvider(mock)

	p := GetProvider()
	if p == nil {
		t.Fatal("expected provider to be set")
	}
	if p.Name() != "global" {
		t.Errorf("expected name %q, got %q", "global", p.Name())
	}
}

func TestProviderFromContext(t *testing.T) {
	mock := &mockProvider{name: "context"}
	ctx := WithProvider(context.Background(), mock)

	p, ok := ProviderFromContext(ctx)
	if !ok || p.Name() != "context" {
		t.Errorf("context provider not retrieved: %v, %t", p, ok)
	}

	if _, ok := ProviderFromContext(context.Background()); ok {
		t.Error("bare context should carry no provider")
	}
}

func TestResolveProviderHierarchy(t *testing.T) {
	SetProvider(nil)
	defer SetProvider(nil)

	local := &mockProvider{name: "local"}
	ctxProv := &mockProvider{name: "context"}
	global := &mockProvider{name: "global"}

	// Local beats context beats global.
	SetProvider(global)
	ctx := WithProvider(context.Background(), ctxProv)

	p, err := ResolveProvider(ctx, local)
	if err != nil || p.Name() != "local" {
		t.Errorf("local should win: %v, %v", p, err)
	}

	p, err = ResolveProvider(ctx, nil)
	if err != nil || p.Name() != "context" {
		t.Errorf("context should win over global: %v, %v", p, err)
	}

	p, err = ResolveProvider(context.Background(), nil)
	if err != nil || p.Name() != "global" {
		t.Errorf("global should be the fallback: %v, %v", p, err)
	}

	SetProvider(nil)
	_, err = ResolveProvider(context.Background(), nil)
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
}
