package observability_test

import (
	"testing"

	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/observability"
)

func TestGatewaySnapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrGatewayRequest("generate_schemes")
	m.IncrGatewayRequest("generate_schemes")
	m.IncrGatewayRequest("chat")
	m.IncrGatewayRequest("chat")
	m.IncrFallback("generate_schemes", "transport")
	m.RecordTokens(120, 30)
	m.SetActiveSessions(3)

	snap := m.GetGatewaySnapshot()

	if snap.SchemeRequests != 2 || snap.ChatRequests != 2 {
		t.Fatalf("unexpected request counts: %+v", snap)
	}
	if snap.Fallbacks != 1 {
		t.Errorf("expected 1 fallback, got %d", snap.Fallbacks)
	}
	if snap.FallbackRate != 0.25 {
		t.Errorf("expected fallback rate 0.25, got %f", snap.FallbackRate)
	}
	if snap.PromptTokens != 120 || snap.CompletionTokens != 30 {
		t.Errorf("unexpected tokens: %+v", snap)
	}
	if snap.ActiveSessions != 3 {
		t.Errorf("expected 3 active sessions, got %d", snap.ActiveSessions)
	}
}

func TestNewMetrics_IsolatedRegistries(t *testing.T) {
	a := observability.NewMetrics()
	b := observability.NewMetrics()
	a.IncrGatewayRequest("chat")

	if got := b.GetGatewaySnapshot().ChatRequests; got != 0 {
		t.Errorf("registries must be independent, got %d", got)
	}
}
