package context

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "  req-1 ")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}

func TestActorFromContext(t *testing.T) {
	ctx := WithActor(context.Background(), "user", "7")
	actorType, actorID := ActorFromContext(ctx)
	if actorType != "user" || actorID != "7" {
		t.Fatalf("unexpected actor %q/%q", actorType, actorID)
	}
}

func TestClientFromContext(t *testing.T) {
	ip, ua := ClientFromContext(WithClient(context.Background(), "10.0.0.9", " curl/8 "))
	if ip != "10.0.0.9" || ua != "curl/8" {
		t.Fatalf("unexpected client %q/%q", ip, ua)
	}
}
