package services_test

import (
	"context"
	"testing"

	"seminar/internal/services"
)

func TestContextRoundTrips(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithDiscussionID(ctx, 42)
	ctx = services.WithStep(ctx, "transcription")
	ctx = services.WithRequestID(ctx, "req-1")

	if id, ok := services.DiscussionIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("discussion id round trip failed: %d %v", id, ok)
	}
	if step, ok := services.StepFromContext(ctx); !ok || step != "transcription" {
		t.Fatalf("step round trip failed: %q %v", step, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-1" {
		t.Fatalf("request id round trip failed: %q %v", rid, ok)
	}
}

func TestContextMissingValues(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.DiscussionIDFromContext(ctx); ok {
		t.Fatal("expected no discussion id")
	}
	if _, ok := services.StepFromContext(ctx); ok {
		t.Fatal("expected no step")
	}
	ctx = services.WithStep(ctx, "")
	if _, ok := services.StepFromContext(ctx); ok {
		t.Fatal("empty step should not be stored")
	}
}
