package tracing

import (
	"context"
	"testing"
)

func TestNewTraceID(t *testing.T) {
	id1 := NewTraceID()
	id2 := NewTraceID()

	if id1 == "" {
		t.Error("NewTraceID returned empty string")
	}

	if id1 == id2 {
		t.Error("NewTraceID returned duplicate IDs")
	}
}

func TestWithTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "test-trace-id")

	if got := GetTraceID(ctx); got != "test-trace-id" {
		t.Errorf("Expected trace ID test-trace-id, got %s", got)
	}
}

func TestWithSessionID(t *testing.T) {
	ctx := WithSessionID(context.Background(), "session-1")

	if got := GetSessionID(ctx); got != "session-1" {
		t.Errorf("Expected session ID session-1, got %s", got)
	}
}

func TestGettersOnEmptyContext(t *testing.T) {
	ctx := context.Background()

	if GetTraceID(ctx) != "" || GetSessionID(ctx) != "" || GetTurnID(ctx) != "" {
		t.Error("Expected empty values from empty context")
	}
}

func TestNewTurnContext(t *testing.T) {
	ctx := NewTurnContext(context.Background(), "session-1")

	tc := FromContext(ctx)
	if tc.TraceID == "" {
		t.Error("Trace ID not generated")
	}
	if tc.SessionID != "session-1" {
		t.Errorf("Expected session ID session-1, got %s", tc.SessionID)
	}
	if tc.TurnID == "" {
		t.Error("Turn ID not generated")
	}

	// an existing trace ID is kept, the turn ID is fresh
	next := NewTurnContext(ctx, "session-1")
	if GetTraceID(next) != tc.TraceID {
		t.Error("Trace ID should be preserved")
	}
	if GetTurnID(next) == tc.TurnID {
		t.Error("Turn ID should be regenerated")
	}
}

func TestNewContextRoundTrip(t *testing.T) {
	tc := &TraceContext{TraceID: "t", SessionID: "s", TurnID: "u"}

	got := FromContext(NewContext(context.Background(), tc))
	if *got != *tc {
		t.Errorf("Expected %+v, got %+v", tc, got)
	}
}
