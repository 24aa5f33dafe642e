package stream

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"instinct/internal/adapter/repo/memory"
	"instinct/internal/app/ports"
)

func TestHubForwardsToUnderlyingLog(t *testing.T) {
	next := memory.NewDecisionLog(10)
	h := NewHub(next, zerolog.Nop())

	rec := ports.DecisionRecord{ID: "r1", AgentID: "a", ActionTag: "action.wait", Event: ports.DecisionStarted}
	if err := h.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := h.Tail(context.Background(), 10)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("expected forwarded record, got %v", got)
	}
}

func TestHubBroadcastsToSubscribers(t *testing.T) {
	h := NewHub(nil, zerolog.Nop())

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	if err := h.Append(context.Background(), ports.DecisionRecord{AgentID: "a", ActionTag: "action.wait"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	select {
	case b := <-ch:
		if len(b) == 0 {
			t.Fatalf("empty broadcast payload")
		}
	default:
		t.Fatalf("expected a broadcast event")
	}
}

func TestHubDropsEventsForSlowSubscribers(t *testing.T) {
	h := NewHub(nil, zerolog.Nop())
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// Flood well past the channel buffer; Append must never block.
	for i := 0; i < 1000; i++ {
		if err := h.Append(context.Background(), ports.DecisionRecord{AgentID: "a"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if h.SubscriberCount() != 1 {
		t.Fatalf("subscriber should remain registered")
	}
}
