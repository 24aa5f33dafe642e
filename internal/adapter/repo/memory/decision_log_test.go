package memory

import (
	"context"
	"strconv"
	"testing"

	"instinct/internal/app/ports"
)

func TestDecisionLogTailNewestFirst(t *testing.T) {
	l := NewDecisionLog(10)
	for i := 0; i < 3; i++ {
		if err := l.Append(context.Background(), ports.DecisionRecord{ID: strconv.Itoa(i)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recs, err := l.Tail(context.Background(), 2)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "2" || recs[1].ID != "1" {
		t.Fatalf("expected newest first [2 1], got %v", recs)
	}
}

func TestDecisionLogCapsSize(t *testing.T) {
	l := NewDecisionLog(2)
	for i := 0; i < 5; i++ {
		l.Append(context.Background(), ports.DecisionRecord{ID: strconv.Itoa(i)})
	}
	recs, _ := l.Tail(context.Background(), 0)
	if len(recs) != 2 || recs[0].ID != "4" {
		t.Fatalf("expected capped tail [4 3], got %v", recs)
	}
}
