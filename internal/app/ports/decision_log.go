package ports

import (
	"context"
	"time"

	"instinct/internal/domain/decision"
)

const (
	DecisionStarted   = "started"
	DecisionContinued = "continued"
	DecisionCompleted = "completed"
	DecisionCancelled = "cancelled"
)

// DecisionRecord is one lifecycle event of one agent's action.
type DecisionRecord struct {
	ID        string
	AgentID   string
	ActionTag decision.Tag
	Event     string
	Score     float64
	Context   string
	At        time.Time
}

type DecisionLog interface {
	Append(ctx context.Context, rec DecisionRecord) error
	Tail(ctx context.Context, limit int) ([]DecisionRecord, error)
}
