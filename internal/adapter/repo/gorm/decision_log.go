package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

type decisionRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	AgentID   string    `gorm:"index;size:128"`
	ActionTag string    `gorm:"size:255"`
	Event     string    `gorm:"size:32"`
	Score     float64
	Context   string    `gorm:"type:text"`
	At        time.Time `gorm:"index"`
}

func (decisionRecord) TableName() string { return "decision_records" }

// DecisionLog persists decision records to postgres.
type DecisionLog struct {
	db *gorm.DB
}

func NewDecisionLog(db *gorm.DB) DecisionLog {
	return DecisionLog{db: db}
}

func (l DecisionLog) Append(ctx context.Context, rec ports.DecisionRecord) error {
	m := decisionRecord{
		ID:        rec.ID,
		AgentID:   rec.AgentID,
		ActionTag: rec.ActionTag.String(),
		Event:     rec.Event,
		Score:     rec.Score,
		Context:   rec.Context,
		At:        rec.At,
	}
	return l.db.WithContext(ctx).Create(&m).Error
}

func (l DecisionLog) Tail(ctx context.Context, limit int) ([]ports.DecisionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []decisionRecord
	err := l.db.WithContext(ctx).Order("at DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ports.DecisionRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, ports.DecisionRecord{
			ID:        m.ID,
			AgentID:   m.AgentID,
			ActionTag: decision.Tag(m.ActionTag),
			Event:     m.Event,
			Score:     m.Score,
			Context:   m.Context,
			At:        m.At,
		})
	}
	return out, nil
}
