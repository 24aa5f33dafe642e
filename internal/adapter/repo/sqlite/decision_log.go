package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

// DecisionLog persists decision records to a local sqlite file. A single
// connection keeps writes serialized, which is plenty for a decision stream.
type DecisionLog struct {
	db *sql.DB
}

func Open(path string) (*DecisionLog, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS decision_records (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		action_tag TEXT NOT NULL,
		event TEXT NOT NULL,
		score REAL NOT NULL,
		context TEXT NOT NULL,
		at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create decision_records: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_decision_records_at ON decision_records(at)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("index decision_records: %w", err)
	}

	return &DecisionLog{db: db}, nil
}

func (l *DecisionLog) Close() error {
	return l.db.Close()
}

func (l *DecisionLog) Append(ctx context.Context, rec ports.DecisionRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO decision_records (id, agent_id, action_tag, event, score, context, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AgentID, rec.ActionTag.String(), rec.Event, rec.Score, rec.Context, rec.At.UnixNano())
	return err
}

func (l *DecisionLog) Tail(ctx context.Context, limit int) ([]ports.DecisionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, agent_id, action_tag, event, score, context, at
		 FROM decision_records ORDER BY at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ports.DecisionRecord, 0, limit)
	for rows.Next() {
		var rec ports.DecisionRecord
		var tag string
		var at int64
		if err := rows.Scan(&rec.ID, &rec.AgentID, &tag, &rec.Event, &rec.Score, &rec.Context, &at); err != nil {
			return nil, err
		}
		rec.ActionTag = decision.Tag(tag)
		rec.At = time.Unix(0, at)
		out = append(out, rec)
	}
	return out, rows.Err()
}
