package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"myFoodFinder/domain"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const timeLayout = "2006-01-02T15:04:05.000Z"

// DecisionRepository stores decision counters and events in a single
// SQLite file.
type DecisionRepository struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*DecisionRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DecisionRepository{db: db}, nil
}

func (r *DecisionRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func (r *DecisionRepository) GetStats(ctx context.Context, ids []string) (map[string]domain.DecisionStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	out := make(map[string]domain.DecisionStat, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT place_id, success_count, failure_count, updated_at
		 FROM decision_stats WHERE place_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query decision_stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			st      domain.DecisionStat
			updated string
		)
		if err := rows.Scan(&st.ID, &st.SuccessCount, &st.FailureCount, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan decision_stats: %w", err)
		}
		if t, err := time.Parse(timeLayout, updated); err == nil {
			st.UpdatedAt = t
		}
		out[st.ID] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decision_stats: %w", err)
	}

	for _, id := range ids {
		if _, ok := out[id]; !ok {
			out[id] = domain.DecisionStat{ID: id}
		}
	}

	return out, nil
}

func (r *DecisionRepository) RecordDecision(ctx context.Context, id string, accepted bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	success, failure := 0, 1
	if accepted {
		success, failure = 1, 0
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO decision_stats (place_id, success_count, failure_count, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(place_id) DO UPDATE SET
		     success_count = success_count + excluded.success_count,
		     failure_count = failure_count + excluded.failure_count,
		     updated_at    = excluded.updated_at`,
		id, success, failure, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert decision_stats: %w", err)
	}

	return nil
}

func (r *DecisionRepository) SaveEvent(ctx context.Context, event domain.DecisionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	var raw []byte
	if event.Context != nil {
		var err error
		if raw, err = json.Marshal(event.Context); err != nil {
			return fmt.Errorf("failed to marshal event context: %w", err)
		}
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO decision_events (user_id, place_id, accepted, context, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		event.UserID, event.PlaceID, event.Accepted, string(raw), createdAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("failed to save decision event: %w", err)
	}

	return nil
}

// CountEvents returns how many decisions a user has made.
func (r *DecisionRepository) CountEvents(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM decision_events WHERE user_id = ?`, userID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count decision events: %w", err)
	}
	return n, nil
}
