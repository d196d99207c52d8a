package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dunamismax/avatarforge/internal/domain"
	_ "github.com/lib/pq"
)

const outcomeSchemaSQL = `
CREATE TABLE IF NOT EXISTS task_outcomes (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	name TEXT NOT NULL,
	output_name TEXT NOT NULL,
	status TEXT NOT NULL,
	shape TEXT NOT NULL DEFAULT '',
	stage TEXT NOT NULL DEFAULT '',
	error_kind TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	output_path TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS task_outcomes_run_id_idx ON task_outcomes (run_id);
`

type PostgresOutcomeStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresOutcomeStore(ctx context.Context, dsn string) (*PostgresOutcomeStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresOutcomeStore{db: db, now: time.Now}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresOutcomeStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, outcomeSchemaSQL); err != nil {
		return fmt.Errorf("ensure task_outcomes schema: %w", err)
	}
	return nil
}

func (s *PostgresOutcomeStore) Close() error {
	return s.db.Close()
}

func (s *PostgresOutcomeStore) Record(ctx context.Context, runID string, outcome domain.Outcome) error {
	if strings.TrimSpace(runID) == "" {
		return ErrRunIDRequired
	}

	rec := NewRecord(runID, outcome, s.now())
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO task_outcomes (run_id, name, output_name, status, shape, stage, error_kind, message, output_path, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.RunID,
		rec.Name,
		rec.OutputName,
		rec.Status,
		rec.Shape,
		rec.Stage,
		rec.ErrorKind,
		rec.Message,
		rec.OutputPath,
		rec.DurationMS,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task outcome: %w", err)
	}

	return nil
}

func (s *PostgresOutcomeStore) ListRun(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, name, output_name, status, shape, stage, error_kind, message, output_path, duration_ms, created_at
		 FROM task_outcomes
		 WHERE run_id = $1
		 ORDER BY name, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query task outcomes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.RunID,
			&rec.Name,
			&rec.OutputName,
			&rec.Status,
			&rec.Shape,
			&rec.Stage,
			&rec.ErrorKind,
			&rec.Message,
			&rec.OutputPath,
			&rec.DurationMS,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan task outcome: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task outcomes: %w", err)
	}

	return records, nil
}
