package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"extranet_rates/models"
)

// PostgresJournal shares run history across hosts.
type PostgresJournal struct {
	pool *pgxpool.Pool
}

func NewPostgresJournal(ctx context.Context, connString string) (*PostgresJournal, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	j := &PostgresJournal{pool: pool}
	if err := j.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return j, nil
}

func (j *PostgresJournal) Close() error {
	j.pool.Close()
	return nil
}

func (j *PostgresJournal) migrate(ctx context.Context) error {
	_, err := j.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bulk_edit_runs (
			id UUID PRIMARY KEY,
			ledger_path TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			status TEXT NOT NULL,
			completed INT NOT NULL DEFAULT 0,
			failed INT NOT NULL DEFAULT 0,
			skipped INT NOT NULL DEFAULT 0,
			deferred INT NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS bulk_edit_run_events (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES bulk_edit_runs(id),
			timestamp TIMESTAMPTZ NOT NULL,
			level TEXT NOT NULL,
			room_id TEXT NOT NULL DEFAULT '',
			date_range TEXT NOT NULL DEFAULT '',
			step TEXT NOT NULL DEFAULT '',
			fingerprint TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_bulk_edit_events_run ON bulk_edit_run_events(run_id, timestamp);
	`)
	return err
}

func (j *PostgresJournal) StartRun(ctx context.Context, run *models.Run) error {
	_, err := j.pool.Exec(ctx, `
		INSERT INTO bulk_edit_runs (id, ledger_path, started_at, status)
		VALUES ($1, $2, $3, $4)`,
		run.ID, run.LedgerPath, run.StartedAt, string(run.Status))
	return err
}

func (j *PostgresJournal) FinishRun(ctx context.Context, run *models.Run) error {
	_, err := j.pool.Exec(ctx, `
		UPDATE bulk_edit_runs SET finished_at = $2, status = $3, completed = $4, failed = $5,
			skipped = $6, deferred = $7, error = $8
		WHERE id = $1`,
		run.ID, run.FinishedAt, string(run.Status), run.Completed, run.Failed,
		run.Skipped, run.Deferred, run.Error)
	return err
}

func (j *PostgresJournal) Log(ctx context.Context, ev *models.RunEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	return j.pool.QueryRow(ctx, `
		INSERT INTO bulk_edit_run_events (run_id, timestamp, level, room_id, date_range, step, fingerprint, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		ev.RunID, ev.Timestamp, string(ev.Level), ev.RoomID, ev.DateRange, ev.Step, ev.Fingerprint, ev.Message,
	).Scan(&ev.ID)
}

func (j *PostgresJournal) RecentRuns(ctx context.Context, limit int) ([]models.Run, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT id, ledger_path, started_at, finished_at, status, completed, failed, skipped, deferred, error
		FROM bulk_edit_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var r models.Run
		var status string
		if err := rows.Scan(&r.ID, &r.LedgerPath, &r.StartedAt, &r.FinishedAt, &status,
			&r.Completed, &r.Failed, &r.Skipped, &r.Deferred, &r.Error); err != nil {
			return nil, err
		}
		r.Status = models.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (j *PostgresJournal) Events(ctx context.Context, runID uuid.UUID) ([]models.RunEvent, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT id, timestamp, level, room_id, date_range, step, fingerprint, message
		FROM bulk_edit_run_events WHERE run_id = $1 ORDER BY timestamp, id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.RunEvent
	for rows.Next() {
		ev := models.RunEvent{RunID: runID}
		var level string
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &level, &ev.RoomID, &ev.DateRange,
			&ev.Step, &ev.Fingerprint, &ev.Message); err != nil {
			return nil, err
		}
		ev.Level = models.LogLevel(level)
		events = append(events, ev)
	}
	return events, rows.Err()
}
