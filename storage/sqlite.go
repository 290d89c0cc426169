package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"extranet_rates/models"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	j := &SQLiteJournal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return j, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func (j *SQLiteJournal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		ledger_path TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		completed INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		deferred INTEGER DEFAULT 0,
		error TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS run_events (
		id INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		timestamp DATETIME,
		level TEXT,
		room_id TEXT,
		date_range TEXT,
		step TEXT,
		fingerprint TEXT,
		message TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_events_run ON run_events(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_events_fingerprint ON run_events(fingerprint);
	`
	_, err := j.db.Exec(schema)
	return err
}

func (j *SQLiteJournal) StartRun(ctx context.Context, run *models.Run) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, ledger_path, started_at, status)
		VALUES (?, ?, ?, ?)`,
		run.ID.String(), run.LedgerPath, run.StartedAt, run.Status)
	return err
}

func (j *SQLiteJournal) FinishRun(ctx context.Context, run *models.Run) error {
	_, err := j.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, status = ?, completed = ?, failed = ?,
			skipped = ?, deferred = ?, error = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.Completed, run.Failed,
		run.Skipped, run.Deferred, run.Error, run.ID.String())
	return err
}

func (j *SQLiteJournal) Log(ctx context.Context, ev *models.RunEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	result, err := j.db.ExecContext(ctx, `
		INSERT INTO run_events (run_id, timestamp, level, room_id, date_range, step, fingerprint, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID.String(), ev.Timestamp, ev.Level, ev.RoomID, ev.DateRange, ev.Step, ev.Fingerprint, ev.Message)
	if err != nil {
		return err
	}
	ev.ID, _ = result.LastInsertId()
	return nil
}

func (j *SQLiteJournal) RecentRuns(ctx context.Context, limit int) ([]models.Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, ledger_path, started_at, finished_at, status, completed, failed, skipped, deferred, error
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var r models.Run
		var id string
		var finished sql.NullTime
		if err := rows.Scan(&id, &r.LedgerPath, &r.StartedAt, &finished, &r.Status,
			&r.Completed, &r.Failed, &r.Skipped, &r.Deferred, &r.Error); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (j *SQLiteJournal) Events(ctx context.Context, runID uuid.UUID) ([]models.RunEvent, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, timestamp, level, room_id, date_range, step, fingerprint, message
		FROM run_events WHERE run_id = ? ORDER BY timestamp, id`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.RunEvent
	for rows.Next() {
		ev := models.RunEvent{RunID: runID}
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.Level, &ev.RoomID, &ev.DateRange,
			&ev.Step, &ev.Fingerprint, &ev.Message); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
