package storage

import (
	"context"
	"log"

	"github.com/google/uuid"

	"extranet_rates/config"
	"extranet_rates/models"
)

// Journal keeps a history of runs and their notable events. It is an
// observer only; resumption is driven by the ledger alone.
type Journal interface {
	StartRun(ctx context.Context, run *models.Run) error
	FinishRun(ctx context.Context, run *models.Run) error
	Log(ctx context.Context, event *models.RunEvent) error
	RecentRuns(ctx context.Context, limit int) ([]models.Run, error)
	Events(ctx context.Context, runID uuid.UUID) ([]models.RunEvent, error)
	Close() error
}

// OpenJournal picks Postgres when a DSN is configured, SQLite otherwise, and
// a no-op journal when disabled.
func OpenJournal(ctx context.Context, cfg config.JournalConfig) (Journal, error) {
	switch {
	case cfg.DSN != "":
		log.Printf("Run journal: postgres")
		return NewPostgresJournal(ctx, cfg.DSN)
	case cfg.Disabled():
		return NopJournal{}, nil
	default:
		log.Printf("Run journal: sqlite %s", cfg.Path)
		return NewSQLiteJournal(cfg.Path)
	}
}

type NopJournal struct{}

func (NopJournal) StartRun(context.Context, *models.Run) error  { return nil }
func (NopJournal) FinishRun(context.Context, *models.Run) error { return nil }
func (NopJournal) Log(context.Context, *models.RunEvent) error  { return nil }
func (NopJournal) RecentRuns(context.Context, int) ([]models.Run, error) {
	return nil, nil
}
func (NopJournal) Events(context.Context, uuid.UUID) ([]models.RunEvent, error) {
	return nil, nil
}
func (NopJournal) Close() error { return nil }
