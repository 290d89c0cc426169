package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run is one pass of the orchestrator over the ledger, as kept in the run journal.
type Run struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	LedgerPath string     `json:"ledger_path" db:"ledger_path"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at" db:"finished_at"`
	Status     RunStatus  `json:"status" db:"status"`
	Completed  int        `json:"completed" db:"completed"`
	Failed     int        `json:"failed" db:"failed"`
	Skipped    int        `json:"skipped" db:"skipped"`
	Deferred   int        `json:"deferred" db:"deferred"`
	Error      string     `json:"error" db:"error"`
}
