package models

import (
	"time"

	"github.com/google/uuid"
)

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// RunEvent is a journal line attached to a run. Record-level events carry the
// room, date range, step and the record fingerprint.
type RunEvent struct {
	ID          int64     `json:"id" db:"id"`
	RunID       uuid.UUID `json:"run_id" db:"run_id"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Level       LogLevel  `json:"level" db:"level"`
	RoomID      string    `json:"room_id" db:"room_id"`
	DateRange   string    `json:"date_range" db:"date_range"`
	Step        string    `json:"step" db:"step"`
	Fingerprint string    `json:"fingerprint" db:"fingerprint"`
	Message     string    `json:"message" db:"message"`
}
