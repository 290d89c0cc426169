package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"extranet_rates/apperror"
	"extranet_rates/identity"
	"extranet_rates/models"
	"extranet_rates/storage"
	"extranet_rates/workflow"
)

type Ledger interface {
	Path() string
	RoomIDs() []string
	PendingFor(roomID string) []models.PricingRecord
	ProgressSummary() models.ProgressSnapshot
}

type Enumerator interface {
	ListRooms() ([]models.RoomView, error)
}

// Driver runs the bulk-edit workflow against the live view.
type Driver interface {
	NavigateToCalendar() error
	ProcessRoom(ctx context.Context, room models.RoomView, records []models.PricingRecord) workflow.RoomResult
}

type Archiver interface {
	Archive(ctx context.Context, ledgerPath string, runID uuid.UUID) (string, error)
}

type Orchestrator struct {
	ledger   Ledger
	rooms    Enumerator
	driver   Driver
	journal  storage.Journal
	archiver Archiver
	now      func() time.Time
}

func New(ledger Ledger, rooms Enumerator, driver Driver) *Orchestrator {
	return &Orchestrator{
		ledger:  ledger,
		rooms:   rooms,
		driver:  driver,
		journal: storage.NopJournal{},
		now:     time.Now,
	}
}

func (o *Orchestrator) SetJournal(j storage.Journal) {
	if j == nil {
		j = storage.NopJournal{}
	}
	o.journal = j
}

func (o *Orchestrator) SetArchiver(a Archiver) {
	o.archiver = a
}

// Run makes one pass over every room in the calendar that still has pending
// records. Only a fatal error (ledger persistence) is returned; every other
// failure is counted in the report and left pending for the next run.
func (o *Orchestrator) Run(ctx context.Context) (report *Report, err error) {
	before := o.ledger.ProgressSummary()
	report = &Report{Before: before, Progress: before}

	if before.Pending == 0 {
		log.Printf("[info] ledger %s: all %d records completed, nothing to do", o.ledger.Path(), before.Total)
		return report, nil
	}

	run := &models.Run{
		ID:         uuid.New(),
		LedgerPath: o.ledger.Path(),
		StartedAt:  o.now(),
		Status:     models.RunStatusRunning,
	}
	report.RunID = run.ID
	if jerr := o.journal.StartRun(ctx, run); jerr != nil {
		log.Printf("Warning: failed to journal run start: %v", jerr)
	}
	o.log(run.ID, models.LogLevelInfo, fmt.Sprintf("Starting run: %d of %d records pending", before.Pending, before.Total))

	defer func() {
		o.finish(run, report, err)
	}()

	if nerr := o.driver.NavigateToCalendar(); nerr != nil {
		o.log(run.ID, models.LogLevelWarn, fmt.Sprintf("Calendar navigation failed, enumerating current view: %v", nerr))
	}

	views, lerr := o.rooms.ListRooms()
	if lerr != nil {
		o.log(run.ID, models.LogLevelError, fmt.Sprintf("Room enumeration failed: %v", lerr))
	}
	o.log(run.ID, models.LogLevelInfo, fmt.Sprintf("Found %d rooms in calendar", len(views)))

	seen := make(map[string]bool)
	for _, room := range views {
		seen[room.RoomID] = true

		pending := o.ledger.PendingFor(room.RoomID)
		if len(pending) == 0 {
			report.RoomsSkipped++
			continue
		}
		if ctx.Err() != nil {
			report.Cancelled = true
			report.Deferred += len(pending)
			continue
		}
		if !identity.SameRoomName(pending[0].RoomName, room.DisplayName) {
			o.log(run.ID, models.LogLevelWarn, fmt.Sprintf("Room %s: ledger name %q differs from calendar name %q",
				room.RoomID, pending[0].RoomName, room.DisplayName))
		}

		res := o.driver.ProcessRoom(ctx, room, pending)
		report.RoomsVisited++
		o.collect(run.ID, &res, report)

		if res.Cancelled {
			report.Cancelled = true
		}
		if res.Fatal() {
			return report, res.Err
		}
	}

	for _, id := range o.ledger.RoomIDs() {
		if seen[id] {
			continue
		}
		if n := len(o.ledger.PendingFor(id)); n > 0 {
			report.RoomsMissing = append(report.RoomsMissing, id)
			report.Deferred += n
			o.log(run.ID, models.LogLevelWarn, fmt.Sprintf("Room %s has %d pending records but is not in the calendar", id, n))
		}
	}

	return report, nil
}

func (o *Orchestrator) collect(runID uuid.UUID, res *workflow.RoomResult, report *Report) {
	for _, rr := range res.Records {
		ev := &models.RunEvent{
			RunID:       runID,
			RoomID:      rr.Record.RoomID,
			DateRange:   rr.Record.DateRange,
			Fingerprint: identity.Fingerprint(rr.Record),
		}

		switch rr.Outcome {
		case workflow.OutcomeCompleted:
			report.Completed++
			ev.Level = models.LogLevelInfo
			ev.Step = string(workflow.StepSaveAndClose)
			ev.Message = "completed"
		case workflow.OutcomeFailed:
			report.Failed++
			ev.Level = models.LogLevelError
			ev.Step, ev.Message = describe(rr.Err)
			report.Errors = append(report.Errors, rr.Err.Error())
		case workflow.OutcomeSkipped:
			report.Skipped++
			ev.Level = models.LogLevelWarn
			ev.Step, ev.Message = describe(rr.Err)
		case workflow.OutcomeDeferred:
			report.Deferred++
			continue
		}

		if err := o.journal.Log(context.Background(), ev); err != nil {
			log.Printf("Warning: failed to journal event: %v", err)
		}
	}

	if res.Err != nil && res.Count(workflow.OutcomeFailed) == 0 {
		report.Errors = append(report.Errors, res.Err.Error())
	}
	if n := res.Count(workflow.OutcomeDeferred); n > 0 {
		o.log(runID, models.LogLevelWarn, fmt.Sprintf("Room %s: %d records deferred to a later run", res.Room.RoomID, n))
	}
}

func describe(err error) (step, message string) {
	if err == nil {
		return "", ""
	}
	if se, ok := err.(*workflow.StepError); ok {
		return string(se.Step), fmt.Sprintf("%s: %v", apperror.KindOf(se.Err), se.Err)
	}
	return "", err.Error()
}

func (o *Orchestrator) finish(run *models.Run, report *Report, err error) {
	report.Progress = o.ledger.ProgressSummary()

	now := o.now()
	run.FinishedAt = &now
	run.Completed = report.Completed
	run.Failed = report.Failed
	run.Skipped = report.Skipped
	run.Deferred = report.Deferred
	switch {
	case err != nil:
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
	case report.Cancelled:
		run.Status = models.RunStatusCancelled
	default:
		run.Status = models.RunStatusCompleted
	}
	report.Status = run.Status

	if err != nil {
		o.log(run.ID, models.LogLevelError, fmt.Sprintf("Run aborted: %v", err))
	}
	o.log(run.ID, models.LogLevelInfo, report.String())

	if jerr := o.journal.FinishRun(context.Background(), run); jerr != nil {
		log.Printf("Warning: failed to journal run finish: %v", jerr)
	}

	if o.archiver != nil {
		key, aerr := o.archiver.Archive(context.Background(), o.ledger.Path(), run.ID)
		if aerr != nil {
			log.Printf("Warning: failed to archive ledger: %v", aerr)
		} else {
			report.ArchiveKey = key
			log.Printf("Archived ledger to %s", key)
		}
	}
}

func (o *Orchestrator) log(runID uuid.UUID, level models.LogLevel, message string) {
	log.Printf("[%s] run %s: %s", level, runID.String()[:8], message)
	if err := o.journal.Log(context.Background(), &models.RunEvent{RunID: runID, Level: level, Message: message}); err != nil {
		log.Printf("Warning: failed to journal event: %v", err)
	}
}
