package workflow

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"extranet_rates/apperror"
	"extranet_rates/config"
	"extranet_rates/daterange"
	"extranet_rates/models"
	"extranet_rates/pacing"
	"extranet_rates/recovery"
	"extranet_rates/surface"
)

type Step string

const (
	StepPrepare      Step = "prepare"
	StepOpenModal    Step = "open_modal"
	StepSetDates     Step = "set_dates"
	StepSetInventory Step = "set_inventory"
	StepSetPrice     Step = "set_price"
	StepSetStatus    Step = "set_status"
	StepMarkDone     Step = "mark_completed"
	StepSaveAndClose Step = "save_and_close"
)

// StepError ties a failure to the room, date range and step it happened in.
type StepError struct {
	RoomID    string
	DateRange string
	Step      Step
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("room %s [%s] %s: %v", e.RoomID, e.DateRange, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Completer durably records a finished edit.
type Completer interface {
	MarkCompleted(rec models.PricingRecord) error
}

// RunContext carries everything a run needs. It is built once per run and
// shared by every room.
type RunContext struct {
	Surface   surface.Surface
	Ledger    Completer
	Pacer     *pacing.Controller
	Selectors config.Selectors

	Today   time.Time
	Horizon time.Time

	WaitTimeout       time.Duration
	TypeDelay         time.Duration
	ModalOpenAttempts int
	ModalRetryDelay   time.Duration
	CalendarURL       string
}

type Workflow struct {
	rc       RunContext
	resolver *recovery.Resolver
	retry    *recovery.Retry
}

func New(rc RunContext) *Workflow {
	if rc.Pacer == nil {
		rc.Pacer = pacing.NoDelay()
	}
	if rc.WaitTimeout <= 0 {
		rc.WaitTimeout = 10 * time.Second
	}
	if rc.ModalOpenAttempts < 1 {
		rc.ModalOpenAttempts = 1
	}
	rc.Today = daterange.Truncate(rc.Today)
	rc.Horizon = daterange.Truncate(rc.Horizon)

	return &Workflow{
		rc:       rc,
		resolver: recovery.NewResolver(rc.Surface, rc.Pacer),
		retry:    &recovery.Retry{Attempts: rc.ModalOpenAttempts, BaseDelay: rc.ModalRetryDelay},
	}
}

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDeferred  Outcome = "deferred"
)

type RecordResult struct {
	Record  models.PricingRecord
	Outcome Outcome
	Err     error
}

// RoomResult is what happened to each record handed to ProcessRoom, in order.
type RoomResult struct {
	Room      models.RoomView
	Records   []RecordResult
	Err       error
	Cancelled bool
}

func (r *RoomResult) Count(o Outcome) int {
	n := 0
	for _, rr := range r.Records {
		if rr.Outcome == o {
			n++
		}
	}
	return n
}

// Fatal reports whether the room stopped on an error that must end the run.
func (r *RoomResult) Fatal() bool {
	return r.Err != nil && apperror.IsFatal(r.Err)
}

func (r *RoomResult) add(rec models.PricingRecord, o Outcome, err error) {
	r.Records = append(r.Records, RecordResult{Record: rec, Outcome: o, Err: err})
}

func (r *RoomResult) deferRest(rest []models.PricingRecord) {
	for _, rec := range rest {
		r.add(rec, OutcomeDeferred, nil)
	}
}

// ProcessRoom drives each pending record of one room through the bulk-edit
// modal, one modal per record. The first failure ends the room for this run;
// the records after it are deferred. Cancellation is honoured only between
// records.
func (w *Workflow) ProcessRoom(ctx context.Context, room models.RoomView, records []models.PricingRecord) RoomResult {
	res := RoomResult{Room: room}
	if len(records) == 0 {
		return res
	}

	logf(room.RoomID, "", "room", "info", "%d pending records for %s", len(records), room.DisplayName)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			logf(room.RoomID, rec.DateRange, "room", "info", "stop requested, deferring %d records", len(records)-i)
			res.Cancelled = true
			res.deferRest(records[i:])
			return res
		}

		iv, err := w.prepare(rec)
		if err != nil {
			logf(rec.RoomID, rec.DateRange, StepPrepare, "warn", "skipped: %v", err)
			res.add(rec, OutcomeSkipped, &StepError{RoomID: rec.RoomID, DateRange: rec.DateRange, Step: StepPrepare, Err: err})
			continue
		}

		completed, err := w.apply(room, rec, iv)
		if err == nil {
			logf(rec.RoomID, rec.DateRange, StepSaveAndClose, "info", "completed (%s to %s, %s rooms, price %s)",
				iv.StartString(), iv.EndString(), rec.NumberOfRooms, rec.Price)
			res.add(rec, OutcomeCompleted, nil)
			continue
		}

		logf(rec.RoomID, rec.DateRange, stepOf(err), "error", "%v", unwrapStep(err))
		if completed {
			res.add(rec, OutcomeCompleted, nil)
		} else {
			res.add(rec, OutcomeFailed, err)
		}
		res.Err = err
		res.deferRest(records[i+1:])

		w.resolver.EmergencyClose(w.rc.Selectors.ModalClose, w.rc.Selectors.ModalMarkers, w.point())
		if n := len(records) - i - 1; n > 0 {
			logf(rec.RoomID, "", "room", "warn", "abandoning room for this run, %d records deferred", n)
		}
		return res
	}

	return res
}

// prepare derives the interval to submit and validates the numeric cells.
func (w *Workflow) prepare(rec models.PricingRecord) (daterange.Interval, error) {
	iv, err := daterange.Parse(rec.DateRange, w.rc.Today.Year())
	if err != nil {
		return daterange.Interval{}, err
	}

	clamped, verdict := daterange.Clamp(iv, w.rc.Today, w.rc.Horizon)
	switch verdict {
	case daterange.SkipPast:
		return daterange.Interval{}, apperror.New(apperror.ParseError, fmt.Sprintf("interval %s is entirely in the past", iv))
	case daterange.SkipBeyondHorizon:
		return daterange.Interval{}, apperror.New(apperror.ParseError, fmt.Sprintf("interval %s starts at or after horizon %s", iv, w.rc.Horizon.Format(daterange.Layout)))
	}

	if n, err := strconv.Atoi(strings.TrimSpace(rec.NumberOfRooms)); err != nil || n < 0 {
		return daterange.Interval{}, apperror.New(apperror.ParseError, fmt.Sprintf("invalid number of rooms %q", rec.NumberOfRooms))
	}
	if p, err := strconv.ParseFloat(strings.TrimSpace(rec.Price), 64); err != nil || math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return daterange.Interval{}, apperror.New(apperror.ParseError, fmt.Sprintf("invalid price %q", rec.Price))
	}

	if !clamped.Start.Equal(iv.Start) || !clamped.End.Equal(iv.End) {
		logf(rec.RoomID, rec.DateRange, StepPrepare, "info", "clamped %s to %s", iv, clamped)
	}
	return clamped, nil
}

// apply runs one record through a fresh modal. completed reports whether the
// record reached the ledger, which can be true even when err is set (the
// modal failed to close after every group had saved).
func (w *Workflow) apply(room models.RoomView, rec models.PricingRecord, iv daterange.Interval) (completed bool, err error) {
	fail := func(step Step, err error) error {
		return &StepError{RoomID: rec.RoomID, DateRange: rec.DateRange, Step: step, Err: err}
	}

	if err := w.openModal(room.RoomID); err != nil {
		return false, fail(StepOpenModal, err)
	}
	if err := w.setDates(iv); err != nil {
		return false, fail(StepSetDates, err)
	}
	if err := w.setInventory(rec.NumberOfRooms); err != nil {
		return false, fail(StepSetInventory, err)
	}
	if err := w.setPrice(rec.Price); err != nil {
		return false, fail(StepSetPrice, err)
	}
	if err := w.setStatus(); err != nil {
		return false, fail(StepSetStatus, err)
	}

	if err := w.rc.Ledger.MarkCompleted(rec); err != nil {
		if apperror.KindOf(err) == "" {
			err = apperror.Wrap(apperror.LedgerIO, "failed to record completion", err)
		}
		return false, fail(StepMarkDone, err)
	}

	if err := w.closeModal(); err != nil {
		return true, fail(StepSaveAndClose, err)
	}
	return true, nil
}

func (w *Workflow) point() recovery.Point {
	p := w.rc.Selectors.BackgroundPoint
	return recovery.Point{X: p.X, Y: p.Y}
}

func stepOf(err error) Step {
	if se, ok := err.(*StepError); ok {
		return se.Step
	}
	return "room"
}

func unwrapStep(err error) error {
	if se, ok := err.(*StepError); ok {
		return se.Err
	}
	return err
}

func logf(roomID, dateRange string, step Step, level, format string, args ...interface{}) {
	where := "modal"
	if roomID != "" {
		where = "room " + roomID
	}
	if dateRange != "" {
		where += " [" + dateRange + "]"
	}
	log.Printf("[%s] %s %s: %s", level, where, step, fmt.Sprintf(format, args...))
}
