package orchestrator

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"extranet_rates/models"
)

// Report summarises one run. Progress is the ledger state after the run.
type Report struct {
	RunID  uuid.UUID
	Status models.RunStatus

	RoomsVisited int
	RoomsSkipped int
	RoomsMissing []string

	Completed int
	Failed    int
	Skipped   int
	Deferred  int
	Cancelled bool
	Errors    []string

	Before     models.ProgressSnapshot
	Progress   models.ProgressSnapshot
	ArchiveKey string
}

func (r *Report) String() string {
	var b strings.Builder
	if r.RunID != uuid.Nil {
		fmt.Fprintf(&b, "run %s: ", r.RunID.String()[:8])
	}
	fmt.Fprintf(&b, "%d completed, %d failed, %d skipped, %d deferred",
		r.Completed, r.Failed, r.Skipped, r.Deferred)
	if r.RoomsVisited > 0 || r.RoomsSkipped > 0 {
		fmt.Fprintf(&b, " across %d rooms (%d without pending work)", r.RoomsVisited, r.RoomsSkipped)
	}
	if len(r.RoomsMissing) > 0 {
		fmt.Fprintf(&b, "; not in calendar: %s", strings.Join(r.RoomsMissing, ", "))
	}
	if r.Cancelled {
		b.WriteString("; stopped early")
	}
	fmt.Fprintf(&b, "; ledger %s", FormatProgress(r.Progress))
	return b.String()
}

func FormatProgress(p models.ProgressSnapshot) string {
	return fmt.Sprintf("%d/%d completed (%.2f%%), %d pending", p.Completed, p.Total, p.PercentComplete, p.Pending)
}
