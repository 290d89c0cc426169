package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"extranet_rates/apperror"
	"extranet_rates/models"
)

const (
	ColRoomID        = "Room ID"
	ColRoomName      = "Room Name"
	ColDateRange     = "Date Range"
	ColPrice         = "Price"
	ColNumberOfRooms = "Number of Rooms"
	ColStatus        = "Status"
)

var requiredColumns = []string{ColRoomID, ColRoomName, ColDateRange, ColPrice, ColNumberOfRooms}

// Ledger is the ordered, file-backed list of pricing records. Row order is
// the resumption order. Every mutation rewrites the whole file through a
// temp file and rename.
type Ledger struct {
	mu       sync.Mutex
	path     string
	header   []string
	index    map[string]int
	extraIdx []int
	records  []models.PricingRecord
}

// Open loads the ledger at path. A file without a Status column gets one,
// every record is set to pending, and the migrated file is written back
// before Open returns.
func Open(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(apperror.LedgerIO, "ledger: open "+path, err)
	}
	defer f.Close()

	l, migrated, err := read(f)
	if err != nil {
		return nil, apperror.Wrap(apperror.LedgerIO, "ledger: read "+path, err)
	}
	l.path = path

	if migrated {
		log.Printf("Ledger %s has no %s column, initialising %d records as pending", path, ColStatus, len(l.records))
		if err := l.persist(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func read(r io.Reader) (*Ledger, bool, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, false, fmt.Errorf("empty file, expected a header row")
	}
	if err != nil {
		return nil, false, fmt.Errorf("header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, false, fmt.Errorf("missing required column %q", col)
		}
	}

	migrated := false
	if _, ok := index[ColStatus]; !ok {
		header = append(header, ColStatus)
		index[ColStatus] = len(header) - 1
		migrated = true
	}

	known := make(map[int]bool, len(requiredColumns)+1)
	for _, col := range append(requiredColumns, ColStatus) {
		known[index[col]] = true
	}
	var extraIdx []int
	for i := range header {
		if !known[i] {
			extraIdx = append(extraIdx, i)
		}
	}

	l := &Ledger{header: header, index: index, extraIdx: extraIdx}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, false, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}

		cell := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		rec := models.PricingRecord{
			RoomID:        cell(index[ColRoomID]),
			RoomName:      cell(index[ColRoomName]),
			DateRange:     cell(index[ColDateRange]),
			Price:         cell(index[ColPrice]),
			NumberOfRooms: cell(index[ColNumberOfRooms]),
			Status:        models.StatusPending,
		}
		if !migrated {
			rec.Status = models.ParseRecordStatus(cell(index[ColStatus]))
		}
		if len(extraIdx) > 0 {
			cells := make([]string, len(extraIdx))
			for j, i := range extraIdx {
				if i < len(row) {
					cells[j] = row[i]
				}
			}
			rec = rec.WithExtra(cells)
		}
		l.records = append(l.records, rec)
	}

	return l, migrated, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (l *Ledger) Path() string {
	return l.path
}

// Records returns a copy of every record in file order.
func (l *Ledger) Records() []models.PricingRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.PricingRecord(nil), l.records...)
}

// RoomIDs returns the distinct room ids in order of first appearance.
func (l *Ledger) RoomIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]bool)
	var ids []string
	for _, r := range l.records {
		if !seen[r.RoomID] {
			seen[r.RoomID] = true
			ids = append(ids, r.RoomID)
		}
	}
	return ids
}

// PendingFor returns the room's records that are not completed, in file order.
func (l *Ledger) PendingFor(roomID string) []models.PricingRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	var pending []models.PricingRecord
	for _, r := range l.records {
		if r.RoomID == roomID && !r.IsCompleted() {
			pending = append(pending, r)
		}
	}
	return pending
}

// MarkCompleted completes the first pending row whose (room id, date range,
// price) equals rec's and persists the ledger. Later rows sharing the key stay
// pending until they are processed themselves.
//
// This differs from "first row with the key, whatever its status": with that
// rule an already completed duplicate would be marked again and the later
// pending one would be re-applied on every run. Both rules pick the same row
// within a single pass over a fresh ledger.
func (l *Ledger) MarkCompleted(rec models.PricingRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := rec.Key()
	idx := -1
	for i, r := range l.records {
		if r.Key() == key && !r.IsCompleted() {
			idx = i
			break
		}
	}
	if idx < 0 {
		for _, r := range l.records {
			if r.Key() == key {
				log.Printf("Ledger: %s already completed", key)
				return nil
			}
		}
		return fmt.Errorf("ledger: no row matches %s", key)
	}

	l.records[idx].Status = models.StatusCompleted
	if err := l.persist(); err != nil {
		l.records[idx].Status = models.StatusPending
		return err
	}
	return nil
}

// ResetAll sets every record back to pending and persists.
func (l *Ledger) ResetAll() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := make([]models.RecordStatus, len(l.records))
	for i := range l.records {
		prev[i] = l.records[i].Status
		l.records[i].Status = models.StatusPending
	}
	if err := l.persist(); err != nil {
		for i := range l.records {
			l.records[i].Status = prev[i]
		}
		return err
	}
	return nil
}

func (l *Ledger) ProgressSummary() models.ProgressSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	completed := 0
	for _, r := range l.records {
		if r.IsCompleted() {
			completed++
		}
	}
	return models.NewProgressSnapshot(len(l.records), completed)
}

// persist writes the ledger next to its path and renames it into place, so a
// crash leaves either the old or the new file. Caller holds l.mu.
func (l *Ledger) persist() error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(l.path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return apperror.Wrap(apperror.LedgerIO, "ledger: create temp file", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := l.write(tmp); err != nil {
		cleanup()
		return apperror.Wrap(apperror.LedgerIO, "ledger: write", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return apperror.Wrap(apperror.LedgerIO, "ledger: sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperror.Wrap(apperror.LedgerIO, "ledger: close", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return apperror.Wrap(apperror.LedgerIO, "ledger: chmod", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return apperror.Wrap(apperror.LedgerIO, "ledger: replace "+l.path, err)
	}
	return nil
}

func (l *Ledger) write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(l.header); err != nil {
		return err
	}

	for _, r := range l.records {
		row := make([]string, len(l.header))
		row[l.index[ColRoomID]] = r.RoomID
		row[l.index[ColRoomName]] = r.RoomName
		row[l.index[ColDateRange]] = r.DateRange
		row[l.index[ColPrice]] = r.Price
		row[l.index[ColNumberOfRooms]] = r.NumberOfRooms
		row[l.index[ColStatus]] = string(r.Status)
		for j, i := range l.extraIdx {
			if extra := r.Extra(); j < len(extra) {
				row[i] = extra[j]
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
