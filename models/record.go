package models

import "strings"

type RecordStatus string

const (
	StatusPending   RecordStatus = "pending"
	StatusCompleted RecordStatus = "completed"
)

// ParseRecordStatus maps a ledger cell to a status. Anything that is not
// "completed" is pending.
func ParseRecordStatus(s string) RecordStatus {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusCompleted)) {
		return StatusCompleted
	}
	return StatusPending
}

// PricingRecord is one ledger row: a price/inventory edit for a room over a
// date range. The interval is derived from DateRange on demand and never stored.
type PricingRecord struct {
	RoomID        string       `json:"room_id"`
	RoomName      string       `json:"room_name"`
	DateRange     string       `json:"date_range"`
	NumberOfRooms string       `json:"number_of_rooms"`
	Price         string       `json:"price"`
	Status        RecordStatus `json:"status"`

	// cells of ledger columns this program does not know about, in header order
	extra []string
}

// RecordKey is the composite identity used to match completions back to
// ledger rows. There is no surrogate key.
type RecordKey struct {
	RoomID    string
	DateRange string
	Price     string
}

func (r PricingRecord) Key() RecordKey {
	return RecordKey{RoomID: r.RoomID, DateRange: r.DateRange, Price: r.Price}
}

func (r PricingRecord) IsCompleted() bool {
	return r.Status == StatusCompleted
}

func (r PricingRecord) Extra() []string {
	return r.extra
}

// WithExtra returns a copy of r carrying passthrough cells.
func (r PricingRecord) WithExtra(cells []string) PricingRecord {
	r.extra = append([]string(nil), cells...)
	return r
}

func (k RecordKey) String() string {
	return k.RoomID + " | " + k.DateRange + " | " + k.Price
}
