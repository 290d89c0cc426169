package models

import "math"

// ProgressSnapshot is derived from the ledger on demand.
type ProgressSnapshot struct {
	Total           int     `json:"total"`
	Completed       int     `json:"completed"`
	Pending         int     `json:"pending"`
	PercentComplete float64 `json:"percent_complete"`
}

func NewProgressSnapshot(total, completed int) ProgressSnapshot {
	p := ProgressSnapshot{
		Total:     total,
		Completed: completed,
		Pending:   total - completed,
	}
	if total > 0 {
		p.PercentComplete = math.Round(float64(completed)/float64(total)*10000) / 100
	}
	return p
}
