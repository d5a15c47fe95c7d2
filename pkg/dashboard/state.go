package dashboard

import (
	"time"

	"github.com/Sternrassler/teaching-price-dashboard/pkg/aggregator"
	"github.com/google/uuid"
)

// FailureMessage is the only error text shown to users.
const FailureMessage = "Error occurred while calculating average price"

// Status is the lifecycle position of the latest run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is a published view of the dashboard. Results is never modified after
// publication; a new slice replaces it on every change.
type State struct {
	Status     Status
	Busy       bool
	Error      string
	Results    []aggregator.CategoryAverage
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
}

// Rows renders the results as "category: average" lines.
func (s State) Rows() []string {
	rows := make([]string, 0, len(s.Results))
	for _, r := range s.Results {
		rows = append(rows, r.String())
	}
	return rows
}
