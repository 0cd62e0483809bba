// Package history persists deploy records so past runs can be inspected.
package history

import (
	"context"
	"time"
)

// Outcome is the final status of a deploy run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomePartial  Outcome = "partial"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Record is one deploy run.
type Record struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Environment string
	Host        string
	RemoteDir   string
	Commit      string
	Dirty       bool
	Uploaded    int
	Deleted     int
	Skipped     int
	Failed      int
	Bytes       int64
	Outcome     Outcome
	Error       string
}

// Duration returns the wall-clock time of the run.
func (r *Record) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store defines the interface for persisting and retrieving deploy records.
type Store interface {
	// Append adds a finished deploy record.
	Append(ctx context.Context, rec Record) error

	// Recent returns up to n records, newest first.
	Recent(ctx context.Context, n int) ([]Record, error)

	// Last returns the most recent record, or nil when history is empty.
	Last(ctx context.Context) (*Record, error)

	// Close closes the store and releases resources.
	Close() error
}
