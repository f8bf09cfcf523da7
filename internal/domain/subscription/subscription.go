// Package subscription models the recurring digest lifecycle and its
// run cadence.
package subscription

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPaused    Status = "PAUSED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// Cadence between digest runs. Fixed; nextRunAt is always the last run
// (or creation) plus this interval, regardless of run outcome.
const Cadence = 24 * time.Hour

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusActive, StatusPaused, StatusCancelled, StatusExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown subscription status %q", s)
}

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one immutable execution record. JobCount is meaningful only
// for completed runs.
type Run struct {
	CreatedAt time.Time
	Status    RunStatus
	JobCount  int
}

// Subscription is a recurring-digest record.
type Subscription struct {
	ID        uuid.UUID
	Email     string
	Status    Status
	// DurationDays 0 means the subscription never expires.
	DurationDays int
	NextRunAt    time.Time
	LastRunAt    *time.Time
	CreatedAt    time.Time
	Runs         []Run
}

func New(email string, durationDays int, now time.Time) Subscription {
	return Subscription{
		ID:           uuid.New(),
		Email:        email,
		Status:       StatusActive,
		DurationDays: durationDays,
		NextRunAt:    now.Add(Cadence),
		CreatedAt:    now,
	}
}

// NextRun computes the next fire time from the last run, falling back
// to creation time when the subscription has never run.
func (s Subscription) NextRun() time.Time {
	if s.LastRunAt != nil {
		return s.LastRunAt.Add(Cadence)
	}
	return s.CreatedAt.Add(Cadence)
}

// ExpiresAt returns the instant the subscription lapses, or zero time
// for indefinite subscriptions.
func (s Subscription) ExpiresAt() time.Time {
	if s.DurationDays <= 0 {
		return time.Time{}
	}
	return s.CreatedAt.AddDate(0, 0, s.DurationDays)
}

// IsExpired reports whether the subscription has outlived its
// duration. Indefinite (duration 0) subscriptions never expire.
func (s Subscription) IsExpired(now time.Time) bool {
	exp := s.ExpiresAt()
	if exp.IsZero() {
		return false
	}
	return now.After(exp)
}

// Due reports whether a run should fire now. Only ACTIVE,
// non-expired subscriptions are ever due.
func (s Subscription) Due(now time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	if s.IsExpired(now) {
		return false
	}
	return !now.Before(s.NextRunAt)
}

// CanTransition guards lifecycle changes: pause/resume toggle between
// ACTIVE and PAUSED, anything non-terminal may cancel or expire, and
// CANCELLED/EXPIRED are final.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusActive:
		return to == StatusPaused || to == StatusCancelled || to == StatusExpired
	case StatusPaused:
		return to == StatusActive || to == StatusCancelled || to == StatusExpired
	}
	return false
}

// RecordRun appends a run record and advances the cadence clock.
// Failed runs advance it too so a broken scrape does not retry-storm.
func (s *Subscription) RecordRun(status RunStatus, jobCount int, now time.Time) {
	if status != RunCompleted {
		jobCount = 0
	}
	s.Runs = append(s.Runs, Run{CreatedAt: now, Status: status, JobCount: jobCount})
	s.LastRunAt = &now
	s.NextRunAt = now.Add(Cadence)
}
