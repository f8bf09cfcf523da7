// Package submission defines the lifecycle state machine for one
// resume-upload-to-email run.
//
// Valid status graph:
//
//	PENDING ──► PARSING ──► AWAITING_REVIEW ──► SCRAPING ──► SCORING ──► SENDING ──► COMPLETE
//	    │           │               │               │            │           │
//	    └───────────┴───────────────┴───────────────┴────────────┴───────────┴──► FAILED
//
//	FAILED ──► SCRAPING   (user retry with the accepted profile)
//	FAILED ──► PARSING    (resume re-upload after a parse failure)
//
// COMPLETE is terminal. FAILED is terminal except for the two retry
// transitions.
package submission

import "fmt"

type Status string

const (
	StatusPending        Status = "PENDING"
	StatusParsing        Status = "PARSING"
	StatusAwaitingReview Status = "AWAITING_REVIEW"
	StatusScraping       Status = "SCRAPING"
	StatusScoring        Status = "SCORING"
	StatusSending        Status = "SENDING"
	StatusComplete       Status = "COMPLETE"
	StatusFailed         Status = "FAILED"
)

// ErrCancelledByUser is the error string recorded on user cancellation.
const ErrCancelledByUser = "Cancelled by user"

// validTransitions lists every allowed (from → to) pair. Any
// non-terminal state may additionally move to FAILED (cancellation or
// collaborator failure), handled in CanTransition rather than listed
// per state.
var validTransitions = map[Status][]Status{
	StatusPending:        {StatusParsing},
	StatusParsing:        {StatusAwaitingReview},
	StatusAwaitingReview: {StatusScraping},
	StatusScraping:       {StatusScoring},
	StatusScoring:        {StatusSending},
	StatusSending:        {StatusComplete},
	StatusFailed:         {StatusScraping, StatusParsing}, // retry, not a reset
}

// ParseStatus converts a raw string to a Status, rejecting unknown
// values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusParsing, StatusAwaitingReview, StatusScraping,
		StatusScoring, StatusSending, StatusComplete, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown submission status %q", s)
}

// IsTerminal reports whether no further progress is possible. FAILED
// still allows the retry transition but counts as terminal for result
// writes: progress reported against a FAILED submission is a no-op.
func IsTerminal(s Status) bool {
	return s == StatusComplete || s == StatusFailed
}

// CanTransition reports whether moving from → to is permitted.
func CanTransition(from, to Status) bool {
	if to == StatusFailed {
		// Cancellation and collaborator failure fire from any
		// non-terminal state.
		return !IsTerminal(from)
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanStartScrape gates the trigger transition: only a reviewed profile
// or a failed run may (re)start scraping.
func CanStartScrape(from Status) bool {
	return from == StatusAwaitingReview || from == StatusFailed
}
