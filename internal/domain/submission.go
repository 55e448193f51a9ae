package domain

import "time"

// Outcome is the terminal result of a finalize attempt.
type Outcome string

const (
	OutcomeConfirmed   Outcome = "CONFIRMED"
	OutcomeUnconfirmed Outcome = "UNCONFIRMED"
	OutcomeFailed      Outcome = "FAILED"
	OutcomeAborted     Outcome = "ABORTED"
)

// SubmissionEntry is one journaled finalize attempt.
type SubmissionEntry struct {
	ID         string
	Record     LedgerRecord
	Outcome    Outcome
	Message    string
	RecordedAt time.Time
	TTL        int64
}
