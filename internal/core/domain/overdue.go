package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrValidation = errors.New("validation failed")

const day = 24 * time.Hour

// OverduePolicy carries the single configured (grace, rate) pair used by every
// overdue computation in the system.
type OverduePolicy struct {
	// GraceDays is the length of the grace window granted on newly issued
	// books, in days after the due date.
	GraceDays int
	// DailyRate is the currency charged per overdue day beyond the grace
	// window.
	DailyRate int64
}

// GraceEnd returns the grace window end for a given due date.
func (p OverduePolicy) GraceEnd(returnDate time.Time) time.Time {
	return returnDate.Add(time.Duration(p.GraceDays) * day)
}

// Assessment is the overdue verdict for a single issue record.
type Assessment struct {
	IsOverdue   bool
	OverdueDays int
	Penalty     int64
}

// EvaluateOverdue computes the overdue state of one issue record.
//
// Returned records are judged from ActualReturnDate against the record's own
// due and grace dates, so the verdict never changes afterwards. Unreturned
// records are judged against now: past the due date the record is flagged
// overdue immediately, but days and penalty only accrue once the grace window
// has closed. Pure and deterministic; calling it twice with the same inputs
// yields the same Assessment.
func EvaluateOverdue(rec IssueRecord, policy OverduePolicy, now time.Time) (Assessment, error) {
	if rec.ReturnDate.IsZero() || rec.GraceEndDate.IsZero() {
		return Assessment{}, fmt.Errorf("%w: record %s is missing due dates", ErrValidation, rec.TransactionID)
	}
	if rec.GraceEndDate.Before(rec.ReturnDate) {
		return Assessment{}, fmt.Errorf("%w: record %s grace end precedes due date", ErrValidation, rec.TransactionID)
	}

	if rec.Returned {
		if rec.ActualReturnDate == nil {
			return Assessment{}, fmt.Errorf("%w: record %s returned without actual return date", ErrValidation, rec.TransactionID)
		}
		overdueDays := wholeDays(rec.ActualReturnDate.Sub(rec.ReturnDate))
		graceDays := wholeDays(rec.GraceEndDate.Sub(rec.ReturnDate))
		billable := overdueDays - graceDays
		if billable < 0 {
			billable = 0
		}
		return Assessment{
			IsOverdue:   overdueDays > 0,
			OverdueDays: overdueDays,
			Penalty:     int64(billable) * policy.DailyRate,
		}, nil
	}

	if !now.After(rec.ReturnDate) {
		return Assessment{}, nil
	}
	if !now.After(rec.GraceEndDate) {
		// Late but inside the grace window: flagged, nothing billed yet.
		return Assessment{IsOverdue: true}, nil
	}

	overdueDays := wholeDays(now.Sub(rec.GraceEndDate))
	return Assessment{
		IsOverdue:   true,
		OverdueDays: overdueDays,
		Penalty:     int64(overdueDays) * policy.DailyRate,
	}, nil
}

// Apply writes the assessment into the record's derived fields.
func (a Assessment) Apply(rec *IssueRecord) {
	rec.IsOverdue = a.IsOverdue
	rec.OverdueDays = a.OverdueDays
	rec.Penalty = a.Penalty
}

// differsFrom reports whether the stored derived fields deviate from the
// assessment.
func (a Assessment) differsFrom(rec IssueRecord) bool {
	return rec.IsOverdue != a.IsOverdue || rec.OverdueDays != a.OverdueDays || rec.Penalty != a.Penalty
}

// HistoryResult is the outcome of reconciling a user's issue history.
type HistoryResult struct {
	History      []IssueRecord
	TotalPenalty int64
	// Changed is true when any derived field deviated from stored state,
	// signalling the caller to persist.
	Changed bool
}

// ReconcileHistory re-derives the overdue fields of every history entry and
// sums the penalties. Only derived fields are replaced; the input slice is
// left untouched. Entries that cannot be assessed (malformed dates) are
// carried over unchanged and excluded from the total.
func ReconcileHistory(history []IssueRecord, policy OverduePolicy, now time.Time) HistoryResult {
	out := HistoryResult{History: make([]IssueRecord, len(history))}
	for i, rec := range history {
		assessment, err := EvaluateOverdue(rec, policy, now)
		if err != nil {
			out.History[i] = rec
			continue
		}
		if assessment.differsFrom(rec) {
			out.Changed = true
		}
		assessment.Apply(&rec)
		out.History[i] = rec
		out.TotalPenalty += assessment.Penalty
	}
	return out
}

// wholeDays floors a duration to whole days, clamping negatives to zero.
func wholeDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / day)
}
