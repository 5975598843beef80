package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
	"github.com/omSolanki30/Smart-E-Lib-backend/pkg/clock"
)

var sweepPolicy = domain.OverduePolicy{GraceDays: 4, DailyRate: 50}

// issueRecordAt builds a history entry issued at the given time with a 14-day
// loan and the standard grace window.
func issueRecordAt(txnID, bookID string, issued time.Time) domain.IssueRecord {
	return domain.IssueRecord{
		TransactionID: txnID,
		BookID:        bookID,
		BookCode:      "BOOK-" + bookID,
		BookTitle:     "Title " + bookID,
		IssueDate:     issued,
		ReturnDate:    issued.AddDate(0, 0, 14),
		GraceEndDate:  issued.AddDate(0, 0, 18),
	}
}

// ---------------------------------------------------------------------------
// UserSummary
// ---------------------------------------------------------------------------

func TestOverdue_UserSummary_ComputesWithoutPersisting(t *testing.T) {
	users := newStubUserRepo()
	txns := newStubTxnRepo()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := NewOverdueService(users, txns, clock.NewFixed(now), sweepPolicy, discardLogger)

	u := seedUser(users, "user-1", "STU001")
	// 24 days old: 14-day loan + 4 grace leaves 6 billable days.
	u.IssueHistory = []domain.IssueRecord{issueRecordAt("TXN-1", "book-1", now.AddDate(0, 0, -24))}
	u.CurrentIssuedBooks = []string{"book-1"}
	u.TotalIssuedBooks = 1

	summary, err := svc.UserSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.OverdueCount != 1 {
		t.Errorf("overdue count: want 1, got %d", summary.OverdueCount)
	}
	if summary.TotalPenalty != 6*50 {
		t.Errorf("total penalty: want 300, got %d", summary.TotalPenalty)
	}
	if summary.History[0].OverdueDays != 6 {
		t.Errorf("overdue days: want 6, got %d", summary.History[0].OverdueDays)
	}
	if summary.CurrentlyIssued != 1 || summary.TotalIssued != 1 {
		t.Errorf("counters wrong: %+v", summary)
	}

	// The read must not write anything back.
	stored, _ := users.FindByID(context.Background(), "user-1")
	if stored.IssueHistory[0].Penalty != 0 || stored.Penalty != 0 {
		t.Error("summary must not persist derived state")
	}
	if len(users.replacedHistory) != 0 {
		t.Error("summary must not call ReplaceHistory")
	}
}

func TestOverdue_UserSummary_UnknownUser(t *testing.T) {
	svc := NewOverdueService(newStubUserRepo(), newStubTxnRepo(), clock.NewFixed(time.Now()), sweepPolicy, discardLogger)

	if _, err := svc.UserSummary(context.Background(), "user-404"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// RunOverdueSweep
// ---------------------------------------------------------------------------

func TestOverdue_Sweep_PersistsOnlyDriftedUsers(t *testing.T) {
	users := newStubUserRepo()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := NewOverdueService(users, newStubTxnRepo(), clock.NewFixed(now), sweepPolicy, discardLogger)

	// user-1 has a loan 20 days old: 2 billable days, stored fields stale.
	drifted := seedUser(users, "user-1", "STU001")
	drifted.IssueHistory = []domain.IssueRecord{issueRecordAt("TXN-1", "book-1", now.AddDate(0, 0, -20))}

	// user-2 is fully reconciled already.
	settled := seedUser(users, "user-2", "STU002")
	rec := issueRecordAt("TXN-2", "book-2", now.AddDate(0, 0, -20))
	res := domain.ReconcileHistory([]domain.IssueRecord{rec}, sweepPolicy, now)
	settled.IssueHistory = res.History
	settled.Penalty = res.TotalPenalty

	// user-3 has no history at all.
	seedUser(users, "user-3", "STU003")

	report, err := svc.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.UsersSeen != 3 {
		t.Errorf("users seen: want 3, got %d", report.UsersSeen)
	}
	if report.UsersUpdated != 1 {
		t.Errorf("users updated: want 1, got %d", report.UsersUpdated)
	}
	if len(users.replacedHistory) != 1 || users.replacedHistory[0] != "user-1" {
		t.Errorf("only user-1 must be persisted, got %v", users.replacedHistory)
	}
	if report.TotalPenalty != 2*2*50 {
		t.Errorf("total penalty across users: want 200, got %d", report.TotalPenalty)
	}

	stored, _ := users.FindByID(context.Background(), "user-1")
	if stored.Penalty != 100 || stored.IssueHistory[0].OverdueDays != 2 {
		t.Errorf("user-1 not reconciled: penalty=%d history=%+v", stored.Penalty, stored.IssueHistory[0])
	}
}

func TestOverdue_Sweep_Rerun_IsFixedPoint(t *testing.T) {
	users := newStubUserRepo()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := NewOverdueService(users, newStubTxnRepo(), clock.NewFixed(now), sweepPolicy, discardLogger)

	u := seedUser(users, "user-1", "STU001")
	u.IssueHistory = []domain.IssueRecord{issueRecordAt("TXN-1", "book-1", now.AddDate(0, 0, -20))}

	first, err := svc.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	second, err := svc.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	if first.UsersUpdated != 1 || second.UsersUpdated != 0 {
		t.Errorf("updates: want 1 then 0, got %d then %d", first.UsersUpdated, second.UsersUpdated)
	}
	if first.TotalPenalty != second.TotalPenalty {
		t.Errorf("penalty drifted across sweeps: %d vs %d", first.TotalPenalty, second.TotalPenalty)
	}
}

func TestOverdue_Sweep_PersistFailureCountedAndSweepContinues(t *testing.T) {
	users := newStubUserRepo()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := NewOverdueService(users, newStubTxnRepo(), clock.NewFixed(now), sweepPolicy, discardLogger)

	u1 := seedUser(users, "user-1", "STU001")
	u1.IssueHistory = []domain.IssueRecord{issueRecordAt("TXN-1", "book-1", now.AddDate(0, 0, -20))}
	u2 := seedUser(users, "user-2", "STU002")
	u2.IssueHistory = []domain.IssueRecord{issueRecordAt("TXN-2", "book-2", now.AddDate(0, 0, -20))}

	users.replaceHistoryErr["user-1"] = errors.New("write timeout")

	report, err := svc.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("a per-user failure must not abort the sweep: %v", err)
	}
	if report.Failed != 1 {
		t.Errorf("failed: want 1, got %d", report.Failed)
	}
	if report.UsersUpdated != 1 {
		t.Errorf("user-2 must still be persisted, got %d updates", report.UsersUpdated)
	}
}

// ---------------------------------------------------------------------------
// RebuildHistory
// ---------------------------------------------------------------------------

func TestOverdue_RebuildHistory_ReprojectsFromTransactions(t *testing.T) {
	users := newStubUserRepo()
	txns := newStubTxnRepo()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := NewOverdueService(users, txns, clock.NewFixed(now), sweepPolicy, discardLogger)

	// The stored projection is garbage; the transactions are the truth.
	u := seedUser(users, "user-1", "STU001")
	u.IssueHistory = []domain.IssueRecord{issueRecordAt("TXN-stale", "book-9", now)}
	u.CurrentIssuedBooks = []string{"book-9"}
	u.TotalIssuedBooks = 7

	// One closed loan, returned on time.
	closedAt := now.AddDate(0, 0, -30)
	returned := closedAt.AddDate(0, 0, 10)
	txns.byTxnID["TXN-1"] = &domain.Transaction{
		TransactionID:    "TXN-1",
		UserID:           "user-1",
		BookID:           "book-1",
		IssueDate:        closedAt,
		ReturnDate:       closedAt.AddDate(0, 0, 14),
		GraceEndDate:     closedAt.AddDate(0, 0, 18),
		ActualReturnDate: &returned,
		Returned:         true,
	}
	txns.order = append(txns.order, "TXN-1")
	// One open loan, 2 billable days past grace.
	seedOpenTxn(txns, "TXN-2", "user-1", "book-2", now.AddDate(0, 0, -20))

	rebuilt, err := svc.RebuildHistory(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rebuilt.IssueHistory) != 2 {
		t.Fatalf("history: want 2 entries, got %d", len(rebuilt.IssueHistory))
	}
	if rebuilt.IssueHistory[0].TransactionID != "TXN-1" {
		t.Errorf("history must be ordered by issue date, got %s first", rebuilt.IssueHistory[0].TransactionID)
	}
	if rebuilt.TotalIssuedBooks != 2 {
		t.Errorf("total issued: want 2, got %d", rebuilt.TotalIssuedBooks)
	}
	if len(rebuilt.CurrentIssuedBooks) != 1 || rebuilt.CurrentIssuedBooks[0] != "book-2" {
		t.Errorf("current set: want [book-2], got %v", rebuilt.CurrentIssuedBooks)
	}
	if rebuilt.Penalty != 2*50 {
		t.Errorf("penalty: want 100, got %d", rebuilt.Penalty)
	}

	stored, _ := users.FindByID(context.Background(), "user-1")
	if stored.TotalIssuedBooks != 2 || len(stored.IssueHistory) != 2 {
		t.Error("rebuilt projection must be persisted")
	}
}
