package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/metrics"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

type overdueService struct {
	users  ports.UserRepository
	txns   ports.TransactionRepository
	clock  ports.Clock
	policy domain.OverduePolicy
	log    zerolog.Logger
}

// NewOverdueService returns an OverdueService implementation.
func NewOverdueService(
	users ports.UserRepository,
	txns ports.TransactionRepository,
	clock ports.Clock,
	policy domain.OverduePolicy,
	log zerolog.Logger,
) ports.OverdueService {
	return &overdueService{users: users, txns: txns, clock: clock, policy: policy, log: log}
}

// UserSummary reconciles one user's history at read time. The stored record
// is never written here; callers see fresh overdue state regardless of when
// the last sweep ran.
func (s *overdueService) UserSummary(ctx context.Context, userID string) (*ports.UserSummary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user summary: %w", err)
	}

	res := domain.ReconcileHistory(user.IssueHistory, s.policy, s.clock.Now())

	overdue := 0
	for _, rec := range res.History {
		if !rec.Returned && rec.IsOverdue {
			overdue++
		}
	}

	return &ports.UserSummary{
		User:            user,
		History:         res.History,
		TotalIssued:     user.TotalIssuedBooks,
		CurrentlyIssued: len(user.CurrentIssuedBooks),
		OverdueCount:    overdue,
		TotalPenalty:    res.TotalPenalty,
	}, nil
}

// RunOverdueSweep reconciles every user's history against one fixed "now" and
// persists only the users whose derived state drifted. A store failure on one
// user is logged and the sweep moves on; rerunning converges to the same end
// state.
func (s *overdueService) RunOverdueSweep(ctx context.Context) (*ports.SweepReport, error) {
	started := s.clock.Now()

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("overdue sweep: %w", err)
	}

	report := &ports.SweepReport{UsersSeen: len(users)}
	for _, user := range users {
		res := domain.ReconcileHistory(user.IssueHistory, s.policy, started)
		report.TotalPenalty += res.TotalPenalty
		if !res.Changed && res.TotalPenalty == user.Penalty {
			continue
		}
		if err := s.users.ReplaceHistory(ctx, user.ID, res.History, res.TotalPenalty); err != nil {
			report.Failed++
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("overdue sweep: persist failed")
			continue
		}
		report.UsersUpdated++
	}

	metrics.OverdueSweepDuration.Observe(time.Since(started).Seconds())
	s.log.Info().
		Int("users_seen", report.UsersSeen).
		Int("users_updated", report.UsersUpdated).
		Int("failed", report.Failed).
		Int64("total_penalty", report.TotalPenalty).
		Msg("overdue sweep completed")

	return report, nil
}

// RebuildHistory re-derives a user's entire projection (history, current set,
// counter, penalty) from the authoritative transactions and persists it.
func (s *overdueService) RebuildHistory(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rebuild history: %w", err)
	}

	txns, err := s.txns.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rebuild history: %w", err)
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].IssueDate.Before(txns[j].IssueDate) })

	history := make([]domain.IssueRecord, 0, len(txns))
	current := make([]string, 0)
	for _, txn := range txns {
		history = append(history, txn.IssueRecord())
		if !txn.Returned {
			current = append(current, txn.BookID)
		}
	}

	res := domain.ReconcileHistory(history, s.policy, s.clock.Now())
	if err := s.users.ReplaceProjection(ctx, userID, res.History, current, len(txns), res.TotalPenalty); err != nil {
		return nil, fmt.Errorf("rebuild history: %w", err)
	}

	user.IssueHistory = res.History
	user.CurrentIssuedBooks = current
	user.TotalIssuedBooks = len(txns)
	user.Penalty = res.TotalPenalty

	s.log.Info().
		Str("user_id", userID).
		Int("transactions", len(txns)).
		Int("open", len(current)).
		Msg("user history rebuilt from transactions")

	return user, nil
}
