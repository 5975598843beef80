package ports

import (
	"context"
	"time"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

// TransactionRepository defines persistence operations for the authoritative
// issue records.
type TransactionRepository interface {
	Insert(ctx context.Context, t *domain.Transaction) error
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	FindAll(ctx context.Context) ([]*domain.Transaction, error)
	// FindOpen returns every unreturned transaction in one query, so callers
	// can index by book id instead of probing per book.
	FindOpen(ctx context.Context) ([]*domain.Transaction, error)
	FindByUser(ctx context.Context, userID string) ([]*domain.Transaction, error)
	// MarkReturned closes an open transaction. The update is conditional on
	// returned being false; a missing or already-closed transaction yields
	// ErrTransactionNotFound.
	MarkReturned(ctx context.Context, transactionID string, at time.Time) (*domain.Transaction, error)
	// MarkAllReturnedForUser force-closes every open transaction of a user.
	MarkAllReturnedForUser(ctx context.Context, userID string, at time.Time) (int64, error)
}

// SyncLogRepository is the append-only audit sink for reconciliation runs.
type SyncLogRepository interface {
	Append(ctx context.Context, entry *domain.SyncLog) error
	FindRecent(ctx context.Context, limit int64) ([]*domain.SyncLog, error)
}
