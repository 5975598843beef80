package ports

import (
	"context"
	"time"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

// BookLocker serialises concurrent issue attempts on the same book.
type BookLocker interface {
	// Acquire takes a short-lived lease on the book id. It reports false
	// when another issue attempt currently holds the lease.
	Acquire(ctx context.Context, bookID string) (bool, error)
	Release(ctx context.Context, bookID string)
}

// IssueInput carries the data needed to issue a book to a student.
type IssueInput struct {
	StudentID string
	BookID    string
	// ReturnDate is the due date. Zero means "apply the default loan
	// period".
	ReturnDate time.Time
}

// VerifyResult resolves a prefixed lookup query (TXN-/STU-/BOOK-).
type VerifyResult struct {
	Type        string              `json:"type"`
	ID          string              `json:"id"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	User        *domain.User        `json:"user,omitempty"`
	Book        *domain.Book        `json:"book,omitempty"`
}

// CirculationService covers the issue/return lifecycle.
type CirculationService interface {
	Issue(ctx context.Context, input IssueInput) (*domain.Transaction, error)
	Return(ctx context.Context, transactionID string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context) ([]*domain.Transaction, error)
	Verify(ctx context.Context, query string) (*VerifyResult, error)
}
