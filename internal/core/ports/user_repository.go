package ports

import (
	"context"
	"time"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

// UserRepository defines persistence operations for library members.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByStudentID(ctx context.Context, studentID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	// AppendIssue pushes a history entry, adds the book to the current set
	// and bumps the issued counter in one update.
	AppendIssue(ctx context.Context, userID string, rec domain.IssueRecord) error
	// CompleteIssue marks the matching history entry returned and pulls the
	// book from the current set in one update.
	CompleteIssue(ctx context.Context, userID, transactionID, bookID string, returnedAt time.Time) error
	// ReplaceHistory persists reconciled derived state: the full history
	// slice and the aggregate penalty. Non-derived fields are untouched.
	ReplaceHistory(ctx context.Context, userID string, history []domain.IssueRecord, penalty int64) error
	// ReplaceProjection rewrites the whole user-side projection from the
	// authoritative transactions.
	ReplaceProjection(ctx context.Context, userID string, history []domain.IssueRecord, current []string, total int, penalty int64) error
	UpdateDetails(ctx context.Context, id, name, email string) error
	SetRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
	InsertMany(ctx context.Context, users []*domain.User) (int, error)
	Count(ctx context.Context) (int64, error)
}
