package ports

import (
	"context"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

// BookRepository defines persistence operations for catalog books.
type BookRepository interface {
	Create(ctx context.Context, b *domain.Book) (*domain.Book, error)
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	FindByCode(ctx context.Context, code string) (*domain.Book, error)
	FindAll(ctx context.Context) ([]*domain.Book, error)
	Update(ctx context.Context, b *domain.Book) error
	Delete(ctx context.Context, id string) error
	// SetAvailability flips is_available from the observed value to the new
	// one as a single conditional write. It reports false when the stored
	// flag no longer matches the observed value, which means a concurrent
	// writer got there first.
	SetAvailability(ctx context.Context, id string, observed, available bool) (bool, error)
	SetManyAvailable(ctx context.Context, ids []string, available bool) error
	InsertMany(ctx context.Context, books []*domain.Book) (int, error)
	Count(ctx context.Context) (int64, error)
}
