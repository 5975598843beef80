package ports

import (
	"context"
	"io"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

// CreateBookInput carries the data for a new catalog entry.
type CreateBookInput struct {
	BookCode   string
	Title      string
	Author     string
	Category   string
	PdfURL     string
	CoverImage string
}

// UpdateBookInput carries the mutable bibliographic fields.
type UpdateBookInput struct {
	Title      string
	Author     string
	Category   string
	PdfURL     string
	CoverImage string
}

// ImportReport summarises one bulk import run.
type ImportReport struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// CatalogService covers book CRUD and bulk import.
type CatalogService interface {
	CreateBook(ctx context.Context, input CreateBookInput) (*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, id string, input UpdateBookInput) (*domain.Book, error)
	// DeleteBook refuses while an open transaction references the book.
	DeleteBook(ctx context.Context, id string) error
	// ImportBooks streams a CSV or JSON payload; format is the lowercased
	// file extension ("csv" or "json"). Rows missing required fields are
	// skipped and counted.
	ImportBooks(ctx context.Context, r io.Reader, format string) (*ImportReport, error)
}
