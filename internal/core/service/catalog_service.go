package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

const importBatchSize = 500

type catalogService struct {
	books ports.BookRepository
	txns  ports.TransactionRepository
	log   zerolog.Logger
}

// NewCatalogService returns a CatalogService implementation.
func NewCatalogService(books ports.BookRepository, txns ports.TransactionRepository, log zerolog.Logger) ports.CatalogService {
	return &catalogService{books: books, txns: txns, log: log}
}

func (s *catalogService) CreateBook(ctx context.Context, input ports.CreateBookInput) (*domain.Book, error) {
	if input.BookCode == "" || input.Title == "" || input.Author == "" || input.Category == "" {
		return nil, fmt.Errorf("%w: book_code, title, author and category are required", domain.ErrValidation)
	}

	book := &domain.Book{
		BookCode:    input.BookCode,
		Title:       input.Title,
		Author:      input.Author,
		Category:    input.Category,
		PdfURL:      input.PdfURL,
		CoverImage:  input.CoverImage,
		IsAvailable: true,
	}

	created, err := s.books.Create(ctx, book)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.log.Info().Str("book_code", created.BookCode).Str("title", created.Title).Msg("book created")
	return created, nil
}

func (s *catalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.books.FindByID(ctx, id)
}

func (s *catalogService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.books.FindAll(ctx)
}

func (s *catalogService) UpdateBook(ctx context.Context, id string, input ports.UpdateBookInput) (*domain.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		book.Title = input.Title
	}
	if input.Author != "" {
		book.Author = input.Author
	}
	if input.Category != "" {
		book.Category = input.Category
	}
	if input.PdfURL != "" {
		book.PdfURL = input.PdfURL
	}
	if input.CoverImage != "" {
		book.CoverImage = input.CoverImage
	}

	if err := s.books.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// DeleteBook removes a catalog entry. A book with an open transaction cannot
// be deleted; the caller must return it first.
func (s *catalogService) DeleteBook(ctx context.Context, id string) error {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return err
	}

	open, err := s.txns.FindOpen(ctx)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	for _, txn := range open {
		if txn.BookID == id {
			return fmt.Errorf("%w: %s", domain.ErrBookIssued, book.Title)
		}
	}

	if err := s.books.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	s.log.Info().Str("book_id", id).Str("title", book.Title).Msg("book deleted")
	return nil
}

// ImportBooks streams books from a CSV or JSON payload. Rows lacking the
// required fields are skipped and counted; inserts go to the store in
// batches so large files never sit fully in memory.
func (s *catalogService) ImportBooks(ctx context.Context, r io.Reader, format string) (*ports.ImportReport, error) {
	report := &ports.ImportReport{}
	batch := make([]*domain.Book, 0, importBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.books.InsertMany(ctx, batch)
		report.Inserted += n
		batch = batch[:0]
		return err
	}

	add := func(b *domain.Book) error {
		if b.BookCode == "" || b.Title == "" || b.Author == "" || b.Category == "" {
			report.Skipped++
			return nil
		}
		b.IsAvailable = true
		batch = append(batch, b)
		if len(batch) == importBatchSize {
			return flush()
		}
		return nil
	}

	switch format {
	case "csv":
		if err := streamBookCSV(r, add); err != nil {
			return nil, err
		}
	case "json":
		if err := streamBookJSON(r, add); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unsupported import format %q", domain.ErrValidation, format)
	}

	if err := flush(); err != nil {
		return nil, fmt.Errorf("import books: %w", err)
	}

	s.log.Info().Int("inserted", report.Inserted).Int("skipped", report.Skipped).Msg("book import completed")
	return report, nil
}

func streamBookCSV(r io.Reader, add func(*domain.Book) error) error {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("%w: cannot read csv header: %v", domain.ErrValidation, err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: malformed csv row: %v", domain.ErrValidation, err)
		}
		book := &domain.Book{
			BookCode:   field(row, "book_code"),
			Title:      field(row, "title"),
			Author:     field(row, "author"),
			Category:   field(row, "category"),
			PdfURL:     field(row, "pdf_url"),
			CoverImage: field(row, "cover_image"),
		}
		if err := add(book); err != nil {
			return err
		}
	}
}

func streamBookJSON(r io.Reader, add func(*domain.Book) error) error {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil { // opening bracket
		return fmt.Errorf("%w: payload is not a json array: %v", domain.ErrValidation, err)
	}
	for dec.More() {
		var book domain.Book
		if err := dec.Decode(&book); err != nil {
			return fmt.Errorf("%w: malformed json entry: %v", domain.ErrValidation, err)
		}
		book.ID = ""
		if err := add(&book); err != nil {
			return err
		}
	}
	return nil
}
