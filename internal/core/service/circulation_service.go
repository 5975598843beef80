package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/metrics"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

type circulationService struct {
	books    ports.BookRepository
	users    ports.UserRepository
	txns     ports.TransactionRepository
	locker   ports.BookLocker
	clock    ports.Clock
	policy   domain.OverduePolicy
	loanDays int
	log      zerolog.Logger
}

// NewCirculationService returns a CirculationService implementation.
// loanDays is the default loan period applied when an issue request carries
// no due date.
func NewCirculationService(
	books ports.BookRepository,
	users ports.UserRepository,
	txns ports.TransactionRepository,
	locker ports.BookLocker,
	clock ports.Clock,
	policy domain.OverduePolicy,
	loanDays int,
	log zerolog.Logger,
) ports.CirculationService {
	return &circulationService{
		books:    books,
		users:    users,
		txns:     txns,
		locker:   locker,
		clock:    clock,
		policy:   policy,
		loanDays: loanDays,
		log:      log,
	}
}

// Issue lends a book to a student. The availability check and the flag flip
// run as one conditional write, guarded by a short per-book lease, so two
// racing issue calls on the same book cannot both succeed: the loser gets
// ErrBookUnavailable.
func (s *circulationService) Issue(ctx context.Context, input ports.IssueInput) (*domain.Transaction, error) {
	user, err := s.users.FindByStudentID(ctx, input.StudentID)
	if err != nil {
		return nil, fmt.Errorf("issue: %w", err)
	}
	book, err := s.books.FindByID(ctx, input.BookID)
	if err != nil {
		return nil, fmt.Errorf("issue: %w", err)
	}

	now := s.clock.Now()
	returnDate := input.ReturnDate
	if returnDate.IsZero() {
		returnDate = now.AddDate(0, 0, s.loanDays)
	}
	if returnDate.Before(now) {
		return nil, fmt.Errorf("%w: due date is in the past", domain.ErrValidation)
	}

	acquired, err := s.locker.Acquire(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("issue: acquire book lease: %w", err)
	}
	if !acquired {
		metrics.IssueConflictsTotal.Inc()
		return nil, domain.ErrBookUnavailable
	}
	defer s.locker.Release(ctx, book.ID)

	// Authoritative check-and-act: flip only if still available.
	flipped, err := s.books.SetAvailability(ctx, book.ID, true, false)
	if err != nil {
		return nil, fmt.Errorf("issue: %w", err)
	}
	if !flipped {
		metrics.IssueConflictsTotal.Inc()
		return nil, domain.ErrBookUnavailable
	}

	txn := &domain.Transaction{
		TransactionID: domain.NewTransactionID(),
		UserID:        user.ID,
		StudentID:     user.StudentID,
		BookID:        book.ID,
		BookCode:      book.BookCode,
		BookTitle:     book.Title,
		IssueDate:     now,
		ReturnDate:    returnDate,
		GraceEndDate:  s.policy.GraceEnd(returnDate),
	}

	if err := s.txns.Insert(ctx, txn); err != nil {
		// Undo the flag flip so the book is not stranded unavailable.
		if _, undoErr := s.books.SetAvailability(ctx, book.ID, false, true); undoErr != nil {
			s.log.Error().Err(undoErr).Str("book_id", book.ID).Msg("failed to undo availability flip")
		}
		return nil, fmt.Errorf("issue: %w", err)
	}

	rec := txn.IssueRecord()
	rec.Author = book.Author
	rec.Category = book.Category
	if err := s.users.AppendIssue(ctx, user.ID, rec); err != nil {
		// The transaction is the source of truth; the user projection is
		// repaired by RebuildHistory or the next sweep.
		s.log.Error().Err(err).
			Str("transaction_id", txn.TransactionID).
			Str("user_id", user.ID).
			Msg("user history update failed after issue")
	}

	metrics.IssuesTotal.Inc()
	s.log.Info().
		Str("transaction_id", txn.TransactionID).
		Str("student_id", user.StudentID).
		Str("book_code", book.BookCode).
		Time("return_date", returnDate).
		Msg("book issued")

	return txn, nil
}

// Return closes an open transaction and releases the book. ISSUED -> RETURNED
// is terminal; returning an already-closed transaction yields
// ErrTransactionNotFound.
func (s *circulationService) Return(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	now := s.clock.Now()

	txn, err := s.txns.MarkReturned(ctx, transactionID, now)
	if err != nil {
		return nil, fmt.Errorf("return: %w", err)
	}

	if err := s.users.CompleteIssue(ctx, txn.UserID, txn.TransactionID, txn.BookID, now); err != nil {
		s.log.Error().Err(err).
			Str("transaction_id", txn.TransactionID).
			Str("user_id", txn.UserID).
			Msg("user history update failed after return")
	}

	flipped, err := s.books.SetAvailability(ctx, txn.BookID, false, true)
	if err != nil {
		s.log.Error().Err(err).Str("book_id", txn.BookID).Msg("availability flip failed after return")
	} else if !flipped {
		// Flag already true: drift the availability sync would have fixed.
		s.log.Warn().Str("book_id", txn.BookID).Msg("book was already marked available on return")
	}

	metrics.ReturnsTotal.Inc()
	s.log.Info().
		Str("transaction_id", txn.TransactionID).
		Str("book_id", txn.BookID).
		Msg("book returned")

	return txn, nil
}

func (s *circulationService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.txns.FindByTransactionID(ctx, transactionID)
}

func (s *circulationService) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	return s.txns.FindAll(ctx)
}

// Verify resolves a prefixed identifier to its record: TXN- for transactions,
// STU for student ids, BOOK for book codes.
func (s *circulationService) Verify(ctx context.Context, query string) (*ports.VerifyResult, error) {
	switch {
	case strings.HasPrefix(query, "TXN"):
		txn, err := s.txns.FindByTransactionID(ctx, query)
		if err != nil {
			return nil, err
		}
		return &ports.VerifyResult{Type: "transaction", ID: query, Transaction: txn}, nil
	case strings.HasPrefix(query, "STU"):
		user, err := s.users.FindByStudentID(ctx, query)
		if err != nil {
			return nil, err
		}
		return &ports.VerifyResult{Type: "student", ID: query, User: user}, nil
	case strings.HasPrefix(query, "BOOK"):
		book, err := s.books.FindByCode(ctx, query)
		if err != nil {
			return nil, err
		}
		return &ports.VerifyResult{Type: "book", ID: query, Book: book}, nil
	}
	return nil, fmt.Errorf("%w: query must start with TXN, STU or BOOK", domain.ErrValidation)
}
