package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/metrics"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

type availabilityService struct {
	books    ports.BookRepository
	txns     ports.TransactionRepository
	syncLogs ports.SyncLogRepository
	clock    ports.Clock
	log      zerolog.Logger
}

// NewAvailabilityService returns an AvailabilityService implementation.
func NewAvailabilityService(
	books ports.BookRepository,
	txns ports.TransactionRepository,
	syncLogs ports.SyncLogRepository,
	clock ports.Clock,
	log zerolog.Logger,
) ports.AvailabilityService {
	return &availabilityService{books: books, txns: txns, syncLogs: syncLogs, clock: clock, log: log}
}

// RunAvailabilitySync reconciles every book's availability flag with the open
// transactions. Open transactions are loaded once and indexed by book id, so
// the pass costs one query plus one conditional write per drifted book. Every
// run appends exactly one sync log entry; per-book store failures are counted
// and the pass continues. Applied corrections are not rolled back on a later
// failure; rerunning converges.
func (s *availabilityService) RunAvailabilitySync(ctx context.Context) (*ports.SyncReport, error) {
	metrics.AvailabilitySyncsTotal.Inc()

	open, err := s.txns.FindOpen(ctx)
	if err != nil {
		s.appendLog(ctx, domain.SyncStatusError, "availability sync failed", nil, err)
		return nil, fmt.Errorf("availability sync: %w", err)
	}
	openByBook := make(map[string]struct{}, len(open))
	for _, txn := range open {
		openByBook[txn.BookID] = struct{}{}
	}

	books, err := s.books.FindAll(ctx)
	if err != nil {
		s.appendLog(ctx, domain.SyncStatusError, "availability sync failed", nil, err)
		return nil, fmt.Errorf("availability sync: %w", err)
	}

	report := &ports.SyncReport{BooksSeen: len(books), UpdatedTitles: []string{}}
	for _, book := range books {
		_, hasOpen := openByBook[book.ID]
		shouldBeAvailable := !hasOpen
		if book.IsAvailable == shouldBeAvailable {
			continue
		}

		// Conditional on the observed value: a concurrent issue or return
		// between read and write just means this book is re-evaluated next
		// cycle.
		flipped, err := s.books.SetAvailability(ctx, book.ID, book.IsAvailable, shouldBeAvailable)
		if err != nil {
			report.Failed++
			s.log.Error().Err(err).Str("book_id", book.ID).Msg("availability sync: write failed")
			continue
		}
		if !flipped {
			s.log.Debug().Str("book_id", book.ID).Msg("availability sync: book changed concurrently, skipped")
			continue
		}

		report.Changes = append(report.Changes, ports.AvailabilityChange{
			BookID:    book.ID,
			Title:     book.Title,
			Available: shouldBeAvailable,
		})
		report.UpdatedTitles = append(report.UpdatedTitles, book.Title)
		s.log.Info().Str("title", book.Title).Bool("available", shouldBeAvailable).Msg("book availability synced")
	}

	metrics.AvailabilityChangesTotal.Add(float64(len(report.Changes)))
	if report.Failed > 0 {
		// Applied corrections stay applied, but a pass with failed writes is
		// recorded as an error so the audit trail reflects the partial run.
		s.appendLog(ctx, domain.SyncStatusError, "book availability sync completed with failures",
			report.UpdatedTitles, fmt.Errorf("%d book update(s) failed", report.Failed))
	} else {
		s.appendLog(ctx, domain.SyncStatusSuccess, "book availability sync completed", report.UpdatedTitles, nil)
	}

	s.log.Info().
		Int("books_seen", report.BooksSeen).
		Int("changed", len(report.Changes)).
		Int("failed", report.Failed).
		Msg("availability sync completed")

	return report, nil
}

func (s *availabilityService) appendLog(ctx context.Context, status, message string, titles []string, cause error) {
	entry := &domain.SyncLog{
		Status:       status,
		Message:      message,
		UpdatedBooks: titles,
		CreatedAt:    s.clock.Now(),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if titles == nil {
		entry.UpdatedBooks = []string{}
	}
	if err := s.syncLogs.Append(ctx, entry); err != nil {
		s.log.Error().Err(err).Msg("failed to append sync log entry")
	}
}
