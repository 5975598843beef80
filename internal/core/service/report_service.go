package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

const monthDisplayFormat = "Jan 2006"

// monthOf truncates a timestamp to the first instant of its month, giving a
// key that sorts chronologically. Formatting happens only on output.
func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

type reportService struct {
	txns   ports.TransactionRepository
	clock  ports.Clock
	policy domain.OverduePolicy
	log    zerolog.Logger
}

// NewReportService returns a ReportService implementation. Reports read the
// authoritative transactions only; every overdue figure comes from the same
// engine the sweep uses.
func NewReportService(txns ports.TransactionRepository, clock ports.Clock, policy domain.OverduePolicy, log zerolog.Logger) ports.ReportService {
	return &reportService{txns: txns, clock: clock, policy: policy, log: log}
}

// OverdueReport lists every loan that is overdue right now or was returned
// late, with per-issue-month aggregates.
func (s *reportService) OverdueReport(ctx context.Context) (*ports.OverdueReport, error) {
	txns, err := s.txns.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("overdue report: %w", err)
	}

	now := s.clock.Now()
	report := &ports.OverdueReport{Details: []ports.OverdueDetail{}}
	monthly := make(map[time.Time]*ports.OverdueMonthlyStat)

	for _, txn := range txns {
		assessment, err := domain.EvaluateOverdue(txn.IssueRecord(), s.policy, now)
		if err != nil {
			s.log.Warn().Err(err).Str("transaction_id", txn.TransactionID).Msg("overdue report: record skipped")
			continue
		}
		if !assessment.IsOverdue {
			continue
		}

		month := monthOf(txn.IssueDate)
		stat, ok := monthly[month]
		if !ok {
			stat = &ports.OverdueMonthlyStat{Month: month.Format(monthDisplayFormat)}
			monthly[month] = stat
		}
		stat.TotalOverdues++
		if txn.Returned && assessment.Penalty == 0 {
			stat.ReturnedWithinGrace++
		}

		report.Details = append(report.Details, ports.OverdueDetail{
			StudentID:        txn.StudentID,
			BookTitle:        txn.BookTitle,
			BookCode:         txn.BookCode,
			IssueDate:        txn.IssueDate,
			ReturnDate:       txn.ReturnDate,
			GraceEndDate:     txn.GraceEndDate,
			ActualReturnDate: txn.ActualReturnDate,
			Returned:         txn.Returned,
			OverdueDays:      assessment.OverdueDays,
			Penalty:          assessment.Penalty,
		})
	}

	report.MonthlyStats = sortedMonthlyOverdues(monthly)
	return report, nil
}

// IssuedStats reports circulation volume, total and per issue month.
func (s *reportService) IssuedStats(ctx context.Context) (*ports.IssuedStats, error) {
	txns, err := s.txns.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("issued stats: %w", err)
	}

	stats := &ports.IssuedStats{TotalIssued: len(txns)}
	monthly := make(map[time.Time]*ports.IssuedMonthlyStat)

	for _, txn := range txns {
		month := monthOf(txn.IssueDate)
		stat, ok := monthly[month]
		if !ok {
			stat = &ports.IssuedMonthlyStat{Month: month.Format(monthDisplayFormat)}
			monthly[month] = stat
		}
		stat.Issued++
		if txn.Returned {
			stats.Returned++
			stat.Returned++
		} else {
			stats.CurrentlyIssued++
			stat.CurrentlyIssued++
		}
	}

	stats.Monthly = make([]ports.IssuedMonthlyStat, 0, len(monthly))
	for _, month := range sortedMonths(monthly) {
		stats.Monthly = append(stats.Monthly, *monthly[month])
	}

	return stats, nil
}

// IssueHistory is the flat feed of all issue events.
func (s *reportService) IssueHistory(ctx context.Context) ([]ports.IssueEvent, error) {
	txns, err := s.txns.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("issue history: %w", err)
	}

	events := make([]ports.IssueEvent, 0, len(txns))
	for _, txn := range txns {
		events = append(events, ports.IssueEvent{
			StudentID:        txn.StudentID,
			BookTitle:        txn.BookTitle,
			BookCode:         txn.BookCode,
			IssueDate:        txn.IssueDate,
			ReturnDate:       txn.ReturnDate,
			GraceEndDate:     txn.GraceEndDate,
			ActualReturnDate: txn.ActualReturnDate,
			Returned:         txn.Returned,
		})
	}
	return events, nil
}

// MostIssuedMonthly ranks titles by issue count within each month.
func (s *reportService) MostIssuedMonthly(ctx context.Context) (map[string][]ports.MostIssuedEntry, error) {
	txns, err := s.txns.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("most issued: %w", err)
	}

	counts := make(map[string]map[string]int)
	for _, txn := range txns {
		month := txn.IssueDate.Format(monthDisplayFormat)
		if counts[month] == nil {
			counts[month] = make(map[string]int)
		}
		counts[month][txn.BookTitle]++
	}

	out := make(map[string][]ports.MostIssuedEntry, len(counts))
	for month, titles := range counts {
		entries := make([]ports.MostIssuedEntry, 0, len(titles))
		for title, n := range titles {
			entries = append(entries, ports.MostIssuedEntry{Title: title, Count: n})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Count != entries[j].Count {
				return entries[i].Count > entries[j].Count
			}
			return entries[i].Title < entries[j].Title
		})
		out[month] = entries
	}
	return out, nil
}

func sortedMonthlyOverdues(monthly map[time.Time]*ports.OverdueMonthlyStat) []ports.OverdueMonthlyStat {
	out := make([]ports.OverdueMonthlyStat, 0, len(monthly))
	for _, month := range sortedMonths(monthly) {
		out = append(out, *monthly[month])
	}
	return out
}

func sortedMonths[V any](monthly map[time.Time]V) []time.Time {
	months := make([]time.Time, 0, len(monthly))
	for month := range monthly {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}
