package ports

import (
	"context"
	"time"
)

// OverdueDetail is one row of the overdue report.
type OverdueDetail struct {
	StudentID        string     `json:"student_id"`
	BookTitle        string     `json:"book_title"`
	BookCode         string     `json:"book_code"`
	IssueDate        time.Time  `json:"issue_date"`
	ReturnDate       time.Time  `json:"return_date"`
	GraceEndDate     time.Time  `json:"grace_end_date"`
	ActualReturnDate *time.Time `json:"actual_return_date,omitempty"`
	Returned         bool       `json:"returned"`
	OverdueDays      int        `json:"overdue_days"`
	Penalty          int64      `json:"penalty"`
}

// OverdueMonthlyStat aggregates overdues by issue month.
type OverdueMonthlyStat struct {
	Month               string `json:"month"`
	TotalOverdues       int    `json:"total_overdues"`
	ReturnedWithinGrace int    `json:"returned_within_grace"`
}

// OverdueReport is the admin overdue view.
type OverdueReport struct {
	Details      []OverdueDetail      `json:"overdue_details"`
	MonthlyStats []OverdueMonthlyStat `json:"monthly_stats"`
}

// IssuedMonthlyStat aggregates issue volume by month.
type IssuedMonthlyStat struct {
	Month           string `json:"month"`
	Issued          int    `json:"issued"`
	CurrentlyIssued int    `json:"currently_issued"`
	Returned        int    `json:"returned"`
}

// IssuedStats is the circulation volume report.
type IssuedStats struct {
	TotalIssued     int                 `json:"total_issued"`
	CurrentlyIssued int                 `json:"currently_issued"`
	Returned        int                 `json:"returned"`
	Monthly         []IssuedMonthlyStat `json:"monthly_data"`
}

// IssueEvent is one row of the flat issue-history feed.
type IssueEvent struct {
	StudentID        string     `json:"student_id"`
	BookTitle        string     `json:"book_title"`
	BookCode         string     `json:"book_code"`
	IssueDate        time.Time  `json:"issue_date"`
	ReturnDate       time.Time  `json:"return_date"`
	GraceEndDate     time.Time  `json:"grace_end_date"`
	ActualReturnDate *time.Time `json:"actual_return_date,omitempty"`
	Returned         bool       `json:"returned"`
}

// MostIssuedEntry counts issues of one title within a month.
type MostIssuedEntry struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// ReportService derives read-only reports from the authoritative
// transactions. Every overdue figure flows through the one overdue engine.
type ReportService interface {
	OverdueReport(ctx context.Context) (*OverdueReport, error)
	IssuedStats(ctx context.Context) (*IssuedStats, error)
	IssueHistory(ctx context.Context) ([]IssueEvent, error)
	MostIssuedMonthly(ctx context.Context) (map[string][]MostIssuedEntry, error)
}
