package ports

import (
	"context"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

// AvailabilityChange is one correction emitted by the availability sync.
type AvailabilityChange struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title"`
	Available bool   `json:"available"`
}

// SyncReport summarises one availability reconciliation pass.
type SyncReport struct {
	BooksSeen     int                  `json:"books_seen"`
	Changes       []AvailabilityChange `json:"changes"`
	UpdatedTitles []string             `json:"updated_books"`
	Failed        int                  `json:"failed"`
}

// SweepReport summarises one overdue sweep across all users.
type SweepReport struct {
	UsersSeen    int   `json:"users_seen"`
	UsersUpdated int   `json:"users_updated"`
	Failed       int   `json:"failed"`
	TotalPenalty int64 `json:"total_penalty"`
}

// UserSummary is the compute-on-read view of a user's borrowing state.
// Nothing is persisted when building it.
type UserSummary struct {
	User            *domain.User         `json:"user"`
	History         []domain.IssueRecord `json:"issue_history"`
	TotalIssued     int                  `json:"total_issued_books"`
	CurrentlyIssued int                  `json:"currently_issued"`
	OverdueCount    int                  `json:"overdue"`
	TotalPenalty    int64                `json:"total_penalty"`
}

// AvailabilityService reconciles book availability with open transactions.
// RunAvailabilitySync is the entry point the external scheduler calls; it is
// also exposed to admins for manual runs.
type AvailabilityService interface {
	RunAvailabilitySync(ctx context.Context) (*SyncReport, error)
}

// OverdueService derives overdue state and penalties from issue records.
type OverdueService interface {
	// UserSummary reconciles one user's history on the fly, without
	// persisting.
	UserSummary(ctx context.Context, userID string) (*UserSummary, error)
	// RunOverdueSweep reconciles every user and persists only those whose
	// derived state drifted.
	RunOverdueSweep(ctx context.Context) (*SweepReport, error)
	// RebuildHistory re-projects a user's history and current set from the
	// authoritative transactions.
	RebuildHistory(ctx context.Context, userID string) (*domain.User, error)
}
