package ports

import (
	"context"
	"io"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

// AdminStats is the totals view for the admin dashboard.
type AdminStats struct {
	TotalUsers int64 `json:"total_users"`
	TotalBooks int64 `json:"total_books"`
}

// AdminService covers administrative user management. Removing or promoting
// a user force-returns their open books first, so no open transaction is ever
// left pointing at a deleted or admin account.
type AdminService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUserDetails(ctx context.Context, id, name, email string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	PromoteUser(ctx context.Context, id string) (*domain.User, error)
	Stats(ctx context.Context) (*AdminStats, error)
	// ImportUsers streams a CSV or JSON payload of accounts; passwords are
	// hashed on the way in, rows missing required fields are skipped.
	ImportUsers(ctx context.Context, r io.Reader, format string) (*ImportReport, error)
	RecentSyncLogs(ctx context.Context, limit int64) ([]*domain.SyncLog, error)
}
