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

type adminService struct {
	users ports.UserRepository
	books ports.BookRepository
	txns  ports.TransactionRepository
	logs  ports.SyncLogRepository
	clock ports.Clock
	log   zerolog.Logger
}

// NewAdminService returns an AdminService implementation.
func NewAdminService(
	users ports.UserRepository,
	books ports.BookRepository,
	txns ports.TransactionRepository,
	logs ports.SyncLogRepository,
	clock ports.Clock,
	log zerolog.Logger,
) ports.AdminService {
	return &adminService{users: users, books: books, txns: txns, logs: logs, clock: clock, log: log}
}

func (s *adminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.FindAll(ctx)
}

func (s *adminService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *adminService) UpdateUserDetails(ctx context.Context, id, name, email string) (*domain.User, error) {
	if err := s.users.UpdateDetails(ctx, id, name, email); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// DeleteUser removes an account. Open loans are force-returned first so no
// book stays flagged unavailable for a user that no longer exists.
func (s *adminService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.forceReturnAll(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Str("user_id", id).Str("student_id", user.StudentID).Msg("user deleted")
	return nil
}

// PromoteUser raises a student to admin, force-returning any open loans
// first: admins do not borrow.
func (s *adminService) PromoteUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.forceReturnAll(ctx, user); err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}

	if err := s.users.SetRole(ctx, id, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}

	s.log.Info().Str("user_id", id).Str("student_id", user.StudentID).Msg("user promoted to admin")
	user.Role = domain.RoleAdmin
	user.CurrentIssuedBooks = []string{}
	return user, nil
}

// forceReturnAll closes every open transaction of the user, frees the books
// and clears the user-side current set.
func (s *adminService) forceReturnAll(ctx context.Context, user *domain.User) error {
	if len(user.CurrentIssuedBooks) == 0 {
		return nil
	}

	now := s.clock.Now()
	if err := s.books.SetManyAvailable(ctx, user.CurrentIssuedBooks, true); err != nil {
		return err
	}
	closed, err := s.txns.MarkAllReturnedForUser(ctx, user.ID, now)
	if err != nil {
		return err
	}

	for i := range user.IssueHistory {
		if !user.IssueHistory[i].Returned {
			at := now
			user.IssueHistory[i].Returned = true
			user.IssueHistory[i].ActualReturnDate = &at
		}
	}
	if err := s.users.ReplaceProjection(ctx, user.ID, user.IssueHistory, []string{}, user.TotalIssuedBooks, user.Penalty); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Int64("closed", closed).Msg("open loans force-returned")
	return nil
}

func (s *adminService) Stats(ctx context.Context) (*ports.AdminStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalBooks, err := s.books.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &ports.AdminStats{TotalUsers: totalUsers, TotalBooks: totalBooks}, nil
}

// ImportUsers streams accounts from a CSV or JSON payload. Passwords are
// bcrypt-hashed before anything touches the store; rows missing required
// fields are skipped.
func (s *adminService) ImportUsers(ctx context.Context, r io.Reader, format string) (*ports.ImportReport, error) {
	report := &ports.ImportReport{}
	batch := make([]*domain.User, 0, importBatchSize)
	now := s.clock.Now()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.users.InsertMany(ctx, batch)
		report.Inserted += n
		batch = batch[:0]
		return err
	}

	add := func(row userImportRow) error {
		if row.StudentID == "" || row.Name == "" || row.Email == "" || row.Password == "" {
			report.Skipped++
			return nil
		}
		hash, err := HashPassword(row.Password)
		if err != nil {
			return err
		}
		role := row.Role
		if role != domain.RoleAdmin {
			role = domain.RoleStudent
		}
		batch = append(batch, &domain.User{
			StudentID:          row.StudentID,
			Name:               row.Name,
			Email:              row.Email,
			PasswordHash:       hash,
			Role:               role,
			CurrentIssuedBooks: []string{},
			IssueHistory:       []domain.IssueRecord{},
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if len(batch) == importBatchSize {
			return flush()
		}
		return nil
	}

	switch format {
	case "csv":
		if err := streamUserCSV(r, add); err != nil {
			return nil, err
		}
	case "json":
		if err := streamUserJSON(r, add); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unsupported import format %q", domain.ErrValidation, format)
	}

	if err := flush(); err != nil {
		return nil, fmt.Errorf("import users: %w", err)
	}

	s.log.Info().Int("inserted", report.Inserted).Int("skipped", report.Skipped).Msg("user import completed")
	return report, nil
}

func (s *adminService) RecentSyncLogs(ctx context.Context, limit int64) ([]*domain.SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.logs.FindRecent(ctx, limit)
}

type userImportRow struct {
	StudentID string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

func streamUserCSV(r io.Reader, add func(userImportRow) error) error {
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
		if err := add(userImportRow{
			StudentID: field(row, "id"),
			Name:      field(row, "name"),
			Email:     field(row, "email"),
			Password:  field(row, "password"),
			Role:      field(row, "role"),
		}); err != nil {
			return err
		}
	}
}

func streamUserJSON(r io.Reader, add func(userImportRow) error) error {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: payload is not a json array: %v", domain.ErrValidation, err)
	}
	for dec.More() {
		var row userImportRow
		if err := dec.Decode(&row); err != nil {
			return fmt.Errorf("%w: malformed json entry: %v", domain.ErrValidation, err)
		}
		if err := add(row); err != nil {
			return err
		}
	}
	return nil
}
