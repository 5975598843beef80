package service

// In-memory stubs for the repository and locker ports, shared by the service
// tests in this package. Each mirrors the filters and conditional writes of
// its Mongo counterpart closely enough to exercise the service logic.

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

type stubBookRepo struct {
	byID map[string]*domain.Book
	seq  int
	// setAvailErr forces SetAvailability to fail for the given book ids.
	setAvailErr map[string]error
	createErr   error
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{byID: make(map[string]*domain.Book), setAvailErr: make(map[string]error)}
}

func cloneBook(b *domain.Book) *domain.Book {
	clone := *b
	return &clone
}

func (r *stubBookRepo) Create(_ context.Context, b *domain.Book) (*domain.Book, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	clone := cloneBook(b)
	if clone.ID == "" {
		r.seq++
		clone.ID = fmt.Sprintf("book-%d", r.seq)
	}
	r.byID[clone.ID] = clone
	return cloneBook(clone), nil
}

func (r *stubBookRepo) FindByID(_ context.Context, id string) (*domain.Book, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	return cloneBook(b), nil
}

func (r *stubBookRepo) FindByCode(_ context.Context, code string) (*domain.Book, error) {
	for _, b := range r.byID {
		if b.BookCode == code {
			return cloneBook(b), nil
		}
	}
	return nil, domain.ErrBookNotFound
}

func (r *stubBookRepo) FindAll(_ context.Context) ([]*domain.Book, error) {
	out := make([]*domain.Book, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, cloneBook(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubBookRepo) Update(_ context.Context, b *domain.Book) error {
	if _, ok := r.byID[b.ID]; !ok {
		return domain.ErrBookNotFound
	}
	r.byID[b.ID] = cloneBook(b)
	return nil
}

func (r *stubBookRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(r.byID, id)
	return nil
}

// SetAvailability matches the conditional update of the Mongo repo: the flip
// only happens when the stored flag equals the observed value.
func (r *stubBookRepo) SetAvailability(_ context.Context, id string, observed, available bool) (bool, error) {
	if err := r.setAvailErr[id]; err != nil {
		return false, err
	}
	b, ok := r.byID[id]
	if !ok || b.IsAvailable != observed {
		return false, nil
	}
	b.IsAvailable = available
	return true, nil
}

func (r *stubBookRepo) SetManyAvailable(_ context.Context, ids []string, available bool) error {
	for _, id := range ids {
		if b, ok := r.byID[id]; ok {
			b.IsAvailable = available
		}
	}
	return nil
}

func (r *stubBookRepo) InsertMany(_ context.Context, books []*domain.Book) (int, error) {
	for _, b := range books {
		clone := cloneBook(b)
		r.seq++
		clone.ID = fmt.Sprintf("book-%d", r.seq)
		r.byID[clone.ID] = clone
	}
	return len(books), nil
}

func (r *stubBookRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

func seedBook(r *stubBookRepo, id, code, title string, available bool) *domain.Book {
	b := &domain.Book{ID: id, BookCode: code, Title: title, Author: "Author", Category: "Category", IsAvailable: available}
	r.byID[id] = b
	return b
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID map[string]*domain.User
	seq  int
	// replaceHistoryErr forces ReplaceHistory to fail for the given user ids.
	replaceHistoryErr map[string]error
	replacedHistory   []string // user ids persisted via ReplaceHistory, in order
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User), replaceHistoryErr: make(map[string]error)}
}

func cloneStubUser(u *domain.User) *domain.User {
	clone := *u
	if u.CurrentIssuedBooks != nil {
		clone.CurrentIssuedBooks = append(make([]string, 0, len(u.CurrentIssuedBooks)), u.CurrentIssuedBooks...)
	}
	if u.IssueHistory != nil {
		clone.IssueHistory = append(make([]domain.IssueRecord, 0, len(u.IssueHistory)), u.IssueHistory...)
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Email == u.Email || existing.StudentID == u.StudentID {
			return nil, domain.ErrUserExists
		}
	}
	clone := cloneStubUser(u)
	if clone.ID == "" {
		r.seq++
		clone.ID = fmt.Sprintf("user-%d", r.seq)
	}
	r.byID[clone.ID] = clone
	return cloneStubUser(clone), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneStubUser(u), nil
}

func (r *stubUserRepo) FindByStudentID(_ context.Context, studentID string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.StudentID == studentID {
			return cloneStubUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return cloneStubUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneStubUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) AppendIssue(_ context.Context, userID string, rec domain.IssueRecord) error {
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IssueHistory = append(u.IssueHistory, rec)
	u.CurrentIssuedBooks = append(u.CurrentIssuedBooks, rec.BookID)
	u.TotalIssuedBooks++
	return nil
}

func (r *stubUserRepo) CompleteIssue(_ context.Context, userID, transactionID, bookID string, returnedAt time.Time) error {
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for i := range u.IssueHistory {
		if u.IssueHistory[i].TransactionID == transactionID {
			at := returnedAt
			u.IssueHistory[i].Returned = true
			u.IssueHistory[i].ActualReturnDate = &at
		}
	}
	current := u.CurrentIssuedBooks[:0]
	for _, id := range u.CurrentIssuedBooks {
		if id != bookID {
			current = append(current, id)
		}
	}
	u.CurrentIssuedBooks = current
	return nil
}

func (r *stubUserRepo) ReplaceHistory(_ context.Context, userID string, history []domain.IssueRecord, penalty int64) error {
	if err := r.replaceHistoryErr[userID]; err != nil {
		return err
	}
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IssueHistory = append([]domain.IssueRecord(nil), history...)
	u.Penalty = penalty
	r.replacedHistory = append(r.replacedHistory, userID)
	return nil
}

func (r *stubUserRepo) ReplaceProjection(_ context.Context, userID string, history []domain.IssueRecord, current []string, total int, penalty int64) error {
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IssueHistory = append([]domain.IssueRecord(nil), history...)
	u.CurrentIssuedBooks = append([]string(nil), current...)
	u.TotalIssuedBooks = total
	u.Penalty = penalty
	return nil
}

func (r *stubUserRepo) UpdateDetails(_ context.Context, id, name, email string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	return nil
}

func (r *stubUserRepo) SetRole(_ context.Context, id, role string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) InsertMany(_ context.Context, users []*domain.User) (int, error) {
	for _, u := range users {
		clone := cloneStubUser(u)
		r.seq++
		clone.ID = fmt.Sprintf("user-%d", r.seq)
		r.byID[clone.ID] = clone
	}
	return len(users), nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

func seedUser(r *stubUserRepo, id, studentID string) *domain.User {
	u := &domain.User{
		ID:                 id,
		StudentID:          studentID,
		Name:               "Test User",
		Email:              studentID + "@example.com",
		Role:               domain.RoleStudent,
		CurrentIssuedBooks: []string{},
		IssueHistory:       []domain.IssueRecord{},
	}
	r.byID[id] = u
	return u
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

type stubTxnRepo struct {
	byTxnID   map[string]*domain.Transaction
	order     []string
	insertErr error
}

func newStubTxnRepo() *stubTxnRepo {
	return &stubTxnRepo{byTxnID: make(map[string]*domain.Transaction)}
}

func cloneTxn(t *domain.Transaction) *domain.Transaction {
	clone := *t
	if t.ActualReturnDate != nil {
		at := *t.ActualReturnDate
		clone.ActualReturnDate = &at
	}
	return &clone
}

func (r *stubTxnRepo) Insert(_ context.Context, t *domain.Transaction) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.byTxnID[t.TransactionID] = cloneTxn(t)
	r.order = append(r.order, t.TransactionID)
	return nil
}

func (r *stubTxnRepo) FindByTransactionID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	t, ok := r.byTxnID[transactionID]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return cloneTxn(t), nil
}

func (r *stubTxnRepo) FindAll(_ context.Context) ([]*domain.Transaction, error) {
	out := make([]*domain.Transaction, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneTxn(r.byTxnID[id]))
	}
	return out, nil
}

func (r *stubTxnRepo) FindOpen(_ context.Context) ([]*domain.Transaction, error) {
	out := make([]*domain.Transaction, 0)
	for _, id := range r.order {
		if t := r.byTxnID[id]; !t.Returned {
			out = append(out, cloneTxn(t))
		}
	}
	return out, nil
}

func (r *stubTxnRepo) FindByUser(_ context.Context, userID string) ([]*domain.Transaction, error) {
	out := make([]*domain.Transaction, 0)
	for _, id := range r.order {
		if t := r.byTxnID[id]; t.UserID == userID {
			out = append(out, cloneTxn(t))
		}
	}
	return out, nil
}

// MarkReturned is conditional on the transaction still being open, like the
// FindOneAndUpdate it stands in for.
func (r *stubTxnRepo) MarkReturned(_ context.Context, transactionID string, at time.Time) (*domain.Transaction, error) {
	t, ok := r.byTxnID[transactionID]
	if !ok || t.Returned {
		return nil, domain.ErrTransactionNotFound
	}
	returnedAt := at
	t.Returned = true
	t.ActualReturnDate = &returnedAt
	return cloneTxn(t), nil
}

func (r *stubTxnRepo) MarkAllReturnedForUser(_ context.Context, userID string, at time.Time) (int64, error) {
	var closed int64
	for _, t := range r.byTxnID {
		if t.UserID == userID && !t.Returned {
			returnedAt := at
			t.Returned = true
			t.ActualReturnDate = &returnedAt
			closed++
		}
	}
	return closed, nil
}

// ---------------------------------------------------------------------------
// Sync logs
// ---------------------------------------------------------------------------

type stubSyncLogRepo struct {
	entries []*domain.SyncLog
}

func (r *stubSyncLogRepo) Append(_ context.Context, entry *domain.SyncLog) error {
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *stubSyncLogRepo) FindRecent(_ context.Context, limit int64) ([]*domain.SyncLog, error) {
	out := make([]*domain.SyncLog, 0)
	for i := len(r.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		clone := *r.entries[i]
		out = append(out, &clone)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Book locker
// ---------------------------------------------------------------------------

type stubLocker struct {
	held    map[string]bool
	denyAll bool
}

func newStubLocker() *stubLocker {
	return &stubLocker{held: make(map[string]bool)}
}

func (l *stubLocker) Acquire(_ context.Context, bookID string) (bool, error) {
	if l.denyAll || l.held[bookID] {
		return false, nil
	}
	l.held[bookID] = true
	return true, nil
}

func (l *stubLocker) Release(_ context.Context, bookID string) {
	delete(l.held, bookID)
}
