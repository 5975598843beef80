package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// Transaction is the authoritative record of one issue event. A transaction
// is open while Returned is false; ISSUED -> RETURNED is the only transition
// and RETURNED is terminal. User.IssueHistory is a projection of these
// records, never the other way around.
type Transaction struct {
	ID               string     `json:"id" bson:"_id,omitempty"`
	TransactionID    string     `json:"transaction_id" bson:"transaction_id"`
	UserID           string     `json:"user_id" bson:"user_id"`
	StudentID        string     `json:"student_id" bson:"student_id"`
	BookID           string     `json:"book_id" bson:"book_id"`
	BookCode         string     `json:"book_code" bson:"book_code"`
	BookTitle        string     `json:"book_title" bson:"book_title"`
	IssueDate        time.Time  `json:"issue_date" bson:"issue_date"`
	ReturnDate       time.Time  `json:"return_date" bson:"return_date"`
	GraceEndDate     time.Time  `json:"grace_end_date" bson:"grace_end_date"`
	ActualReturnDate *time.Time `json:"actual_return_date,omitempty" bson:"actual_return_date,omitempty"`
	Returned         bool       `json:"returned" bson:"returned"`
}

// NewTransactionID returns a unique transaction identifier in the format
// TXN-<uuid>.
func NewTransactionID() string {
	return "TXN-" + uuid.NewString()
}

// IssueRecord projects the transaction into a user history entry. Derived
// overdue fields start zeroed; EvaluateOverdue fills them.
func (t *Transaction) IssueRecord() IssueRecord {
	return IssueRecord{
		TransactionID:    t.TransactionID,
		BookID:           t.BookID,
		BookCode:         t.BookCode,
		BookTitle:        t.BookTitle,
		IssueDate:        t.IssueDate,
		ReturnDate:       t.ReturnDate,
		GraceEndDate:     t.GraceEndDate,
		ActualReturnDate: t.ActualReturnDate,
		Returned:         t.Returned,
	}
}
