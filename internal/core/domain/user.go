package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// IssueRecord is one entry of a user's issue history. It mirrors the
// authoritative Transaction; IsOverdue, OverdueDays and Penalty are caches
// recomputable from the other fields and "now" at any time.
type IssueRecord struct {
	TransactionID    string     `json:"transaction_id" bson:"transaction_id"`
	BookID           string     `json:"book_id" bson:"book_id"`
	BookCode         string     `json:"book_code" bson:"book_code"`
	BookTitle        string     `json:"book_title" bson:"book_title"`
	Author           string     `json:"author,omitempty" bson:"author,omitempty"`
	Category         string     `json:"category,omitempty" bson:"category,omitempty"`
	IssueDate        time.Time  `json:"issue_date" bson:"issue_date"`
	ReturnDate       time.Time  `json:"return_date" bson:"return_date"`
	GraceEndDate     time.Time  `json:"grace_end_date" bson:"grace_end_date"`
	ActualReturnDate *time.Time `json:"actual_return_date,omitempty" bson:"actual_return_date,omitempty"`
	Returned         bool       `json:"returned" bson:"returned"`
	IsOverdue        bool       `json:"is_overdue" bson:"is_overdue"`
	OverdueDays      int        `json:"overdue_days" bson:"overdue_days"`
	Penalty          int64      `json:"penalty" bson:"penalty"`
}

// User models a library member. CurrentIssuedBooks holds exactly the book ids
// of unreturned IssueHistory entries. Only the bcrypt hash of the password is
// ever stored.
type User struct {
	ID                 string        `json:"id" bson:"_id,omitempty"`
	StudentID          string        `json:"student_id" bson:"student_id"`
	Name               string        `json:"name" bson:"name"`
	Email              string        `json:"email" bson:"email"`
	PasswordHash       string        `json:"-" bson:"password_hash"`
	Role               string        `json:"role" bson:"role"`
	TotalIssuedBooks   int           `json:"total_issued_books" bson:"total_issued_books"`
	CurrentIssuedBooks []string      `json:"current_issued_books" bson:"current_issued_books"`
	IssueHistory       []IssueRecord `json:"issue_history" bson:"issue_history"`
	Penalty            int64         `json:"penalty" bson:"penalty"`
	CreatedAt          time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" bson:"updated_at"`
}
