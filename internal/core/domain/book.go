package domain

import "errors"

var ErrBookNotFound = errors.New("book not found")
var ErrBookUnavailable = errors.New("book is currently issued")
var ErrBookIssued = errors.New("book has an open transaction")

// Book is a catalog entry. IsAvailable is derived state: it must be false
// exactly when an open transaction references the book. Issue/Return keep it
// in step; the availability sync repairs any drift.
type Book struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	BookCode    string `json:"book_code" bson:"book_code"`
	Title       string `json:"title" bson:"title"`
	Author      string `json:"author" bson:"author"`
	Category    string `json:"category" bson:"category"`
	PdfURL      string `json:"pdf_url,omitempty" bson:"pdf_url,omitempty"`
	CoverImage  string `json:"cover_image,omitempty" bson:"cover_image,omitempty"`
	IsAvailable bool   `json:"is_available" bson:"is_available"`
}
