package domain

import "time"

const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// SyncLog is one append-only audit entry for a reconciliation run. Entries
// are never mutated after insertion.
type SyncLog struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Status       string    `json:"status" bson:"status"`
	Message      string    `json:"message" bson:"message"`
	UpdatedBooks []string  `json:"updated_books" bson:"updated_books"`
	Error        string    `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
