package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 5 * time.Second

// BookLocker serialises issue attempts per book with a short Redis lease.
// Key format: issue_lock:<book_id>. The TTL bounds how long a crashed issue
// attempt can keep a book locked.
type BookLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookLocker creates a BookLocker wrapping the given Redis client.
func NewBookLocker(client *redis.Client, ttl time.Duration) *BookLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &BookLocker{client: client, ttl: ttl}
}

// Acquire takes the lease for the book id. It reports false when another
// issue attempt currently holds it.
func (l *BookLocker) Acquire(ctx context.Context, bookID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(bookID), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire book lock: %w", err)
	}
	return ok, nil
}

// Release drops the lease. Releasing a lease that already expired is a no-op.
func (l *BookLocker) Release(ctx context.Context, bookID string) {
	l.client.Del(ctx, l.key(bookID))
}

func (l *BookLocker) key(bookID string) string {
	return fmt.Sprintf("issue_lock:%s", bookID)
}
