package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

const collectionSyncLogs = "sync_logs"

// SyncLogRepository is append-only: entries are inserted and read back, never
// updated.
type SyncLogRepository struct {
	col *mongo.Collection
}

func NewSyncLogRepository(db *mongo.Database) *SyncLogRepository {
	return &SyncLogRepository{col: db.Collection(collectionSyncLogs)}
}

func (r *SyncLogRepository) Append(ctx context.Context, entry *domain.SyncLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	entry.ID = primitive.NewObjectID().Hex()
	_, err := r.col.InsertOne(ctx, entry)
	return err
}

func (r *SyncLogRepository) FindRecent(ctx context.Context, limit int64) ([]*domain.SyncLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var entries []*domain.SyncLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
