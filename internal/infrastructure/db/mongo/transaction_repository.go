package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
)

const collectionTransactions = "transactions"

type TransactionRepository struct {
	col *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{col: db.Collection(collectionTransactions)}
}

func (r *TransactionRepository) Insert(ctx context.Context, t *domain.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	t.ID = primitive.NewObjectID().Hex()
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *TransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Transaction
	if err := r.col.FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) FindAll(ctx context.Context) ([]*domain.Transaction, error) {
	return r.find(ctx, bson.M{})
}

// FindOpen returns all unreturned transactions in one query. Callers index
// the result by book id instead of issuing a per-book lookup.
func (r *TransactionRepository) FindOpen(ctx context.Context) ([]*domain.Transaction, error) {
	return r.find(ctx, bson.M{"returned": false})
}

func (r *TransactionRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *TransactionRepository) find(ctx context.Context, filter bson.M) ([]*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var txns []*domain.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// MarkReturned closes an open transaction. The filter includes returned:false
// so a second return of the same transaction matches nothing.
func (r *TransactionRepository) MarkReturned(ctx context.Context, transactionID string, at time.Time) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"transaction_id": transactionID, "returned": false}
	update := bson.M{"$set": bson.M{"returned": true, "actual_return_date": at}}

	var t domain.Transaction
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) MarkAllReturnedForUser(ctx context.Context, userID string, at time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "returned": false}
	update := bson.M{"$set": bson.M{"returned": true, "actual_return_date": at}}
	res, err := r.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the indexes the open-transaction lookups rely on.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "transaction_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "book_id", Value: 1}, {Key: "returned", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
