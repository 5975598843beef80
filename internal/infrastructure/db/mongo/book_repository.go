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

const collectionBooks = "books"

type BookRepository struct {
	col *mongo.Collection
}

func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{col: db.Collection(collectionBooks)}
}

// Create inserts a new book document. Ids are hex object ids assigned here so
// the domain only ever sees strings.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	b.ID = primitive.NewObjectID().Hex()
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *BookRepository) FindByCode(ctx context.Context, code string) (*domain.Book, error) {
	return r.findOne(ctx, bson.M{"book_code": code})
}

func (r *BookRepository) findOne(ctx context.Context, filter bson.M) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Book
	if err := r.col.FindOne(ctx, filter).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookRepository) FindAll(ctx context.Context) ([]*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var books []*domain.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":       b.Title,
		"author":      b.Author,
		"category":    b.Category,
		"pdf_url":     b.PdfURL,
		"cover_image": b.CoverImage,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": b.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// SetAvailability flips is_available conditionally on its observed value.
// The filter carries the expected current flag, so a concurrent writer makes
// the update match nothing and the caller learns it lost the race.
func (r *BookRepository) SetAvailability(ctx context.Context, id string, observed, available bool) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "is_available": observed}
	update := bson.M{"$set": bson.M{"is_available": available}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *BookRepository) SetManyAvailable(ctx context.Context, ids []string, available bool) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": bson.M{"$in": ids}}
	update := bson.M{"$set": bson.M{"is_available": available}}
	_, err := r.col.UpdateMany(ctx, filter, update)
	return err
}

// InsertMany bulk-inserts books unordered, so one bad document does not stop
// the rest of the batch.
func (r *BookRepository) InsertMany(ctx context.Context, books []*domain.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs := make([]any, len(books))
	for i, b := range books {
		b.ID = primitive.NewObjectID().Hex()
		docs[i] = b
	}

	res, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	inserted := 0
	if res != nil {
		inserted = len(res.InsertedIDs)
	}
	return inserted, err
}

func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the indexes the repository queries rely on.
func (r *BookRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "book_code", Value: 1}}},
		{Keys: bson.D{{Key: "is_available", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
