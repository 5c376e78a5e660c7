// Package mongostore implements the repositories on MongoDB, one collection per entity.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/store"
)

const (
	usersCollection     = "users"
	productsCollection  = "products"
	inquiriesCollection = "inquiries"

	connectTimeout = 10 * time.Second
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the primary and selects database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Users() store.Users {
	return &Users{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Products() store.Products {
	return &Products{coll: s.db.Collection(productsCollection)}
}

func (s *Store) Inquiries() store.Inquiries {
	return &Inquiries{coll: s.db.Collection(inquiriesCollection)}
}

// EnsureIndexes creates the unique indexes the repositories rely on for conflict detection.
// Products without a business id are left out of the productId index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	if _, err := s.db.Collection(productsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "productId", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("productId_unique").
			SetPartialFilterExpression(bson.M{"productId": bson.M{"$type": "string", "$gt": ""}}),
	}); err != nil {
		return fmt.Errorf("products productId index: %w", err)
	}

	if _, err := s.db.Collection(productsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "productCategory", Value: 1}},
	}); err != nil {
		return fmt.Errorf("products category index: %w", err)
	}

	if _, err := s.db.Collection(inquiriesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("inquiries createdAt index: %w", err)
	}
	return nil
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return err
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
