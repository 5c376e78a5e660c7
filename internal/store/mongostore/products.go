package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

type Products struct {
	coll *mongo.Collection
}

func (r *Products) List(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *Products) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.find(ctx, bson.M{"productCategory": category})
}

func (r *Products) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Products) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Product{}, translate(err)
	}
	return p, nil
}

func (r *Products) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

// Replace overwrites the stored document with p, keyed by p.ID.
func (r *Products) Replace(ctx context.Context, p models.Product) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Products) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Products) ReplaceAll(ctx context.Context, products []models.Product) (int, error) {
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, err
	}
	if len(products) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		p.ID = primitive.NewObjectID()
		p.CreatedAt, p.UpdatedAt = now, now
		docs = append(docs, p)
	}
	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return insertedBefore(err), translate(err)
	}
	return len(res.InsertedIDs), nil
}

// insertedBefore counts the documents an ordered InsertMany wrote before it failed.
// InsertedIDs cannot be used here: the driver reports every attempted document.
func insertedBefore(err error) int {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return 0
	}
	first := bwe.WriteErrors[0].Index
	for _, we := range bwe.WriteErrors[1:] {
		if we.Index < first {
			first = we.Index
		}
	}
	return first
}
