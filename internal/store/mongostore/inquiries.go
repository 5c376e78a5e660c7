package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/models"
)

type Inquiries struct {
	coll *mongo.Collection
}

func (r *Inquiries) Create(ctx context.Context, inq *models.Inquiry) error {
	now := time.Now().UTC()
	inq.ID = primitive.NewObjectID()
	inq.CreatedAt, inq.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, inq)
	return translate(err)
}

func (r *Inquiries) List(ctx context.Context) ([]models.Inquiry, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, newestFirst)
	if err != nil {
		return nil, err
	}
	out := []models.Inquiry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Inquiries) Get(ctx context.Context, id primitive.ObjectID) (models.Inquiry, error) {
	var inq models.Inquiry
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&inq); err != nil {
		return models.Inquiry{}, translate(err)
	}
	return inq, nil
}

func (r *Inquiries) SetReviewed(ctx context.Context, id primitive.ObjectID, reviewed bool) (models.Inquiry, error) {
	var inq models.Inquiry
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reviewed": reviewed, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&inq)
	if err != nil {
		return models.Inquiry{}, translate(err)
	}
	return inq, nil
}
