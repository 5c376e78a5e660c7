package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

// Users persists accounts in the users collection. The cart is embedded in the user document.
type Users struct {
	coll *mongo.Collection
}

func (r *Users) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Cart == nil {
		user.Cart = []models.CartItem{}
	}
	_, err := r.coll.InsertOne(ctx, user)
	return translate(err)
}

func (r *Users) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *Users) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *Users) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func (r *Users) List(ctx context.Context) ([]models.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, newestFirst)
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Users) Update(ctx context.Context, id primitive.ObjectID, upd store.UserUpdate) (models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.IsActive != nil {
		set["isActive"] = *upd.IsActive
	}
	return r.findOneAndSet(ctx, bson.M{"_id": id}, set)
}

func (r *Users) SetCart(ctx context.Context, id primitive.ObjectID, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"cart":      items,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Users) SetRoleByEmail(ctx context.Context, email, role string) (models.User, error) {
	return r.findOneAndSet(ctx, bson.M{"email": email}, bson.M{"role": role, "updatedAt": time.Now().UTC()})
}

func (r *Users) findOneAndSet(ctx context.Context, filter, set bson.M) (models.User, error) {
	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func (r *Users) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
