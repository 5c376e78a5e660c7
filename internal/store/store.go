// Package store declares the repositories the services persist through.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// UserUpdate lists the account fields an admin may change. Nil fields are left alone.
type UserUpdate struct {
	Name     *string
	Role     *string
	IsActive *bool
}

type Users interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	// List returns every account, newest first.
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (models.User, error)
	SetCart(ctx context.Context, id primitive.ObjectID, items []models.CartItem) error
	SetRoleByEmail(ctx context.Context, email, role string) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Products interface {
	List(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Replace(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ReplaceAll swaps the whole catalog for products and returns how many were inserted.
	ReplaceAll(ctx context.Context, products []models.Product) (int, error)
}

type Inquiries interface {
	Create(ctx context.Context, inq *models.Inquiry) error
	// List returns every inquiry, newest first.
	List(ctx context.Context) ([]models.Inquiry, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Inquiry, error)
	SetReviewed(ctx context.Context, id primitive.ObjectID, reviewed bool) (models.Inquiry, error)
}
