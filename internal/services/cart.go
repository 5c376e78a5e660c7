package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

// CartService loads a user's cart, runs one reconciliation step and writes the whole cart
// back. Two concurrent mutations for the same user race and the last write wins.
type CartService struct {
	users  store.Users
	now    func() time.Time
	logger zerolog.Logger
}

func NewCartService(users store.Users, logger zerolog.Logger) *CartService {
	return &CartService{users: users, now: time.Now, logger: logger}
}

func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	user, err := s.load(ctx, userID, "Failed to fetch cart")
	if err != nil {
		return nil, err
	}
	if user.Cart == nil {
		return []models.CartItem{}, nil
	}
	return user.Cart, nil
}

// Add puts quantity units of product into the cart. product is nil when the caller sent none.
func (s *CartService) Add(ctx context.Context, userID primitive.ObjectID, product *models.CartItem, quantity int) ([]models.CartItem, error) {
	if product == nil || product.ProductID == "" {
		return nil, apperr.Validation("Invalid product")
	}
	if quantity <= 0 {
		return nil, apperr.Validation("Quantity must be a positive integer")
	}
	return s.apply(ctx, userID, "Failed to add item to cart", func(items []models.CartItem) []models.CartItem {
		return cart.Add(items, *product, quantity, s.now())
	})
}

func (s *CartService) Remove(ctx context.Context, userID primitive.ObjectID, productID string) ([]models.CartItem, error) {
	return s.apply(ctx, userID, "Failed to remove item from cart", func(items []models.CartItem) []models.CartItem {
		return cart.Remove(items, productID)
	})
}

func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	return s.apply(ctx, userID, "Failed to clear cart", func([]models.CartItem) []models.CartItem {
		return []models.CartItem{}
	})
}

// Sync replaces the cart with the valid subset of items.
func (s *CartService) Sync(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) ([]models.CartItem, error) {
	return s.apply(ctx, userID, "Failed to sync cart", func([]models.CartItem) []models.CartItem {
		return cart.Sync(items, s.now())
	})
}

// Merge folds a guest cart into the stored one. Replaying the same guest list adds its
// quantities again.
func (s *CartService) Merge(ctx context.Context, userID primitive.ObjectID, guest []models.CartItem) ([]models.CartItem, error) {
	return s.apply(ctx, userID, "Failed to merge cart", func(items []models.CartItem) []models.CartItem {
		return cart.Merge(items, guest, s.now())
	})
}

func (s *CartService) apply(ctx context.Context, userID primitive.ObjectID, failMsg string, step func([]models.CartItem) []models.CartItem) ([]models.CartItem, error) {
	user, err := s.load(ctx, userID, failMsg)
	if err != nil {
		return nil, err
	}

	next := cart.Positive(step(user.Cart))
	if next == nil {
		next = []models.CartItem{}
	}
	if err := s.users.SetCart(ctx, userID, next); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		s.logger.Error().Err(err).Str("user_id", userID.Hex()).Msg(failMsg)
		return nil, apperr.Internal(failMsg, err)
	}
	return next, nil
}

func (s *CartService) load(ctx context.Context, userID primitive.ObjectID, failMsg string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, apperr.NotFound("User not found")
		}
		s.logger.Error().Err(err).Str("user_id", userID.Hex()).Msg(failMsg)
		return models.User{}, apperr.Internal(failMsg, err)
	}
	return user, nil
}
