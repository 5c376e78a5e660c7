package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

const msgProductIDTaken = "This Product ID is already in use. Please choose a different one."

type CatalogService struct {
	products store.Products
	now      func() time.Time
	logger   zerolog.Logger
}

func NewCatalogService(products store.Products, logger zerolog.Logger) *CatalogService {
	return &CatalogService{products: products, now: time.Now, logger: logger}
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, s.internal("Failed to fetch products", err)
	}
	return products, nil
}

// Get treats a malformed id like an unknown one.
func (s *CatalogService) Get(ctx context.Context, id string) (models.Product, error) {
	oid, ok := models.ParseID(id)
	if !ok {
		return models.Product{}, apperr.NotFound("Product not found")
	}
	p, err := s.products.Get(ctx, oid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Product{}, apperr.NotFound("Product not found")
		}
		return models.Product{}, s.internal("Failed to fetch product", err)
	}
	return p, nil
}

func (s *CatalogService) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.products.ListByCategory(ctx, category)
	if err != nil {
		return nil, s.internal("Failed to fetch products", err)
	}
	return products, nil
}

func (s *CatalogService) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if err := s.products.Create(ctx, &p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Product{}, apperr.Conflict(msgProductIDTaken)
		}
		return models.Product{}, s.internal("Failed to create product", err)
	}
	s.logger.Info().Str("product_id", p.ID.Hex()).Str("sku", p.ProductID).Msg("product created")
	return p, nil
}

// Update applies the fields present in patch to the stored product. Fields absent from
// patch keep their stored values. The storage id and creation time cannot be changed.
func (s *CatalogService) Update(ctx context.Context, id string, patch []byte) (models.Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	updated := current
	if err := json.Unmarshal(patch, &updated); err != nil {
		return models.Product{}, apperr.Validation(err.Error())
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now().UTC()

	if err := s.products.Replace(ctx, updated); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return models.Product{}, apperr.Conflict(msgProductIDTaken)
		case errors.Is(err, store.ErrNotFound):
			return models.Product{}, apperr.NotFound("Product not found")
		}
		return models.Product{}, s.internal("Failed to update product", err)
	}
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	oid, ok := models.ParseID(id)
	if !ok {
		return apperr.NotFound("Product not found")
	}
	if err := s.products.Delete(ctx, oid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return s.internal("Failed to delete product", err)
	}
	return nil
}

// Seed replaces the whole catalog.
func (s *CatalogService) Seed(ctx context.Context, products []models.Product) (int, error) {
	n, err := s.products.ReplaceAll(ctx, products)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return n, apperr.Conflict("Seed data contains a duplicate productId")
		}
		return n, s.internal("Failed to seed products", err)
	}
	s.logger.Info().Int("count", n).Msg("catalog seeded")
	return n, nil
}

func (s *CatalogService) internal(msg string, err error) error {
	s.logger.Error().Err(err).Msg(msg)
	return apperr.Internal(msg, err)
}
