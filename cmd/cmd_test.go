package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store/memstore"
)

func TestSeedCatalog_ReplacesProducts(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.Products().Create(ctx, &models.Product{ProductID: "OLD", ProductName: "old"}))

	n, err := seedCatalog(ctx, s.Products(), strings.NewReader(`[
		{"productId":"A","productName":"First"},
		{"productId":"B","productName":"Second"}
	]`), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.Products().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, p := range all {
		assert.NotEqual(t, "OLD", p.ProductID)
	}
}

func TestSeedCatalog_Errors(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	_, err := seedCatalog(ctx, s.Products(), strings.NewReader(`{"not":"an array"}`), zerolog.Nop())
	assert.ErrorContains(t, err, "decode seed file")

	_, err = seedCatalog(ctx, s.Products(), strings.NewReader(`[{"productId":"A"},{"productId":"A"}]`), zerolog.Nop())
	assert.ErrorContains(t, err, "seed failed")
}

func TestPromote(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.Users().Create(ctx, &models.User{Email: "owner@shop.io", Name: "Owner", Role: models.RoleUser}))

	user, err := promote(ctx, s.Users(), "  Owner@Shop.io ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = promote(ctx, s.Users(), "missing@shop.io")
	assert.ErrorContains(t, err, "no user with email")
}
