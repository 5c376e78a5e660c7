package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

// Guard turns an Authorization header into a caller identity. It never writes.
type Guard struct {
	identity *IdentityService
	users    store.Users
	logger   zerolog.Logger
}

func NewGuard(identity *IdentityService, users store.Users, logger zerolog.Logger) *Guard {
	return &Guard{identity: identity, users: users, logger: logger}
}

// Authenticate checks the bearer token and returns the user id it carries. The user is
// not loaded; callers that need the record look it up themselves.
func (g *Guard) Authenticate(header string) (primitive.ObjectID, error) {
	token := auth.BearerToken(header)
	if token == "" {
		return primitive.NilObjectID, apperr.Auth("No token provided")
	}
	id, err := g.identity.Verify(token)
	if err != nil {
		return primitive.NilObjectID, apperr.Auth("Invalid token")
	}
	return id, nil
}

// RequireAdmin resolves the caller and fails unless their stored role is exactly admin.
func (g *Guard) RequireAdmin(ctx context.Context, header string) (models.User, error) {
	token := auth.BearerToken(header)
	if token == "" {
		return models.User{}, apperr.Auth("Authentication required")
	}
	id, err := g.identity.Verify(token)
	if err != nil {
		return models.User{}, apperr.Auth("Invalid or expired token")
	}

	user, err := g.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, apperr.NotFound("User not found")
		}
		g.logger.Error().Err(err).Msg("guard user lookup failed")
		return models.User{}, apperr.Internal("Failed to load user", err)
	}
	if user.Role != models.RoleAdmin {
		return models.User{}, apperr.Forbidden("Admin access required")
	}
	return user, nil
}
