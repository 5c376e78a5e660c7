package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
}

// UserPatch holds the fields an admin may change. Nil means unchanged.
type UserPatch struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// UserAdminService is the admin-only account management surface. Every result is a
// models.UserView, which has no password field.
type UserAdminService struct {
	users  store.Users
	hasher auth.Hasher
	logger zerolog.Logger
}

func NewUserAdminService(users store.Users, hasher auth.Hasher, logger zerolog.Logger) *UserAdminService {
	return &UserAdminService{users: users, hasher: hasher, logger: logger}
}

func (s *UserAdminService) List(ctx context.Context) ([]models.UserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, s.internal("Failed to load users", err)
	}
	out := make([]models.UserView, 0, len(users))
	for _, u := range users {
		out = append(out, u.View())
	}
	return out, nil
}

func (s *UserAdminService) Get(ctx context.Context, id string) (models.UserView, error) {
	oid, err := parseUserID(id)
	if err != nil {
		return models.UserView{}, err
	}
	user, err := s.users.GetByID(ctx, oid)
	if err != nil {
		return models.UserView{}, s.lookupErr(err, "Failed to load user")
	}
	return user.View(), nil
}

func (s *UserAdminService) Create(ctx context.Context, in NewUser) (models.UserView, error) {
	name := strings.TrimSpace(in.Name)
	email := models.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return models.UserView{}, apperr.Validation("Name, email, and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return models.UserView{}, apperr.Conflict("Email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.UserView{}, s.internal("Failed to create user", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.UserView{}, s.internal("Failed to create user", err)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     models.CoerceRole(in.Role),
		IsActive: &active,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.UserView{}, apperr.Conflict("Email already registered")
		}
		return models.UserView{}, s.internal("Failed to create user", err)
	}

	s.logger.Info().Str("user_id", user.ID.Hex()).Str("role", user.Role).Msg("user created by admin")
	return user.View(), nil
}

func (s *UserAdminService) Update(ctx context.Context, id string, patch UserPatch) (models.UserView, error) {
	oid, err := parseUserID(id)
	if err != nil {
		return models.UserView{}, err
	}

	var upd store.UserUpdate
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		upd.Name = &name
	}
	if patch.Role != nil {
		role := models.CoerceRole(*patch.Role)
		upd.Role = &role
	}
	upd.IsActive = patch.IsActive

	user, err := s.users.Update(ctx, oid, upd)
	if err != nil {
		return models.UserView{}, s.lookupErr(err, "Failed to update user")
	}
	return user.View(), nil
}

// Delete removes the account id. An admin cannot delete their own account.
func (s *UserAdminService) Delete(ctx context.Context, caller primitive.ObjectID, id string) error {
	if id == caller.Hex() {
		return apperr.Validation("You cannot delete your own account")
	}
	oid, err := parseUserID(id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, oid); err != nil {
		return s.lookupErr(err, "Failed to delete user")
	}
	s.logger.Info().Str("user_id", id).Str("by", caller.Hex()).Msg("user deleted")
	return nil
}

func parseUserID(id string) (primitive.ObjectID, error) {
	oid, ok := models.ParseID(id)
	if !ok {
		return primitive.NilObjectID, apperr.Validation("Invalid user id")
	}
	return oid, nil
}

func (s *UserAdminService) lookupErr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return s.internal(msg, err)
}

func (s *UserAdminService) internal(msg string, err error) error {
	s.logger.Error().Err(err).Msg(msg)
	return apperr.Internal(msg, err)
}
