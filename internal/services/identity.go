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

const msgInvalidCredentials = "Invalid credentials"

// Session is returned by register and login.
type Session struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type IdentityService struct {
	users  store.Users
	tokens *auth.Tokens
	hasher auth.Hasher
	logger zerolog.Logger
}

func NewIdentityService(users store.Users, tokens *auth.Tokens, hasher auth.Hasher, logger zerolog.Logger) *IdentityService {
	return &IdentityService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: logger,
	}
}

func (s *IdentityService) Register(ctx context.Context, email, password, name string) (Session, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return Session{}, apperr.Validation("Email, password, and name are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return Session{}, apperr.Conflict("Email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return Session{}, s.internal("Registration failed", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return Session{}, s.internal("Registration failed", err)
	}

	active := true
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     models.RoleUser,
		IsActive: &active,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return Session{}, apperr.Conflict("Email already registered")
		}
		return Session{}, s.internal("Registration failed", err)
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return Session{}, s.internal("Registration failed", err)
	}

	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("user registered")
	return Session{Token: token, User: user.Public(models.RoleUser)}, nil
}

// Login answers the same message for an unknown email and a wrong password.
func (s *IdentityService) Login(ctx context.Context, email, password string) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, apperr.Validation("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, apperr.Auth(msgInvalidCredentials)
		}
		return Session{}, s.internal("Login failed", err)
	}
	if !user.Active() {
		return Session{}, apperr.Auth("Account is disabled")
	}
	if !s.hasher.Matches(user.Password, password) {
		return Session{}, apperr.Auth(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return Session{}, s.internal("Login failed", err)
	}

	role := strings.TrimSpace(user.Role)
	if role == "" {
		role = models.RoleUser
	}
	return Session{Token: token, User: user.Public(role)}, nil
}

// Verify resolves a raw token to the id of the user it was issued for.
func (s *IdentityService) Verify(token string) (primitive.ObjectID, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, ok := models.ParseID(userID)
	if !ok {
		return primitive.NilObjectID, auth.ErrInvalidToken
	}
	return oid, nil
}

// Me returns the public view of the caller identified by the Authorization header.
func (s *IdentityService) Me(ctx context.Context, header string) (models.PublicUser, error) {
	token := auth.BearerToken(header)
	if token == "" {
		return models.PublicUser{}, apperr.Auth("No token provided")
	}
	id, err := s.Verify(token)
	if err != nil {
		return models.PublicUser{}, apperr.Auth("Invalid token")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.PublicUser{}, apperr.NotFound("User not found")
		}
		return models.PublicUser{}, s.internal("Failed to load user", err)
	}
	return user.Public(models.CoerceRole(strings.ToLower(user.Role))), nil
}

func (s *IdentityService) internal(msg string, err error) error {
	s.logger.Error().Err(err).Msg(msg)
	return apperr.Internal(msg, err)
}
