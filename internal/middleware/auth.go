package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/models"
)

const (
	userIDKey = "user_id"
	userKey   = "user"
)

// Authenticator resolves the Authorization header of a request.
type Authenticator interface {
	Authenticate(header string) (primitive.ObjectID, error)
	RequireAdmin(ctx context.Context, header string) (models.User, error)
}

// RequireUser admits any caller with a valid token and stores their id.
func RequireUser(a Authenticator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			RespondError(c, logger, err)
			c.Abort()
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// RequireAdmin admits only admins and stores the full caller record.
func RequireAdmin(a Authenticator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.RequireAdmin(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			RespondError(c, logger, err)
			c.Abort()
			return
		}
		c.Set(userIDKey, user.ID)
		c.Set(userKey, user)
		c.Next()
	}
}

func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// RespondError writes err as {"message": ...} with the status of its kind. Internal causes
// are logged here and never sent to the caller.
func RespondError(c *gin.Context, logger zerolog.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error().Err(err).
			Str("request_id", GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	c.JSON(kind.Status(), gin.H{"message": apperr.Message(err)})
}
