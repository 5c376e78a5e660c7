// Package server assembles the stores, services and HTTP stack and runs them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/config"
	"storefront-backend/internal/handlers"
	"storefront-backend/internal/media"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/notify"
	"storefront-backend/internal/services"
	"storefront-backend/internal/store"
	"storefront-backend/internal/store/mongostore"
)

const shutdownTimeout = 10 * time.Second

// Stores groups the repositories the services run on.
type Stores interface {
	Users() store.Users
	Products() store.Products
	Inquiries() store.Inquiries
}

// Server wraps the HTTP server and the resources it must release on shutdown.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
	closers    []func(context.Context) error
}

// New connects to MongoDB and the optional broker and object store, then builds the router.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	db, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	s := &Server{logger: logger}
	s.closers = append(s.closers, db.Close)

	if err := db.EnsureIndexes(ctx); err != nil {
		s.release()
		return nil, err
	}

	var publisher notify.Publisher = notify.Nop{}
	if cfg.RabbitMQ.Enabled() {
		mq, err := notify.NewRabbitMQ(cfg.RabbitMQ)
		if err != nil {
			s.release()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		publisher = mq
		s.closers = append(s.closers, func(context.Context) error { return mq.Close() })
		logger.Info().Str("queue", cfg.RabbitMQ.Queue).Msg("inquiry notifications enabled")
	}

	var images *media.Images
	if cfg.Minio.Enabled() {
		storage, err := media.NewMinioStorage(cfg.Minio)
		if err != nil {
			s.release()
			return nil, fmt.Errorf("minio: %w", err)
		}
		images = media.NewImages(storage, logger)
		if err := images.EnsureBucket(ctx); err != nil {
			s.release()
			return nil, fmt.Errorf("minio bucket: %w", err)
		}
		logger.Info().Str("bucket", cfg.Minio.Bucket).Msg("product image uploads enabled")
	}

	router := NewRouter(cfg, logger, db, publisher, images)
	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// NewRouter wires services over stores and returns the gin engine with the full
// middleware chain. images may be nil.
func NewRouter(cfg *config.Config, logger zerolog.Logger, stores Stores, publisher notify.Publisher, images *media.Images) *gin.Engine {
	hasher := auth.NewHasher(cfg.BcryptCost)
	identity := services.NewIdentityService(stores.Users(), auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL), hasher, logger)

	h := handlers.New(handlers.Deps{
		Identity:  identity,
		Guard:     services.NewGuard(identity, stores.Users(), logger),
		Cart:      services.NewCartService(stores.Users(), logger),
		Catalog:   services.NewCatalogService(stores.Products(), logger),
		Inquiries: services.NewInquiryService(stores.Inquiries(), publisher, logger),
		Users:     services.NewUserAdminService(stores.Users(), hasher, logger),
		Images:    images,
		Logger:    logger,
	})

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.RequestLogging(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware(),
	)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
	handlers.Register(r, h.Routes())
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.release()
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	s.release()
	s.logger.Info().Msg("server stopped")
	return err
}

func (s *Server) release() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			s.logger.Warn().Err(err).Msg("close failed")
		}
	}
	s.closers = nil
}
