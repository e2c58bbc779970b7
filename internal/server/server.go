package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/memoria-app/apiserver/config"
	"github.com/memoria-app/apiserver/internal/db"
	"github.com/memoria-app/apiserver/internal/handlers"
	"github.com/memoria-app/apiserver/internal/services"
	"github.com/memoria-app/apiserver/internal/storage"
	"github.com/memoria-app/apiserver/internal/store"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *mongo.Database
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	database, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(database)
	postRepo := store.NewPostRepository(database)
	categoryRepo := store.NewCategoryRepository(database)

	userService := services.NewUserService(userRepo)
	postService := services.NewPostService(postRepo, cfg.EnforcePostOwnership)
	categoryService := services.NewCategoryService(categoryRepo)

	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		_ = database.Client().Disconnect(ctx)
		return nil, errors.New("JWT_SECRET is required")
	}

	auth := handlers.NewAuthHandler(userService, jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.Healthz)
	router.Route("/posts", func(r chi.Router) {
		handlers.PostRouter(r, postService, categoryService, auth)
	})
	router.Route("/user", func(r chi.Router) {
		handlers.UserRouter(r, userService, auth)
	})

	if imageStorage, err := newImageStorage(ctx, cfg.Storage); err != nil {
		log.Warn().Err(err).Msg("image storage unavailable, image routes disabled")
	} else {
		router.Route("/images", func(r chi.Router) {
			handlers.ImageRouter(r, imageStorage, cfg.Storage.PublicBaseURL, auth)
		})
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         database,
	}, nil
}

func newImageStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	var backend storage.ObjectStorage
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	}

	wrapped := storage.NewStorage(backend)
	if err := wrapped.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return wrapped, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Client().Disconnect(context.Background())
	}
	return s.httpServer.Close()
}
