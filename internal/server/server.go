package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/uploadimagens/apiserver/config"
	"github.com/uploadimagens/apiserver/internal/auth"
	"github.com/uploadimagens/apiserver/internal/db"
	"github.com/uploadimagens/apiserver/internal/events"
	"github.com/uploadimagens/apiserver/internal/handlers"
	"github.com/uploadimagens/apiserver/internal/services"
	"github.com/uploadimagens/apiserver/internal/storage"
	"github.com/uploadimagens/apiserver/internal/store"
	"github.com/uploadimagens/apiserver/internal/upload"
	"github.com/uploadimagens/apiserver/types"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
}

// New constructs a Server with basic middleware and the backends selected by
// config. The defaults (memory user store, local disk, no broker) need
// nothing external.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.Auth.Secret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	tokenTTL := time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute

	userRepo, dbConn, err := newUserRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	userService := services.NewUserService(userRepo)

	imageStore, err := newImageStore(ctx, cfg)
	if err != nil {
		closeDB(dbConn)
		return nil, err
	}

	backend, err := newEventsBackend(ctx, cfg)
	if err != nil {
		closeDB(dbConn)
		return nil, err
	}
	publisher := events.NewPublisher(backend)

	validator := upload.NewValidator(cfg.Upload.MaxFiles, cfg.Upload.MaxFileSize)
	fileHandler := handlers.NewFileHandler(imageStore, validator, publisher)

	authMiddleware := auth.RequireAuth([]byte(jwtSecret))
	adminMiddleware := auth.RequireRole(types.RoleAdmin)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret, tokenTTL)
	})
	router.Route("/file", func(r chi.Router) {
		handlers.FileRouter(r, fileHandler, authMiddleware, adminMiddleware)
	})
	router.Get(storage.PublicPathPrefix+"{filename}", fileHandler.ServeUpload)

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
		db:         dbConn,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	closeDB(s.db)
	return s.httpServer.Close()
}

func newUserRepository(ctx context.Context, cfg config.Config) (services.UserRepository, *sql.DB, error) {
	switch cfg.UserStore {
	case "", config.UserStoreMemory:
		return store.NewMemoryUserRepository(), nil, nil
	case config.UserStorePostgres:
		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresUserRepository(dbConn), dbConn, nil
	default:
		return nil, nil, fmt.Errorf("unknown user store %q", cfg.UserStore)
	}
}

func newImageStore(ctx context.Context, cfg config.Config) (storage.ImageStore, error) {
	switch cfg.StorageBackend {
	case "", config.StorageLocal:
		return storage.NewLocalStore(cfg.Upload.Dir)
	case config.StorageMinio:
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage.NewObjectStore(client), nil
	case config.StorageGCS:
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage.NewObjectStore(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newEventsBackend(ctx context.Context, cfg config.Config) (events.Backend, error) {
	switch cfg.EventsBackend {
	case "", config.EventsNone:
		return events.NewNopBackend(), nil
	case config.EventsRabbitMQ:
		return events.NewRabbitMQClient(cfg.RabbitMQ)
	case config.EventsPubSub:
		return events.NewPubSubClient(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}

func closeDB(dbConn *sql.DB) {
	if dbConn != nil {
		_ = dbConn.Close()
	}
}
