package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"training_tracker/internal/config"
	"training_tracker/internal/database"
	"training_tracker/internal/handlers"
	"training_tracker/internal/logger"
	"training_tracker/internal/routes"
	"training_tracker/internal/services"
)

type Server struct {
	http *http.Server
	pool *pgxpool.Pool
}

// ServiceOptions maps configuration onto the service layer.
func ServiceOptions(cfg *config.Config) services.Options {
	return services.Options{
		ExpiringWindowDays: cfg.ExpiringWindowDays,
		MatchThreshold:     cfg.MatchThreshold,
		AdminPasswordHash:  cfg.AdminPasswordHash,
		SessionSecret:      cfg.SessionSecret,
		SessionTTL:         cfg.SessionTTL,
	}
}

// NewRouter wires handlers, middlewares and routes around svc.
func NewRouter(cfg *config.Config, svc *services.Services) *gin.Engine {
	router := gin.New()
	router.Use(logger.Middleware(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(svc.Auth, cfg.CookieSecure),
		Positions:  handlers.NewPositionHandler(svc.Positions),
		Courses:    handlers.NewCourseHandler(svc.Courses),
		Employees:  handlers.NewEmployeeHandler(svc.Employees, svc.Training),
		Training:   handlers.NewTrainingHandler(svc.Training),
		Compliance: handlers.NewComplianceHandler(svc.Compliance),
		Imports:    handlers.NewImportHandler(svc.Imports),
		Comments:   handlers.NewCommentHandler(svc.Comments),
	}, svc.Auth)

	return router
}

// NewServer connects to the database, applies migrations and builds the
// HTTP server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := database.EnsureDatabaseExists(ctx, cfg); err != nil {
		return nil, err
	}
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	if cfg.AdminPasswordHash == "" {
		zap.L().Warn("ADMIN_PASSWORD_HASH is not set, admin login is disabled")
	}

	// Dependency injection
	svc := services.New(services.PostgresStores(pool), ServiceOptions(cfg))
	router := NewRouter(cfg, svc)

	return &Server{
		pool: pool,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}, nil
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the pool.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.pool.Close()
	return s.http.Shutdown(ctx)
}
