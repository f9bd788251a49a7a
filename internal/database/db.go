package database

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"training_tracker/internal/config"
)

// EnsureDatabaseExists creates the application database when admin
// credentials are configured and the database is missing.
func EnsureDatabaseExists(ctx context.Context, cfg *config.Config) error {
	if cfg.DBAdminUser == "" || cfg.DBAdminPassword == "" {
		zap.L().Debug("DB_ADMIN_USER not set, skipping database creation check")
		return nil
	}

	log := zap.L().With(zap.String("database", cfg.DBDatabase))
	log.Info("checking if database exists")

	pool, err := pgxpool.New(ctx, cfg.AdminDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	if err := pool.QueryRow(ctx, query, cfg.DBDatabase).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		log.Info("database already exists")
		return nil
	}

	// CREATE DATABASE cannot run inside a transaction and takes no parameters.
	createQuery := fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{cfg.DBDatabase}.Sanitize())
	if _, err := pool.Exec(ctx, createQuery); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	log.Info("database created")
	return nil
}

// Connect opens the connection pool and pings the database.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	zap.L().Info("connecting to database", zap.String("url", cfg.RedactedDatabaseURL()))

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string (check your .env file): %w", err)
	}

	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.MaxConnLifetime = 5 * time.Minute
	poolCfg.MaxConnIdleTime = 1 * time.Minute

	return open(ctx, poolCfg)
}

// ConnectURL opens a pool for an explicit connection string.
func ConnectURL(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	return open(ctx, poolCfg)
}

const connectAttempts = 5

func open(ctx context.Context, poolCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// The database may still be starting when the service comes up.
	err = retry.Do(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	},
		retry.Context(ctx),
		retry.Attempts(connectAttempts),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			zap.L().Warn("database not reachable yet", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	zap.L().Info("database connection pool established")
	return pool, nil
}
