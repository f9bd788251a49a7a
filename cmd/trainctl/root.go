package main

import (
	"context"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"training_tracker/internal/config"
	"training_tracker/internal/database"
	"training_tracker/internal/logger"
	"training_tracker/internal/server"
	"training_tracker/internal/services"
)

// cli carries what every command needs. svc is built from the database
// unless it was provided up front.
type cli struct {
	out  io.Writer
	pool *pgxpool.Pool
	svc  *services.Services
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "trainctl",
		Short: "Operator tools for the training compliance tracker",
		Long: `trainctl runs maintenance jobs against the tracker database:
schema migrations, import reconciliation, duplicate course cleanup and
expiry reports. It reads the same environment as the API server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.svc != nil {
				return nil
			}
			return c.connect(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.pool != nil {
				c.pool.Close()
			}
			logger.Sync()
		},
	}
	root.SetOut(c.out)

	root.AddCommand(
		newMigrateCmd(c),
		newReconcileCmd(c),
		newApplyCmd(c),
		newDuplicatesCmd(c),
		newMergeCmd(c),
		newExpiringCmd(c),
	)
	return root
}

func (c *cli) connect(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if _, err := logger.New(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	c.pool = pool
	c.svc = services.New(services.PostgresStores(pool), server.ServiceOptions(cfg))
	zap.L().Debug("trainctl connected")
	return nil
}
