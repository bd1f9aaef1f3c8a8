package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shecare/internal/config"
	"shecare/internal/database"
	"shecare/internal/pkg/logger"
	"shecare/internal/repository"
	"shecare/internal/server"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "shecare-api",
		Short:         "SheCare booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := repository.Migrate(db); err != nil {
				return err
			}
			log.Info("schema up to date")
			return nil
		},
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(log)
	return cfg, log, nil
}

func runServer() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := repository.Migrate(db); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		log.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	}

	srv, err := server.New(server.Deps{Config: cfg, DB: db, Logger: log, Redis: rdb})
	if err != nil {
		return err
	}

	if cfg.HasBootstrapAdmin() {
		if _, err := srv.Admin.EnsureAccount(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminProviderName); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	log.Info("starting shecare api",
		zap.String("env", cfg.AppEnv),
		zap.Bool("redis", rdb != nil),
	)
	return srv.Run(ctx)
}
