package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/hoanglong/serica/internal/config"
	"github.com/hoanglong/serica/internal/glossary"
	"github.com/hoanglong/serica/internal/jobs"
	"github.com/hoanglong/serica/internal/library"
	"github.com/hoanglong/serica/internal/pipeline"
	"github.com/hoanglong/serica/internal/server"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Serica server",
	Long: `Start the Serica HTTP server.

With database.url configured the server persists to Postgres; without it,
everything lives in memory and is lost on restart.

Examples:
  serica serve                      # Listen on :8080
  serica serve --listen :3000       # Custom address`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()
		cfg := cfgMgr.Get()

		var (
			lib      library.Store
			gloss    glossary.Store
			jobStore jobs.RecordStore
		)
		if url := cfg.DatabaseURL(); url != "" {
			pool, err := pgxpool.New(ctx, url)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}
			lib = library.NewPostgresStore(pool)
			gloss = glossary.NewPostgresStore(pool)
			jobStore = jobs.NewPostgresRecordStore(pool)
			logger.Info("using postgres storage")
		} else {
			lib = library.NewMemoryStore()
			gloss = glossary.NewMemoryStore()
			jobStore = jobs.NewMemoryRecordStore()
			logger.Warn("no database.url configured, using in-memory storage")
		}

		manager := jobs.NewManager(jobs.ManagerConfig{
			Store:         jobStore,
			Logger:        logger,
			MaxAttempts:   cfg.Jobs.MaxAttempts,
			RetryDelay:    time.Duration(cfg.Jobs.RetryDelaySeconds) * time.Second,
			Retryable:     pipeline.Retryable,
			ErrorText:     pipeline.FormattedReport,
			LaneQueueSize: cfg.Jobs.LaneQueueSize,
		})

		listen := serveListen
		if listen == "" {
			listen = cfg.Server.Listen
		}

		srv, err := server.New(server.Config{
			Listen:        listen,
			ConfigManager: cfgMgr,
			Library:       lib,
			Glossary:      gloss,
			Jobs:          manager,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start(ctx) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		// Signal received: drain in-flight requests and jobs.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Address to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
