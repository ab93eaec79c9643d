package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/izposoja/internal/api"
	"github.com/erazemk/izposoja/internal/auth"
	"github.com/erazemk/izposoja/internal/catalog"
	"github.com/erazemk/izposoja/internal/config"
	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/logging"
	"github.com/erazemk/izposoja/internal/metrics"
	"github.com/erazemk/izposoja/internal/notify"
	"github.com/erazemk/izposoja/internal/store"
	"github.com/erazemk/izposoja/internal/telemetry"
)

// purgeInterval is how often expired entries are dropped from the token
// revocation list.
const purgeInterval = time.Hour

func newServeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server, creating the database on first run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	log, closeLog, err := logging.Setup(cfg.Log, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	shutdownTracing, err := telemetry.Setup(cfg.Tracing, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to flush traces")
		}
	}()

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DB); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(ctx, cfg.DB, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(os.Stdout, cfg.DB, cfg.AdminUser, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}
	log.Info().Str("path", cfg.DB).Msg("database ready")

	secret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}

	m := metrics.New(cfg.Metrics)
	outbox := notify.NewOutbox(database, logging.Component(log, "notify"))
	engine := lending.New(store.TxRunner{DB: database}, outbox,
		lending.WithLogger(logging.Component(log, "lending")),
		lending.WithObserver(m),
	)

	handler := api.NewRouter(api.Deps{
		DB:        database,
		Issuer:    auth.NewIssuer(secret),
		Engine:    engine,
		Catalog:   catalog.New(database, outbox, logging.Component(log, "catalog")),
		Inbox:     notify.NewInbox(database),
		Metrics:   m,
		LoginRate: cfg.LoginRate,
		Log:       logging.Component(log, "api"),
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
		return nil
	})
	g.Go(func() error {
		purgeRevoked(gctx, database, log)
		return nil
	})

	err = g.Wait()
	log.Info().Msg("server stopped, closing database")
	return err
}

func purgeRevoked(ctx context.Context, database store.DBTX, log zerolog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeRevokedTokens(ctx, database, now)
			if err != nil {
				log.Warn().Err(err).Msg("purging revoked tokens")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("expired revocations removed")
			}
		}
	}
}
