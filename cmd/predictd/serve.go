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

	"predictd/internal/config"
	"predictd/internal/history"
	"predictd/internal/httpapi"
	"predictd/internal/manager"
	"predictd/internal/registry"
	"predictd/pkg/types"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP prediction server",
		Example: "  predictd serve --addr :8000\n  predictd serve --models-dir ./models --watch --history-db ~/.predictd/history.db",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), &f, os.Getenv)
			if err != nil {
				return err
			}
			log, closer, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer closer.Close()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, log)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

// loadRegistry reads dir, or the built-in models when dir is empty.
func loadRegistry(dir string) ([]types.ModelDefinition, error) {
	if dir == "" {
		return registry.Builtin()
	}
	return registry.LoadDir(dir)
}

// runServe serves until ctx is done, then drains the HTTP server.
func runServe(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	defs, err := loadRegistry(cfg.ModelsDir)
	if err != nil {
		return fmt.Errorf("load models: %w", err)
	}
	maxWait, _ := cfg.MaxWaitDuration()
	predictTimeout, _ := cfg.PredictTimeoutDuration()

	hub := httpapi.NewEventHub(nil)
	defer hub.Close()
	mcfg := manager.ManagerConfig{
		Registry:      defs,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxInflight:   cfg.MaxInflight,
		MaxWait:       maxWait,
		CacheSize:     cfg.CacheSize,
		Publisher:     manager.MultiPublisher{hub, manager.NewLogPublisher(log)},
		Logger:        &log,
	}
	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		mcfg.History = store
	}
	mgr := manager.NewWithConfig(mcfg)
	defer mgr.Close()

	if cfg.Watch && cfg.ModelsDir != "" {
		w, err := registry.Watch(ctx, cfg.ModelsDir, 0, mgr.SetRegistry, func(err error) {
			log.Warn().Err(err).Msg("model reload failed; keeping previous registry")
			mgr.RecordError(err)
		})
		if err != nil {
			return err
		}
		defer w.Close()
	}

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetPredictTimeout(predictTimeout)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)
	if cfg.Log.Request != "" {
		httpapi.SetDefaultRequestLogLevel(cfg.Log.Request)
	}
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMuxWithOptions(mgr, httpapi.Options{Events: hub}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Int("models", len(defs)).Str("models_dir", cfg.ModelsDir).Msg("predictd listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	_ = mgr.Close()
	hub.Close()
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		cancelBase()
		log.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	return nil
}
