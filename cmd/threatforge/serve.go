package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"threatforge/internal/handler"
	"threatforge/internal/hub"
	"threatforge/internal/metrics"
	"threatforge/internal/service"
	"threatforge/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve [model.yaml]",
	Short: "Serve the diagram editor API",
	Long: `Starts the HTTP API for editing a threat model diagram. When a model file is
given it is opened immediately and reloaded whenever another program edits it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().Bool("no-watch", false, "Do not reload the model when the file changes on disk")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	logger := newLogger(cfg)
	logger.Info("starting threatforge", "config", cfg.Summary())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var modelPath string
	if len(args) == 1 {
		modelPath = args[0]
	}

	m := metrics.New()
	bus := service.NewEventBus()
	sess, err := openSession(ctx, cfg, logger, m, bus, modelPath)
	if err != nil {
		return err
	}
	defer sess.Close()
	svc := sess.svc

	if modelPath == "" {
		if _, err := svc.NewModel(ctx, "Untitled Threat Model", ""); err != nil {
			return err
		}
	}

	sse := hub.New(logger)
	go sse.Run(ctx)
	go sse.Forward(ctx, bus)

	if noWatch, _ := cmd.Flags().GetBool("no-watch"); !noWatch && modelPath != "" {
		w := watcher.New(svc.Path(), func(string) {
			if _, err := svc.ReloadIfChanged(ctx); err != nil {
				logger.Warn("failed to reload model", "path", svc.Path(), "error", err)
			}
		}).WithLogger(logger)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("file watcher stopped", "error", err)
			}
		}()
	}

	if cfg.Autosave.Enabled {
		go func() {
			if err := svc.RunAutosave(ctx, cfg.Autosave.Interval.Duration()); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("autosave stopped", "error", err)
			}
		}()
	}

	opts := []handler.Option{handler.WithEvents(sse), handler.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		opts = append(opts, handler.WithMetrics(m.Handler()))
	}

	// no write timeout: the event stream stays open
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handler.New(svc, opts...).Routes(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if cfg.Autosave.Enabled && svc.Dirty() && svc.Path() != "" {
		if err := svc.Save(shutdownCtx); err != nil {
			logger.Error("failed to save pending edits", "path", svc.Path(), "error", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
