package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"threatforge/internal/config"
	"threatforge/internal/metrics"
	"threatforge/internal/repository"
	"threatforge/internal/repository/file"
	"threatforge/internal/repository/redis"
	"threatforge/internal/repository/sqlite"
	"threatforge/internal/service"
)

const pingTimeout = 3 * time.Second

// openLayoutStore returns the layout backend selected by cfg. The file
// backend reuses files so layouts sit next to the model.
func openLayoutStore(ctx context.Context, cfg *config.Config, files *file.Store) (repository.LayoutStore, error) {
	switch cfg.Layout.Backend {
	case config.BackendSQLite:
		repo, err := sqlite.New(cfg.Layout.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open layout database: %w", err)
		}
		return repo, nil

	case config.BackendRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.Layout.RedisPrefix)}
		if cfg.Layout.RedisTTL != nil {
			opts = append(opts, redis.WithTTL(cfg.Layout.RedisTTL.Duration()))
		}
		store := redis.New(cfg.Layout.RedisAddr, cfg.Layout.RedisPassword, cfg.Layout.RedisDB, opts...)

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			store.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Layout.RedisAddr, err)
		}
		return store, nil

	default:
		return files, nil
	}
}

// session is a diagram service together with the stores it owns
type session struct {
	svc     *service.DiagramService
	layouts repository.LayoutStore
}

func (s *session) Close() error {
	return s.layouts.Close()
}

// openSession builds a diagram service and opens path when it is not empty
func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, bus *service.EventBus, path string) (*session, error) {
	files := file.New()
	layouts, err := openLayoutStore(ctx, cfg, files)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{service.WithLogger(logger)}
	if m != nil {
		opts = append(opts, service.WithMetrics(m))
	}
	svc := service.NewDiagramService(files, layouts, bus, opts...)

	if path != "" {
		if _, err := svc.Open(ctx, path); err != nil {
			layouts.Close()
			return nil, fmt.Errorf("open model: %w", err)
		}
	}
	return &session{svc: svc, layouts: layouts}, nil
}
