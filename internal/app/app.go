// Package app wires configuration, storage and services into a running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/hafiz-bot/internal/config"
	"github.com/aliskhannn/hafiz-bot/internal/infra/postgres"
	"github.com/aliskhannn/hafiz-bot/internal/infra/sqlite"
	"github.com/aliskhannn/hafiz-bot/internal/repository"
	"github.com/aliskhannn/hafiz-bot/internal/service"
	"github.com/aliskhannn/hafiz-bot/internal/storage"
)

const sqliteFileName = "hafiz.db"

// App holds the services shared by the bot and the CLI.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Surahs   *repository.SurahRepository
	Students *service.StudentService
	Reports  *service.ReportService

	closers []func() error
}

// New opens the configured storage, loads the reference table and the stored students.
// A collection that cannot be loaded is logged and replaced by an empty one.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	surahs, err := repository.NewSurahRepository(cfg.SurahsJSONPath)
	if err != nil {
		return nil, fmt.Errorf("load surah table: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	gateway, closeGateway, err := NewGateway(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	students := service.NewStudentService(
		repository.NewStudentRepository(gateway, cfg.Storage.Key),
		surahs,
		logger,
	)
	if err := students.Load(ctx); err != nil {
		logger.Warn("starting with an empty student list", zap.Error(err))
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Surahs:   surahs,
		Students: students,
		Reports:  service.NewReportService(surahs, loc),
		closers:  []func() error{closeGateway},
	}, nil
}

// Close releases storage resources.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewScheduler builds the periodic report scheduler, or returns nil when no schedule is configured.
func (a *App) NewScheduler() (*service.ReportScheduler, error) {
	if strings.TrimSpace(a.Config.Report.Schedule) == "" {
		return nil, nil
	}

	mode, err := service.ParseReportMode(a.Config.Report.Mode)
	if err != nil {
		return nil, err
	}
	loc, err := a.Config.Location()
	if err != nil {
		return nil, err
	}

	s := service.NewReportScheduler(
		a.Students,
		a.Reports,
		a.Config.Report.Schedule,
		loc,
		mode,
		a.Config.Report.ChatIDs,
		a.Logger,
	)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewGateway opens the storage backend selected by storage.driver.
// The returned function releases it.
func NewGateway(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Gateway, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		return storage.NewMemoryGateway(), noop, nil

	case config.DriverFile, "":
		gw, err := storage.NewFileGateway(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open file storage: %w", err)
		}
		logger.Info("using file storage", zap.String("dir", cfg.Storage.Path))
		return gw, noop, nil

	case config.DriverSQLite:
		path := sqlitePath(cfg.Storage.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		kv, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		logger.Info("using sqlite storage", zap.String("path", path))
		return kv, kv.Close, nil

	case config.DriverPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		kv := postgres.NewKVStore(pool)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("using postgres storage")
		return kv, func() error { pool.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.Storage.Driver)
	}
}

// sqlitePath treats storage.path as a database file when it has an extension,
// otherwise as the directory holding hafiz.db.
func sqlitePath(p string) string {
	if filepath.Ext(p) != "" {
		return p
	}
	return filepath.Join(p, sqliteFileName)
}
