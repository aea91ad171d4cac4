package checkersbuilder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/park285/cheese-checkers/internal/adapter/checkerspresenter"
	"github.com/park285/cheese-checkers/internal/computer"
	"github.com/park285/cheese-checkers/internal/config"
	"github.com/park285/cheese-checkers/internal/msgcat"
	"github.com/park285/cheese-checkers/internal/service/cache"
	svccheckers "github.com/park285/cheese-checkers/internal/service/checkers"
	"go.uber.org/zap"
)

type Deps struct {
	Service   *svccheckers.Service
	Cache     *cache.CacheService
	Repo      svccheckers.Repository
	Formatter *checkerspresenter.Formatter

	db *sql.DB
}

// Close releases the Redis client and the database pool.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.db != nil {
		errs = append(errs, d.db.Close())
	}
	return errors.Join(errs...)
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cconf, err := cache.ParseRedisURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	cacheSvc, err := cache.NewCacheService(*cconf, logger.Named("cache"))
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	deps := &Deps{Cache: cacheSvc}

	repo, db, err := openRepository(cfg, logger)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Repo = repo
	deps.db = db

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("load messages: %w", err)
	}
	deps.Formatter = checkerspresenter.NewFormatter(catalog)

	svcCfg := svccheckers.Config{
		SessionTTL:       cfg.SessionTTL,
		HistoryLimit:     cfg.HistoryLimit,
		AllowedRooms:     append([]string(nil), cfg.AllowedRooms...),
		MandatoryCapture: cfg.MandatoryCapture,
	}
	service, err := svccheckers.NewService(
		cacheSvc,
		repo,
		svccheckers.NewSVGBoardRenderer(),
		computer.New(cfg.ComputerDelay, nil),
		svcCfg,
		logger.Named("checkers"),
	)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Service = service
	return deps, nil
}

func openRepository(cfg *config.AppConfig, logger *zap.Logger) (svccheckers.Repository, *sql.DB, error) {
	if cfg.DatabaseDriver == "memory" {
		logger.Warn("checkers_repository_in_memory", zap.String("reason", "no database configured"))
		return svccheckers.NewMemoryRepository(), nil, nil
	}

	db, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.DatabaseDriver, err)
	}
	if cfg.DatabaseDriver == svccheckers.DriverSQLite {
		// sqlite allows one writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", cfg.DatabaseDriver, err)
	}
	if err := svccheckers.Migrate(ctx, db, cfg.DatabaseDriver); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	repo, err := svccheckers.NewRepository(db, cfg.DatabaseDriver)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}
