// Package db owns the lifetime of the backing store: open, exclusive-lock,
// migrate, and deterministic close at shutdown. One Handle per process; the
// SQLite file is advisory-locked so a second taskdesk process fails fast
// instead of interleaving writes.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskdesk/internal/config"
	"taskdesk/pkg/task"
)

// Handle is an open task store plus whatever must be released on shutdown.
type Handle struct {
	Store task.Store

	lock    *flock.Flock
	closers []func() error
}

// Open builds the store selected by cfg and ensures its schema. Callers must
// Close the handle at teardown.
func Open(ctx context.Context, cfg config.Config) (*Handle, error) {
	if cfg.PostgresDSN != "" {
		return openPostgres(ctx, cfg.PostgresDSN)
	}
	return openSQLite(ctx, cfg.DBPath)
}

func openSQLite(ctx context.Context, path string) (*Handle, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock db file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("db file %s is in use by another process", path)
	}

	// Foreign keys must be on for parent deletion to cascade.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", path)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	store := task.NewSQLiteStore(gdb)
	if err := store.EnsureSchema(ctx); err != nil {
		if sqlDB, dbErr := gdb.DB(); dbErr == nil {
			sqlDB.Close()
		}
		lock.Unlock()
		return nil, err
	}

	h := &Handle{Store: store, lock: lock}
	h.closers = append(h.closers, func() error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return h, nil
}

func openPostgres(ctx context.Context, dsn string) (*Handle, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	store := task.NewPgStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	h := &Handle{Store: store}
	h.closers = append(h.closers, func() error {
		pool.Close()
		return nil
	})
	return h, nil
}

// Close flushes and releases the store and its lock. Safe to call once at
// the process's well-defined shutdown point.
func (h *Handle) Close() error {
	var firstErr error
	for _, c := range h.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if h.lock != nil {
		if err := h.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
