package store

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"finanalyzer/pkg/core/errs"
)

var (
	pool    *pgxpool.Pool
	once    sync.Once
	initErr error
)

// InitDB connects the process-wide pool from the DATABASE_URL environment
// variable. Safe to call repeatedly; every call returns the first attempt's
// outcome.
func InitDB(ctx context.Context) error {
	once.Do(func() {
		url := os.Getenv("DATABASE_URL")
		if url == "" {
			initErr = errs.Validation("DATABASE_URL environment variable not set", nil)
			return
		}

		cfg, err := pgxpool.ParseConfig(url)
		if err != nil {
			initErr = errs.ExternalAPI("failed to parse database config", err)
			return
		}

		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			initErr = errs.ExternalAPI("failed to connect database pool", err)
			return
		}
		pool = p
		log.Printf("[STORE] database pool connected")
	})
	return initErr
}

// GetPool returns the shared pool, nil before a successful InitDB.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the shared pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
