package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tunecrate/internal/logging"
)

const (
	dbPingTimeout    = 5 * time.Second
	dbInitialBackoff = 250 * time.Millisecond
	dbMaxBackoff     = 5 * time.Second
)

// openDatabase opens a pool against cfg.DatabaseURL and pings it until the
// server answers or cfg.DBConnectTimeout elapses. The retry window is
// configurable so local runs can fail fast while container startups wait out
// a slow Postgres.
func openDatabase(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	deadline := time.Now().Add(cfg.DBConnectTimeout)
	backoff := dbInitialBackoff

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
		err = db.PingContext(pingCtx)
		cancel()

		switch {
		case err == nil:
			return db, nil
		case ctx.Err() != nil, !time.Now().Add(backoff).Before(deadline):
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}

		logging.Warn(fmt.Sprintf("database not ready (attempt %d), retrying in %s", attempt, backoff))
		time.Sleep(backoff)
		if backoff *= 2; backoff > dbMaxBackoff {
			backoff = dbMaxBackoff
		}
	}
}
