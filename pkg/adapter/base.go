package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapcat/pkg/query"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Executor and connection handling.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger

	exec *query.SQLExecutor
}

// Open opens a database/sql connection with the named driver, pings it and
// keeps it on the adapter.
func (b *BaseSQLAdapter) Open(ctx context.Context, driver, dsn string, cfg Config) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	b.Attach(db, cfg)
	return nil
}

// Attach uses an already opened database handle.
func (b *BaseSQLAdapter) Attach(db *sql.DB, cfg Config) {
	b.DB = db
	b.Cfg = cfg
	b.exec = nil
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		b.logger().Debug("closing database connection")
		err := b.DB.Close()
		b.DB = nil
		b.exec = nil
		return err
	}
	return nil
}

// Executor returns the query executor over the connection. Before Connect it
// returns an executor that fails every request.
func (b *BaseSQLAdapter) Executor() query.Executor {
	if b.exec == nil || b.exec.DB != b.DB {
		b.exec = query.NewSQLExecutor(b.DB, b.logger())
	}
	return b.exec
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		b.Logger = slog.New(slog.DiscardHandler)
	}
	return b.Logger
}
