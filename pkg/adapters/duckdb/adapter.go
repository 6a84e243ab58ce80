// Package duckdb provides a DuckDB database adapter for leapcat.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/leapstack-labs/leapcat/pkg/catalog"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/leapstack-labs/leapcat/pkg/ident"
	"github.com/marcboeker/go-duckdb"
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the backend name.
func (a *Adapter) DialectName() string {
	return "duckdb"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", cfg.Path), slog.Int("extensions", len(params.Extensions)))

	// Settings and extensions are per connection; the init hook applies them
	// to every connection the pool opens.
	connector, err := duckdb.NewConnector(path, func(execer driver.ExecerContext) error {
		return initConnection(context.Background(), execer, params)
	})
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	for _, secret := range params.Secrets {
		if _, err := db.ExecContext(ctx, buildCreateSecretSQL(secret)); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to create %s secret: %w", secret.Type, err)
		}
	}

	a.Attach(db, cfg)
	return nil
}

func initConnection(ctx context.Context, execer driver.ExecerContext, p *Params) error {
	for _, ext := range p.Extensions {
		for _, stmt := range []string{"INSTALL " + ext, "LOAD " + ext} {
			if _, err := execer.ExecContext(ctx, stmt, nil); err != nil {
				return fmt.Errorf("failed to %s: %w", stmt, err)
			}
		}
	}
	for name, value := range p.Settings {
		stmt := fmt.Sprintf("SET %s = %s", name, quote(value))
		if _, err := execer.ExecContext(ctx, stmt, nil); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", name, err)
		}
	}
	return nil
}

// Dictionary returns the information_schema and duckdb_* function requests.
func (a *Adapter) Dictionary() catalog.Dictionary {
	return dictionary
}

// DDLDictionary returns the requests reading the stored CREATE statements.
func (a *Adapter) DDLDictionary() ddl.Dictionary {
	return DDLDictionary{}
}

// Normalizer folds unquoted identifiers to lower case.
func (a *Adapter) Normalizer() ident.Normalizer {
	return ident.Lower()
}

// PredefinedTypes returns the DuckDB built-in types.
func (a *Adapter) PredefinedTypes() *core.TypeTable {
	return predefinedTypes
}
