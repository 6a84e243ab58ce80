// Package postgres provides a PostgreSQL database adapter for leapcat.
package postgres

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/leapstack-labs/leapcat/pkg/catalog"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/leapstack-labs/leapcat/pkg/ident"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
	return "postgres"
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("invalid postgres connection settings: %w", err)
	}
	if app := cfg.Options["application_name"]; app != "" {
		connCfg.RuntimeParams["application_name"] = app
	} else {
		connCfg.RuntimeParams["application_name"] = "leapcat"
	}

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.Attach(db, cfg)
	return nil
}

// buildPostgresDSN renders a keyword/value connection string. Target options
// other than application_name are passed through after the fixed keywords;
// pgx turns keywords it does not know (search_path, ...) into runtime
// parameters.
func buildPostgresDSN(cfg adapter.Config) string {
	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	parts := []string{
		"host=" + dsnValue(cmp.Or(cfg.Host, "localhost")),
		"port=" + strconv.Itoa(cmp.Or(cfg.Port, 5432)),
		"dbname=" + dsnValue(cfg.Database),
		"sslmode=" + dsnValue(sslmode),
	}
	if cfg.Username != "" {
		parts = append(parts, "user="+dsnValue(cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+dsnValue(cfg.Password))
	}
	for _, k := range slices.Sorted(maps.Keys(cfg.Options)) {
		switch k {
		case "sslmode", "application_name":
			continue
		}
		parts = append(parts, k+"="+dsnValue(cfg.Options[k]))
	}
	return strings.Join(parts, " ")
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// dsnValue quotes a value that is empty or contains spaces, quotes or
// backslashes.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	return "'" + dsnEscaper.Replace(v) + "'"
}

// Dictionary returns the information_schema and pg_catalog requests.
func (a *Adapter) Dictionary() catalog.Dictionary {
	return dictionary
}

// DDLDictionary returns the pg_get_*def requests.
func (a *Adapter) DDLDictionary() ddl.Dictionary {
	return DDLDictionary{}
}

// Normalizer folds unquoted identifiers to lower case.
func (a *Adapter) Normalizer() ident.Normalizer {
	return ident.Lower()
}

// PredefinedTypes returns the PostgreSQL built-in types.
func (a *Adapter) PredefinedTypes() *core.TypeTable {
	return predefinedTypes
}
