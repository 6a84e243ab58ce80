// Package oracle provides the Oracle Database adapter for leapcat.
package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/godror/godror"
	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/leapstack-labs/leapcat/pkg/catalog"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/leapstack-labs/leapcat/pkg/ident"
)

const defaultPort = 1521

// Adapter implements the adapter.Adapter interface for Oracle.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new Oracle adapter instance.
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
	return "oracle"
}

// Connect establishes a connection to Oracle.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := connectionParams(cfg)
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to oracle",
		slog.String("connect_string", params.ConnectString),
		slog.String("user", params.Username))

	if err := a.Open(ctx, "godror", params.StringWithPassword(), cfg); err != nil {
		return err
	}

	a.DB.SetMaxOpenConns(4)
	a.DB.SetMaxIdleConns(2)
	a.DB.SetConnMaxLifetime(5 * time.Minute)
	return nil
}

// connectionParams builds the godror parameters. The connect string is taken
// verbatim from the connect_string option (TNS alias or descriptor) when set,
// otherwise it is the easy-connect form host:port/service.
func connectionParams(cfg adapter.Config) (godror.ConnectionParams, error) {
	var p godror.ConnectionParams
	p.Username = cfg.Username
	p.Password = godror.NewPassword(cfg.Password)

	if cs := cfg.Options["connect_string"]; cs != "" {
		p.ConnectString = cs
		return p, nil
	}

	if cfg.Database == "" {
		return p, fmt.Errorf("oracle target requires a service name (database) or options.connect_string")
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	p.ConnectString = host + ":" + strconv.Itoa(port) + "/" + cfg.Database

	if role := cfg.Options["admin_role"]; role != "" {
		switch role {
		case "sysdba":
			p.AdminRole = godror.SysDBA
		case "sysoper":
			p.AdminRole = godror.SysOPER
		default:
			return p, fmt.Errorf("unknown oracle admin_role %q (expected sysdba or sysoper)", role)
		}
	}
	return p, nil
}

// Dictionary returns the ALL_* view requests.
func (a *Adapter) Dictionary() catalog.Dictionary {
	return Dictionary{}
}

// DDLDictionary returns the DBMS_METADATA requests.
func (a *Adapter) DDLDictionary() ddl.Dictionary {
	return DDLDictionary{}
}

// Normalizer folds unquoted identifiers to upper case.
func (a *Adapter) Normalizer() ident.Normalizer {
	return ident.Upper()
}

// PredefinedTypes returns the Oracle built-in types.
func (a *Adapter) PredefinedTypes() *core.TypeTable {
	return predefinedTypes
}
