package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapcat/internal/cli/config"
	"github.com/leapstack-labs/leapcat/internal/cli/output"
	"github.com/leapstack-labs/leapcat/internal/state"
	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/leapstack-labs/leapcat/pkg/catalog"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Renderer  *output.Renderer
	Adapter   adapter.Adapter
	Catalog   *catalog.Database
	Assembler *ddl.Assembler
}

// NewCommandContext connects to the configured target and builds the catalog
// and DDL assembler over it.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutTarget(cmd)
	cfg := cmdCtx.Cfg

	a, err := adapter.NewAdapter(cfg.Target.AdapterConfig(), cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := a.Connect(cmd.Context(), cfg.Target.AdapterConfig()); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.Target.Display(), err)
	}

	db := adapter.OpenDatabase(a, databaseName(cfg.Target), catalog.Options{
		BatchChildren: true,
		Logger:        cmdCtx.Logger,
	})
	cmdCtx.Adapter = a
	cmdCtx.Catalog = db
	cmdCtx.Assembler = ddl.NewAssembler(ddl.Config{
		Exec:       a.Executor(),
		Dictionary: a.DDLDictionary(),
		Principals: db,
		Excluded:   cfg.DDL.ExcludedPrincipals,
		Normalizer: a.Normalizer(),
		Logger:     cmdCtx.Logger,
	})

	cleanup := func() {
		if err := a.Close(); err != nil {
			cmdCtx.Logger.Warn("failed to close connection", slog.String("error", err.Error()))
		}
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutTarget creates a CommandContext without a connection.
// Useful for commands that only read local state.
func NewCommandContextWithoutTarget(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// OpenState opens the dump history store, creating its directory if needed.
func (c *CommandContext) OpenState(ctx context.Context) (*state.Store, error) {
	if dir := filepath.Dir(c.Cfg.StatePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store := state.NewStore(c.Logger)
	if err := store.Open(ctx, c.Cfg.StatePath); err != nil {
		return nil, err
	}
	return store, nil
}

// Schema resolves a schema name, falling back to the target's default schema.
func (c *CommandContext) Schema(ctx context.Context, name string) (*catalog.Schema, error) {
	if name == "" {
		name = c.Cfg.Target.Schema
	}
	if name == "" {
		return nil, fmt.Errorf("no schema given and target has no default schema")
	}
	return c.Catalog.RequireSchema(ctx, name)
}

// Object resolves "[schema.]name" to a catalog object. An empty kind searches
// the kinds a synonym may point to.
func (c *CommandContext) Object(ctx context.Context, ref string, kind core.Kind) (core.Named, error) {
	schemaName, name := splitRef(ref)
	s, err := c.Schema(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	obj, err := s.Object(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, &core.NotFoundError{Kind: kind, Name: name, Container: s.Name()}
	}
	return obj, nil
}

// DDLOptions merges the configured DDL options with the command's skip flags.
func (c *CommandContext) DDLOptions(cmd *cobra.Command) ddl.Options {
	opts := c.Cfg.DDL.Options()
	if v, _ := cmd.Flags().GetBool("skip-foreign-keys"); v {
		opts.SkipForeignKeys = true
	}
	if v, _ := cmd.Flags().GetBool("skip-triggers"); v {
		opts.SkipTriggers = true
	}
	if v, _ := cmd.Flags().GetBool("skip-indexes"); v {
		opts.SkipIndexes = true
	}
	if v, _ := cmd.Flags().GetBool("storage"); v {
		opts.StorageClauses = true
	}
	return opts
}

// DDLFormat returns the --format flag, or the configured format when unset.
func (c *CommandContext) DDLFormat(cmd *cobra.Command) (ddl.Format, error) {
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		return ddl.ParseFormat(f.Value.String())
	}
	return c.Cfg.DDL.ParsedFormat()
}

// addDDLFlags registers the flags shared by ddl and dump.
func addDDLFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "DDL format (compact|default|full)")
	cmd.Flags().Bool("skip-foreign-keys", false, "Omit foreign key constraints")
	cmd.Flags().Bool("skip-triggers", false, "Omit triggers")
	cmd.Flags().Bool("skip-indexes", false, "Omit indexes")
	cmd.Flags().Bool("storage", false, "Keep storage and segment clauses")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(ddl.FormatCompact), string(ddl.FormatDefault), string(ddl.FormatFull)}, cobra.ShellCompDirectiveNoFileComp
	})
}

// parseKind parses the --kind flag. An empty flag yields the empty kind.
func parseKind(cmd *cobra.Command) (core.Kind, error) {
	raw, _ := cmd.Flags().GetString("kind")
	if raw == "" {
		return "", nil
	}
	kind, ok := core.ParseKind(raw)
	if !ok {
		return "", fmt.Errorf("unknown object kind %q", raw)
	}
	return kind, nil
}

// splitRef splits "schema.name" at the first dot. A bare name has no schema.
func splitRef(ref string) (schema, name string) {
	if schema, name, ok := strings.Cut(ref, "."); ok {
		return schema, name
	}
	return "", ref
}

func databaseName(t *config.TargetConfig) string {
	if t.Database != "" {
		return filepath.Base(t.Database)
	}
	return strings.ToLower(t.Type)
}

// getConfig returns the current configuration, or the defaults when none was
// loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		StatePath:    config.DefaultStateFile,
		OutputFormat: config.DefaultOutput,
		Target:       &config.TargetConfig{Type: "duckdb", Schema: "main"},
		DDL:          &config.DDLConfig{Format: config.DefaultDDLFormat},
	}
}

func comment(obj core.Named) string {
	if c, ok := obj.(core.Commented); ok {
		return c.Comment()
	}
	return ""
}
