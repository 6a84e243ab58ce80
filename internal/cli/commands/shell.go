package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/spf13/cobra"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Browse the catalog interactively",
		Long: `Browse the catalog interactively.

The session keeps one catalog for its whole lifetime, so every container is
queried once and later commands are answered from the cache. Use "refresh"
to drop the cache after the database changed.`,
		Example: `  leapcat shell
  leapcat:HR> ls table
  leapcat:HR> describe EMPLOYEES
  leapcat:HR> format full
  leapcat:HR> ddl EMPLOYEES`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return runShell(cmd, cmdCtx)
		},
	}
	return cmd
}

func runShell(cmd *cobra.Command, cmdCtx *CommandContext) error {
	ctx := cmd.Context()
	sess, err := NewSession(cmdCtx)
	if err != nil {
		return err
	}

	stateDir := filepath.Dir(cmdCtx.Cfg.StatePath)
	if err := os.MkdirAll(stateDir, 0750); err != nil {
		cmdCtx.Logger.Debug("shell history disabled", slog.String("error", err.Error()))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          sess.Prompt(),
		HistoryFile:     filepath.Join(stateDir, "shell_history"),
		AutoComplete:    sess.completer(ctx),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "leapcat shell (%s)\n", cmdCtx.Cfg.Target.Display())
	_, _ = fmt.Fprintln(out, "Type help for commands, exit to quit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := sess.Exec(ctx, line)
		if err != nil {
			cmdCtx.Renderer.Error(err.Error())
		}
		if quit {
			return nil
		}
		rl.SetPrompt(sess.Prompt())
	}
}

// Session is the state of an interactive shell: the current schema and DDL
// settings over one long-lived catalog.
type Session struct {
	cmdCtx *CommandContext
	schema string
	format ddl.Format
	opts   ddl.Options
}

// NewSession starts a session in the target's default schema.
func NewSession(cmdCtx *CommandContext) (*Session, error) {
	format, err := cmdCtx.Cfg.DDL.ParsedFormat()
	if err != nil {
		return nil, err
	}
	return &Session{
		cmdCtx: cmdCtx,
		schema: cmdCtx.Cfg.Target.Schema,
		format: format,
		opts:   cmdCtx.Cfg.DDL.Options(),
	}, nil
}

// Prompt returns the prompt naming the current schema.
func (s *Session) Prompt() string {
	if s.schema == "" {
		return "leapcat> "
	}
	return "leapcat:" + s.schema + "> "
}

// Exec runs one shell line. It reports whether the session should end.
func (s *Session) Exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]
	r := s.cmdCtx.Renderer

	switch verb {
	case "exit", "quit", `\q`:
		return true, nil
	case "help", "?":
		s.help()
		return false, nil
	case "schemas":
		return false, printSchemas(ctx, s.cmdCtx)
	case "use":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: use <schema>")
		}
		schema, err := s.cmdCtx.Catalog.RequireSchema(ctx, args[0])
		if err != nil {
			return false, err
		}
		s.schema = schema.Name()
		return false, nil
	case "ls":
		kind, err := optionalKind(args, 0)
		if err != nil {
			return false, err
		}
		return false, printObjects(ctx, s.cmdCtx, s.schema, kind)
	case "ddl", "describe", "desc":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: %s <[schema.]object> [kind]", verb)
		}
		kind, err := optionalKind(args, 1)
		if err != nil {
			return false, err
		}
		ref := s.qualify(args[0])
		if verb == "ddl" {
			return false, printDDL(ctx, s.cmdCtx, ref, kind, s.format, s.opts)
		}
		return false, printDescription(ctx, s.cmdCtx, ref, kind)
	case "format":
		if len(args) != 1 {
			r.Println("format: " + string(s.format))
			return false, nil
		}
		format, err := ddl.ParseFormat(args[0])
		if err != nil {
			return false, err
		}
		s.format = format
		return false, nil
	case "refresh":
		s.cmdCtx.Catalog.Refresh()
		s.cmdCtx.Assembler.Reset()
		r.Success("catalog cache cleared")
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q (type help for commands)", verb)
	}
}

// qualify prefixes a bare object name with the current schema.
func (s *Session) qualify(ref string) string {
	if strings.Contains(ref, ".") || s.schema == "" {
		return ref
	}
	return s.schema + "." + ref
}

func optionalKind(args []string, i int) (core.Kind, error) {
	if len(args) <= i {
		return "", nil
	}
	kind, ok := core.ParseKind(args[i])
	if !ok {
		return "", fmt.Errorf("unknown object kind %q", args[i])
	}
	return kind, nil
}

func (s *Session) help() {
	r := s.cmdCtx.Renderer
	r.Println("Commands:")
	r.Println("  schemas                    list schemas")
	r.Println("  use <schema>               change the current schema")
	r.Println("  ls [kind]                  list objects of the current schema")
	r.Println("  describe <object> [kind]   show attributes and declarations")
	r.Println("  ddl <object> [kind]        print DDL in the current format")
	r.Println("  format [compact|default|full]")
	r.Println("  refresh                    drop cached catalog metadata")
	r.Println("  exit                       leave the shell")
}

// completer completes verbs, kinds and the names of the current schema's
// tables, views and program units.
func (s *Session) completer(ctx context.Context) *readline.PrefixCompleter {
	kinds, _ := completeKinds(nil, nil, "")
	kindItems := make([]readline.PrefixCompleterInterface, len(kinds))
	for i, k := range kinds {
		kindItems[i] = readline.PcItem(k)
	}
	names := readline.PcItemDynamic(func(string) []string {
		return s.objectNames(ctx)
	})

	return readline.NewPrefixCompleter(
		readline.PcItem("schemas"),
		readline.PcItem("use", readline.PcItemDynamic(func(string) []string { return s.schemaNames(ctx) })),
		readline.PcItem("ls", kindItems...),
		readline.PcItem("describe", names),
		readline.PcItem("ddl", names),
		readline.PcItem("format",
			readline.PcItem(string(ddl.FormatCompact)),
			readline.PcItem(string(ddl.FormatDefault)),
			readline.PcItem(string(ddl.FormatFull)),
		),
		readline.PcItem("refresh"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func (s *Session) schemaNames(ctx context.Context) []string {
	schemas, err := s.cmdCtx.Catalog.Schemas(ctx)
	if err != nil {
		return nil
	}
	out := make([]string, len(schemas))
	for i, sc := range schemas {
		out[i] = sc.Name()
	}
	return out
}

func (s *Session) objectNames(ctx context.Context) []string {
	schema, err := s.cmdCtx.Schema(ctx, s.schema)
	if err != nil {
		return nil
	}
	var names []string
	for _, k := range []core.Kind{core.KindTable, core.KindView, core.KindPackage, core.KindType} {
		objs, err := schema.Objects(ctx, k)
		if err != nil {
			continue
		}
		for _, o := range objs {
			names = append(names, o.Name())
		}
	}
	return names
}
