package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/leapstack-labs/leapcat/internal/state"
	"github.com/leapstack-labs/leapcat/pkg/catalog"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/leapstack-labs/leapcat/pkg/progress"
	"github.com/spf13/cobra"
)

// dumpKinds lists the kinds written by a schema dump, in creation order.
// Indexes, triggers and foreign keys come with their tables.
var dumpKinds = []core.Kind{
	core.KindSequence,
	core.KindType,
	core.KindDomain,
	core.KindTable,
	core.KindView,
	core.KindMaterializedView,
	core.KindSynonym,
	core.KindPackage,
	core.KindDBLink,
}

// DumpOutput is the structured shape of the dump command.
type DumpOutput struct {
	ID        string           `json:"id,omitempty" yaml:"id,omitempty"`
	Schema    string           `json:"schema" yaml:"schema"`
	Format    string           `json:"format" yaml:"format"`
	Canceled  bool             `json:"canceled" yaml:"canceled"`
	Fragments []FragmentOutput `json:"fragments" yaml:"fragments"`
}

// FragmentOutput is one dumped object.
type FragmentOutput struct {
	Kind  core.Kind `json:"kind" yaml:"kind"`
	Name  string    `json:"name" yaml:"name"`
	DDL   string    `json:"ddl,omitempty" yaml:"ddl,omitempty"`
	Error string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [schema]",
		Short: "Print the DDL of every object in a schema",
		Long: `Print the DDL of every object in a schema.

Objects that fail are reported inline as "-- ERROR:" lines and the dump goes
on. Interrupting with Ctrl-C stops after the current object and prints what
was generated so far. With --save the result is recorded in the dump history.`,
		Example: `  # Dump HR to a file
  leapcat dump HR > hr.sql

  # Only packages, saved to history
  leapcat dump HR --kind package --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := ""
			if len(args) == 1 {
				schema = args[0]
			}
			return runDump(cmd, schema)
		},
	}
	cmd.Flags().StringP("kind", "k", "", "Only dump objects of this kind")
	cmd.Flags().Bool("save", false, "Record the dump in the history")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)
	addDDLFlags(cmd)
	return cmd
}

func runDump(cmd *cobra.Command, schemaName string) error {
	kind, err := parseKind(cmd)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := cmdCtx.DDLFormat(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := cmdCtx.Schema(ctx, schemaName)
	if err != nil {
		return err
	}

	kinds := dumpKinds
	if kind != "" {
		kinds = []core.Kind{kind}
	}
	objs, err := collect(ctx, s, kinds)
	if err != nil {
		return err
	}

	// Queries keep running on ctx; only the monitor sees the interrupt, so the
	// object in flight completes.
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	mon := progress.NewMonitor(sigCtx, cmdCtx.Logger)

	res := cmdCtx.Assembler.Dump(ctx, objs, format, cmdCtx.DDLOptions(cmd), mon)

	r := cmdCtx.Renderer
	out := DumpOutput{Schema: s.Name(), Format: string(format), Canceled: res.Canceled}
	if save, _ := cmd.Flags().GetBool("save"); save {
		id, err := saveDump(ctx, cmdCtx, s.Name(), format, res)
		if err != nil {
			return err
		}
		out.ID = id
	}

	if r.Structured() {
		for _, f := range res.Fragments {
			fo := FragmentOutput{Kind: f.Kind, Name: f.QualifiedName(), DDL: f.Text}
			if f.Err != nil {
				fo.Error = f.Err.Error()
			}
			out.Fragments = append(out.Fragments, fo)
		}
		return r.Data(out)
	}

	if len(res.Fragments) > 0 {
		r.Code(res.Render())
	}
	if res.Canceled {
		r.Warning(fmt.Sprintf("dump canceled after %d of %d objects", len(res.Fragments), len(objs)))
	}
	if failed := res.Failed(); failed > 0 {
		r.Warning(fmt.Sprintf("%d of %d objects failed", failed, len(res.Fragments)))
	}
	if out.ID != "" {
		r.Success("saved dump " + out.ID)
	}
	return nil
}

// collect enumerates the objects of kinds, warming the caches concurrently.
func collect(ctx context.Context, s *catalog.Schema, kinds []core.Kind) ([]core.Named, error) {
	if err := s.Prefetch(ctx, kinds...); err != nil {
		return nil, err
	}
	var objs []core.Named
	for _, k := range kinds {
		list, err := s.Objects(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s objects: %w", k, err)
		}
		objs = append(objs, list...)
	}
	return objs, nil
}

func saveDump(ctx context.Context, cmdCtx *CommandContext, schema string, format ddl.Format, res *ddl.DumpResult) (string, error) {
	store, err := cmdCtx.OpenState(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	rec := state.NewDumpRecord(cmdCtx.Cfg.Target.Display(), schema, format, res)
	return store.SaveDump(ctx, rec)
}
