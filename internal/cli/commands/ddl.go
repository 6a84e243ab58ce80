package commands

import (
	"context"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/spf13/cobra"
)

// DDLResult is the structured shape of the ddl command.
type DDLResult struct {
	Kind   string `json:"kind" yaml:"kind"`
	Name   string `json:"name" yaml:"name"`
	Format string `json:"format" yaml:"format"`
	DDL    string `json:"ddl" yaml:"ddl"`
}

// NewDDLCommand creates the ddl command.
func NewDDLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddl <[schema.]object>",
		Short: "Print the DDL of one object",
		Long: `Print the DDL of one object.

The backend metadata function is used when available; otherwise a structural
CREATE statement is built from the cached catalog. Comments are added unless
the format is compact, grants only in the full format.`,
		Example: `  # Table DDL with comments
  leapcat ddl HR.EMPLOYEES

  # Everything including grants, no triggers
  leapcat ddl HR.EMPLOYEES --format full --skip-triggers

  # Disambiguate by kind
  leapcat ddl HR.EMP_PKG --kind package`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			return printDDL(cmd.Context(), cmdCtx, args[0], kind, format, cmdCtx.DDLOptions(cmd))
		},
	}
	cmd.Flags().StringP("kind", "k", "", "Object kind (searched when omitted)")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)
	addDDLFlags(cmd)
	return cmd
}

func printDDL(ctx context.Context, cmdCtx *CommandContext, ref string, kind core.Kind, format ddl.Format, opts ddl.Options) error {
	obj, err := cmdCtx.Object(ctx, ref, kind)
	if err != nil {
		return err
	}

	text, err := cmdCtx.Assembler.GetDDL(ctx, obj, format, opts)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Data(DDLResult{Kind: string(obj.Kind()), Name: obj.Name(), Format: string(format), DDL: text})
	}
	r.Code(text)
	return nil
}
