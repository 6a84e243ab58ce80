package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSchemasCommand creates the schemas command.
func NewSchemasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List the schemas of the target database",
		Example: `  # List schemas
  leapcat schemas

  # As JSON
  leapcat schemas -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return printSchemas(cmd.Context(), cmdCtx)
		},
	}
}

func printSchemas(ctx context.Context, cmdCtx *CommandContext) error {
	schemas, err := cmdCtx.Catalog.Schemas(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schemas: %w", err)
	}

	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name()
	}

	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Data(names)
	}

	r.Header(1, fmt.Sprintf("Schemas (%d total)", len(names)))
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{n}
	}
	r.Table([]string{"Schema"}, rows)
	return nil
}
