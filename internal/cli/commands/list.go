package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/spf13/cobra"
)

// ObjectInfo is one listed catalog object.
type ObjectInfo struct {
	Kind    core.Kind `json:"kind" yaml:"kind"`
	Name    string    `json:"name" yaml:"name"`
	Comment string    `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// NewListCommand creates the ls command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [schema]",
		Short: "List the objects of a schema",
		Long: `List the objects of a schema, grouped by kind.

Without --kind every kind the backend supports is listed; kinds the backend
has no dictionary for are empty. The schema defaults to target.schema.`,
		Example: `  # List everything in HR
  leapcat ls HR

  # Only views
  leapcat ls HR --kind view`,
		Args: cobra.MaximumNArgs(1),
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
			return printObjects(cmd.Context(), cmdCtx, firstArg(args), kind)
		},
	}
	cmd.Flags().StringP("kind", "k", "", "Only list objects of this kind (table, view, package, ...)")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)
	return cmd
}

func printObjects(ctx context.Context, cmdCtx *CommandContext, schemaName string, kind core.Kind) error {
	s, err := cmdCtx.Schema(ctx, schemaName)
	if err != nil {
		return err
	}

	kinds := core.ListableKinds()
	if kind != "" {
		kinds = []core.Kind{kind}
	}
	if err := s.Prefetch(ctx, kinds...); err != nil {
		return err
	}

	var objects []ObjectInfo
	for _, k := range kinds {
		objs, err := s.Objects(ctx, k)
		if err != nil {
			return fmt.Errorf("failed to list %s objects: %w", k, err)
		}
		for _, obj := range objs {
			objects = append(objects, ObjectInfo{Kind: k, Name: obj.Name(), Comment: comment(obj)})
		}
	}

	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Data(objects)
	}

	r.Header(1, fmt.Sprintf("%s (%d objects)", s.Name(), len(objects)))
	rows := make([][]string, len(objects))
	for i, o := range objects {
		rows[i] = []string{string(o.Kind), o.Name, o.Comment}
	}
	r.Table([]string{"Kind", "Name", "Comment"}, rows)
	return nil
}

func completeKinds(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	kinds := core.ListableKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = strings.ToLower(strings.ReplaceAll(string(k), " ", "_"))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
