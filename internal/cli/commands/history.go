package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List saved dumps or print one",
		Example: `  # Saved dumps of HR, newest first
  leapcat history --schema HR

  # Print a saved dump
  leapcat history 3f0c9b1e-...

  # Forget a saved dump
  leapcat history 3f0c9b1e-... --delete`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runHistoryShow(cmd, args[0])
			}
			return runHistoryList(cmd)
		},
	}
	cmd.Flags().String("schema", "", "Only list dumps of this schema")
	cmd.Flags().Bool("delete", false, "Delete the given dump")
	return cmd
}

func runHistoryList(cmd *cobra.Command) error {
	cmdCtx := NewCommandContextWithoutTarget(cmd)
	ctx := cmd.Context()

	store, err := cmdCtx.OpenState(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	schema, _ := cmd.Flags().GetString("schema")
	dumps, err := store.ListDumps(ctx, schema)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Data(dumps)
	}

	r.Header(1, fmt.Sprintf("Saved dumps (%d total)", len(dumps)))
	rows := make([][]string, len(dumps))
	for i, d := range dumps {
		status := "complete"
		if d.Canceled {
			status = "canceled"
		}
		rows[i] = []string{
			d.ID,
			d.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			d.Target,
			d.Schema,
			string(d.Format),
			strconv.Itoa(d.Objects),
			strconv.Itoa(d.Failed),
			status,
		}
	}
	r.Table([]string{"ID", "Created", "Target", "Schema", "Format", "Objects", "Failed", "Status"}, rows)
	return nil
}

func runHistoryShow(cmd *cobra.Command, id string) error {
	cmdCtx := NewCommandContextWithoutTarget(cmd)
	ctx := cmd.Context()

	store, err := cmdCtx.OpenState(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	r := cmdCtx.Renderer
	if del, _ := cmd.Flags().GetBool("delete"); del {
		if err := store.DeleteDump(ctx, id); err != nil {
			return err
		}
		r.Success("deleted dump " + id)
		return nil
	}

	rec, err := store.GetDump(ctx, id)
	if err != nil {
		return err
	}
	if r.Structured() {
		return r.Data(rec)
	}
	r.Header(1, fmt.Sprintf("Dump of %s (%s, %s)", rec.Schema, rec.Format, rec.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	r.Code(rec.Render())
	return nil
}
