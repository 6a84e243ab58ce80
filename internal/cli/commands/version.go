package commands

import (
	"strings"

	"github.com/leapstack-labs/leapcat/internal/cli/output"
	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/spf13/cobra"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version  string   `json:"version" yaml:"version"`
	Commit   string   `json:"commit" yaml:"commit"`
	Date     string   `json:"date" yaml:"date"`
	Adapters []string `json:"adapters" yaml:"adapters"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leapcat version and the backend adapters compiled in.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// version runs without loading config, so read --output directly.
			mode, _ := cmd.Flags().GetString("output")
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(mode))

			info.Adapters = adapter.ListAdapters()
			if r.Structured() {
				return r.Data(info)
			}
			r.Printf("leapcat v%s (commit %s, built %s)\n", info.Version, info.Commit, info.Date)
			r.Printf("Adapters: %s\n", strings.Join(info.Adapters, ", "))
			return nil
		},
	}
}
