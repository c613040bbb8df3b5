package root

import (
	"github.com/fernwick/stagehand/cmd/stagehand/run"
	"github.com/fernwick/stagehand/cmd/stagehand/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for stagehand.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stagehand",
		Short: "CLI: run declarative YAML pipelines of named stages over shared records",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(run.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
