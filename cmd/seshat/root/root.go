package root

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/seshat-toolkit/cmd/seshat/deploy"
	"github.com/flarebyte/seshat-toolkit/cmd/seshat/version"
)

// NewRootCmd creates the root command for seshat.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seshat",
		Short: "CLI: deploy named, versioned toolboxes onto a local workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(deploy.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
