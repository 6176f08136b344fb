package cli

import (
	"github.com/spf13/cobra"
)

var port string

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quiz-service",
		Short:         "Quiz authoring, assignment and attempt service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", "", "port to listen on (overrides PORT)")
	cmd.AddCommand(NewServeCmd(&port))
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	return cmd
}
