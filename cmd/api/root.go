package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "mlops-api",
		Short: "Classification inference service with an audit log",
		Long: `mlops-api serves a trained classifier over HTTP and logs every
prediction to the configured audit store.

Configuration is read from an optional YAML file, a .env file and
MLOPS_* environment variables. USE_DATABASE, POSTGRES_* and IS_DOCKER
are honoured for existing deployments.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newPredictCmd(&configPath),
		newMigrateCmd(&configPath),
		newLogsCmd(&configPath),
		newVersionCmd(),
	)

	return root
}
