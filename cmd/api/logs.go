package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/niallroche/data-engineering-mlops/internal/adapter/repository/audit"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/config"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/logger"
)

func newLogsCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the most recent audit records",
		Long: `Print the number of stored audit records and the most recent ones,
newest first, as JSON lines.

Supported by the postgres, sqlite and bolt drivers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			cfg, err := config.LoadFile(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			// reads go straight to the store
			cfg.Audit.Async = false

			log, err := logger.NewLogger(&cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			sink, err := audit.Open(cfg, log, nil)
			if err != nil {
				return fmt.Errorf("failed to open audit sink: %w", err)
			}
			defer func() { _ = sink.Close(cmd.Context()) }()

			reader, ok := sink.Reader()
			if !ok {
				return fmt.Errorf("audit driver %q does not support reading records", sink.Driver)
			}

			total, err := reader.Count(cmd.Context())
			if err != nil {
				return err
			}
			records, err := reader.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d records\n", sink.Driver, total)
			enc := json.NewEncoder(out)
			for _, r := range records {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of records to show")

	return cmd
}
