package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/niallroche/data-engineering-mlops/internal/adapter/model"
	"github.com/niallroche/data-engineering-mlops/internal/adapter/repository/audit"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/config"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/logger"
	"github.com/niallroche/data-engineering-mlops/internal/usecase"
)

func newPredictCmd(configPath *string) *cobra.Command {
	var (
		features  []float64
		data      string
		withAudit bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify one feature vector without starting the server",
		Long: `Classify one feature vector with the configured model and print the result as JSON.

Examples:
  # Features as a flag
  mlops-api predict --features 5.1,3.5,1.4,0.2

  # Request body as accepted by POST /predict
  mlops-api predict --data '{"features":[5.1,3.5,1.4,0.2]}'

  # Body from stdin, written to the audit store
  echo '{"features":[6.3,3.3,6.0,2.5]}' | mlops-api predict --audit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := predictBody(cmd, features, data)
			if err != nil {
				return err
			}

			cfg, err := config.LoadFile(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			classifier, err := model.NewClassifier(&cfg.Model)
			if err != nil {
				return fmt.Errorf("failed to load model: %w", err)
			}

			log := zap.NewNop()
			sink := &audit.Sink{AuditSink: audit.NoopSink{}, Driver: config.DriverNone}
			if withAudit {
				if log, err = logger.NewLogger(&cfg.Log); err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				if sink, err = audit.Open(cfg, log, nil); err != nil {
					return fmt.Errorf("failed to open audit sink: %w", err)
				}
			}
			defer func() { _ = sink.Close(cmd.Context()) }()

			uc := usecase.NewPredictionUsecase(classifier, sink, log, nil, cfg.Audit.Timeout)
			output, err := uc.Predict(cmd.Context(), &usecase.PredictInput{
				RawInput:  raw,
				RequestID: fmt.Sprintf("cli-%d", time.Now().UnixNano()),
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(output)
		},
	}

	cmd.Flags().Float64SliceVarP(&features, "features", "f", nil, "comma separated feature values")
	cmd.Flags().StringVarP(&data, "data", "d", "", `JSON request body, {"features":[...]}`)
	cmd.Flags().BoolVar(&withAudit, "audit", false, "write the prediction to the configured audit store")
	cmd.MarkFlagsMutuallyExclusive("features", "data")

	return cmd
}

// predictBody returns the request body from --features, --data or stdin
func predictBody(cmd *cobra.Command, features []float64, data string) ([]byte, error) {
	switch {
	case len(features) > 0:
		return json.Marshal(map[string][]float64{"features": features})
	case data != "":
		return []byte(data), nil
	}

	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("no input: use --features, --data or pipe a JSON body")
	}
	return raw, nil
}
