package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanpama/gqlopera/internal/introspection"
	"github.com/hanpama/gqlopera/internal/logging"
)

func newValidateCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and that the schema can be introspected",
		Long: `Load the configuration, fetch the schema from the endpoint (or schema
file) and decode it. Nothing is written.

Examples:
  gqlopera validate
  gqlopera validate -c ./configs/staging.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(cmd.ErrOrStderr(), verbose)
			cfg, err := loadConfig(logger, configPath)
			if err != nil {
				return err
			}
			if err := cfg.Finalize(); err != nil {
				return err
			}

			logger.Info("Validating configuration and endpoint...")
			src := newSource(cfg)
			sch, err := introspection.Load(cmd.Context(), src)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			logger.Debug("Schema decoded", "types", len(sch.Types), "source", src.String())
			logging.Success(logger, "GraphQL endpoint is accessible and schema is valid")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to config file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	return cmd
}
