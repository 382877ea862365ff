package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hanpama/gqlopera/internal/config"
	"github.com/hanpama/gqlopera/internal/logging"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a default " + config.FileName + " in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(cmd.ErrOrStderr(), false)
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			path, created, err := config.Init(dir)
			if err != nil {
				return err
			}
			if !created {
				logger.Warn("Configuration file already exists: " + path)
				return nil
			}
			logging.Success(logger, "Configuration file created: "+path)
			return nil
		},
	}
}
