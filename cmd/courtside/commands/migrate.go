package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"courtside/internal/config"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [--config <path>]",
	Short: "Creates or upgrades the staging tables in the configured destination.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		if err := config.NewLoader(cfg, logger).Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("failed to migrate %s destination: %w", cfg.Storage.Type, err)
		}
		logger.Info("Destination is up to date", "type", cfg.Storage.Type)
		return nil
	},
}
