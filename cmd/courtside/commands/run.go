package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"courtside/internal/config"
)

var runStages []string

func init() {
	runCmd.Flags().StringSliceVar(&runStages, "stage", nil, "Run only the named stages (repeatable)")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--config <path>] [--stage <name>...]",
	Short: "Runs the pipeline stages in order, resuming where the last run stopped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		for _, name := range runStages {
			if !config.IsStage(name) {
				return fmt.Errorf("unknown stage: %s", name)
			}
		}

		logger := newLogger(cfg)
		ctx := cmd.Context()

		pipeline, loader, err := config.LoadAndBuild(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := loader.Shutdown(shutdownCtx); err != nil {
				logger.Error("Shutdown failed", "error", err)
			}
		}()

		reports, runErr := pipeline.Run(ctx, runStages...)
		renderSummary(os.Stdout, reports)

		if errors.Is(runErr, context.Canceled) {
			logger.Warn("Run interrupted; the next run resumes from here")
			return nil
		}
		return runErr
	},
}
