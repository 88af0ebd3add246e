package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/chewmesh/internal/amira"
	"github.com/Faultbox/chewmesh/internal/batch"
	"github.com/Faultbox/chewmesh/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simplify and smooth every mesh in the input directory",
	Long: `Run the application once per input mesh. Failures are reported after the
whole batch and make the command exit non-zero; they never stop the batch.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := setup(true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := amira.New(cfg.App, logger.Log.Named("app"))
	report, err := batch.New(cfg, app, logger.Log).Run(ctx)
	if err != nil {
		logger.Error("batch aborted", zap.Error(err))
		return err
	}

	if n := len(report.Failures); n > 0 {
		return fmt.Errorf("%d of %d meshes failed: %w", n, report.Inputs, report.Err())
	}
	return nil
}
