// chewmesh simplifies and smooths batches of meshes by scripting Amira or
// Avizo in headless mode.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/chewmesh/internal/config"
	"github.com/Faultbox/chewmesh/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "chewmesh",
	Short: "Batch simplify and smooth meshes with Amira/Avizo",
	Long: `chewmesh generates an Amira/Avizo script for every mesh in a directory,
covering each combination of simplification target and smoothing iteration
count, runs the application headless on it and checks that the expected
Stanford PLY files were written.

Outputs per input = (# simplification levels) x (# smoothing levels + 1).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().AddFlagSet(config.Flags())
}

// setup loads the config and initializes logging.
func setup(validate bool) (*config.Config, error) {
	load := config.LoadUnvalidated
	if validate {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)
	return cfg, nil
}

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
