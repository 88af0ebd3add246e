package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

var flags = pflag.NewFlagSet("config", pflag.ContinueOnError)

var (
	flagConfig   = flags.String("config", "", "Path to config file")
	flagDebug    = flags.Bool("debug", false, "Enable debug logging")
	flagApp      = flags.String("app", "", "Path to the Amira/Avizo binary")
	flagInput    = flags.StringP("input", "i", "", "Directory of input meshes")
	flagOutput   = flags.StringP("output", "o", "", "Directory for generated meshes")
	flagSimplify = flags.StringSlice("simplify", nil, "Simplification face counts, or none (comma separated)")
	flagSmooth   = flags.IntSlice("smooth", nil, "Smoothing iteration counts (comma separated)")
	flagVerify   = flags.String("verify", "", "Output verification mode: all or last")
	flagLogFile  = flags.String("log-file", "", "Also write logs to this file")
)

// Flags returns the flag set holding config overrides, for merging into a
// command's persistent flags.
func Flags() *pflag.FlagSet {
	return flags
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagApp != "" {
		cfg.App.Binary = *flagApp
	}
	if *flagInput != "" {
		cfg.Paths.InputDir = *flagInput
	}
	if *flagOutput != "" {
		cfg.Paths.OutputDir = *flagOutput
	}
	if len(*flagSimplify) > 0 {
		levels := make([]SimplifyLevel, 0, len(*flagSimplify))
		for _, s := range *flagSimplify {
			l, err := ParseSimplifyLevel(s)
			if err != nil {
				return fmt.Errorf("--simplify: %w", err)
			}
			levels = append(levels, l)
		}
		cfg.Levels.Simplify = levels
	}
	if len(*flagSmooth) > 0 {
		cfg.Levels.Smooth = append([]int(nil), *flagSmooth...)
	}
	if *flagVerify != "" {
		cfg.Verify.Mode = *flagVerify
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	return nil
}
