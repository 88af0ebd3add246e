// Package config handles batch configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Verification modes.
const (
	VerifyAll  = "all"  // every (simplification, smoothing) output
	VerifyLast = "last" // only the last simplification level's output
)

var (
	ErrNoBinary       = errors.New("application binary not set")
	ErrNoInputDir     = errors.New("input directory not set")
	ErrNoOutputDir    = errors.New("output directory not set")
	ErrNoLevels       = errors.New("at least one level is required")
	ErrInvalidLevel   = errors.New("invalid level")
	ErrInvalidVerify  = errors.New("invalid verify mode")
	ErrInvalidWorkDir = errors.New("invalid work directory")
)

// Config holds all batch settings.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Paths   PathsConfig   `yaml:"paths"`
	Levels  LevelsConfig  `yaml:"levels"`
	Verify  VerifyConfig  `yaml:"verify"`
	Logging LoggingConfig `yaml:"logging"`
}

// AppConfig describes how the external application is invoked.
type AppConfig struct {
	Binary  string        `yaml:"binary"`
	Args    []string      `yaml:"args"`    // Passed before the script path
	Timeout time.Duration `yaml:"timeout"` // 0 waits forever
}

// PathsConfig holds input/output locations.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	WorkDir   string `yaml:"work_dir"` // Name prefix of the scratch dir made in OutputDir
	Pattern   string `yaml:"pattern"`  // Glob applied to input filenames
}

// LevelsConfig holds the parameter grid.
type LevelsConfig struct {
	Simplify []SimplifyLevel `yaml:"simplify"`
	Smooth   []int           `yaml:"smooth"`
}

// VerifyConfig controls failure detection.
type VerifyConfig struct {
	Mode      string `yaml:"mode"`
	CheckExit bool   `yaml:"check_exit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// SimplifyLevel is a target face count. The zero value means no
// simplification, so a YAML null decodes to it.
type SimplifyLevel struct {
	Faces int
}

// NoSimplify is the sentinel level.
var NoSimplify = SimplifyLevel{}

// None reports whether the level skips simplification.
func (l SimplifyLevel) None() bool {
	return l.Faces == 0
}

// Faces returns a simplification level targeting n faces.
func Faces(n int) SimplifyLevel {
	return SimplifyLevel{Faces: n}
}

func (l SimplifyLevel) String() string {
	if l.None() {
		return "none"
	}
	return strconv.Itoa(l.Faces)
}

// ParseSimplifyLevel parses "none" (any case), "null" or a positive integer.
func ParseSimplifyLevel(s string) (SimplifyLevel, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "none", "null", "~":
		return NoSimplify, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return SimplifyLevel{}, fmt.Errorf("%w: simplify %q", ErrInvalidLevel, s)
	}
	if n <= 0 {
		return SimplifyLevel{}, fmt.Errorf("%w: simplify %d must be positive", ErrInvalidLevel, n)
	}
	return Faces(n), nil
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Binary: "/Applications/Amira-5.3.2/Amira.app/Contents/MacOS/Amira",
			Args:   []string{"-no_gui"},
		},
		Paths: PathsConfig{
			WorkDir: "temp",
			Pattern: "*",
		},
		Levels: LevelsConfig{
			Simplify: []SimplifyLevel{Faces(10000)},
			Smooth:   []int{100},
		},
		Verify: VerifyConfig{
			Mode:      VerifyAll,
			CheckExit: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that the config can drive a batch.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.App.Binary) == "" {
		return ErrNoBinary
	}
	if c.Paths.InputDir == "" {
		return ErrNoInputDir
	}
	if c.Paths.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.Paths.WorkDir == "" || c.Paths.WorkDir == "." || c.Paths.WorkDir == ".." ||
		strings.ContainsAny(c.Paths.WorkDir, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidWorkDir, c.Paths.WorkDir)
	}
	if len(c.Levels.Simplify) == 0 {
		return fmt.Errorf("%w: simplify", ErrNoLevels)
	}
	if len(c.Levels.Smooth) == 0 {
		return fmt.Errorf("%w: smooth", ErrNoLevels)
	}
	seenSimplify := make(map[SimplifyLevel]bool, len(c.Levels.Simplify))
	for _, l := range c.Levels.Simplify {
		if l.Faces < 0 {
			return fmt.Errorf("%w: simplify %d must be positive", ErrInvalidLevel, l.Faces)
		}
		if seenSimplify[l] {
			return fmt.Errorf("%w: simplify %s listed twice", ErrInvalidLevel, l)
		}
		seenSimplify[l] = true
	}
	seenSmooth := make(map[int]bool, len(c.Levels.Smooth))
	for _, n := range c.Levels.Smooth {
		if n <= 0 {
			return fmt.Errorf("%w: smooth %d must be positive", ErrInvalidLevel, n)
		}
		if seenSmooth[n] {
			return fmt.Errorf("%w: smooth %d listed twice", ErrInvalidLevel, n)
		}
		seenSmooth[n] = true
	}
	switch c.Verify.Mode {
	case VerifyAll, VerifyLast:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidVerify, c.Verify.Mode)
	}
	if _, err := filepath.Match(c.Paths.Pattern, ""); err != nil {
		return fmt.Errorf("pattern %q: %w", c.Paths.Pattern, err)
	}
	return nil
}
