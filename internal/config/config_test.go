package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.App.Args) != 1 || cfg.App.Args[0] != "-no_gui" {
		t.Errorf("expected args [-no_gui], got %v", cfg.App.Args)
	}
	if cfg.App.Timeout != 0 {
		t.Errorf("expected no timeout, got %v", cfg.App.Timeout)
	}
	if cfg.Paths.WorkDir != "temp" {
		t.Errorf("expected work dir 'temp', got %s", cfg.Paths.WorkDir)
	}
	if len(cfg.Levels.Simplify) != 1 || cfg.Levels.Simplify[0].Faces != 10000 {
		t.Errorf("expected simplify [10000], got %v", cfg.Levels.Simplify)
	}
	if len(cfg.Levels.Smooth) != 1 || cfg.Levels.Smooth[0] != 100 {
		t.Errorf("expected smooth [100], got %v", cfg.Levels.Smooth)
	}
	if cfg.Verify.Mode != VerifyAll {
		t.Errorf("expected verify mode 'all', got %s", cfg.Verify.Mode)
	}
	if !cfg.Verify.CheckExit {
		t.Error("expected check_exit to be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestParseSimplifyLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    SimplifyLevel
		wantErr bool
	}{
		{in: "10000", want: Faces(10000)},
		{in: " 500 ", want: Faces(500)},
		{in: "none", want: NoSimplify},
		{in: "None", want: NoSimplify},
		{in: "null", want: NoSimplify},
		{in: "0", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSimplifyLevel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLevel) {
					t.Errorf("expected ErrInvalidLevel, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Paths.InputDir = "/in"
		cfg.Paths.OutputDir = "/out"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "sentinel level", mutate: func(c *Config) { c.Levels.Simplify = []SimplifyLevel{NoSimplify, Faces(10)} }},
		{name: "no binary", mutate: func(c *Config) { c.App.Binary = " " }, want: ErrNoBinary},
		{name: "no input", mutate: func(c *Config) { c.Paths.InputDir = "" }, want: ErrNoInputDir},
		{name: "no output", mutate: func(c *Config) { c.Paths.OutputDir = "" }, want: ErrNoOutputDir},
		{name: "work dir dot", mutate: func(c *Config) { c.Paths.WorkDir = "." }, want: ErrInvalidWorkDir},
		{name: "work dir path", mutate: func(c *Config) { c.Paths.WorkDir = "a/b" }, want: ErrInvalidWorkDir},
		{name: "no simplify", mutate: func(c *Config) { c.Levels.Simplify = nil }, want: ErrNoLevels},
		{name: "no smooth", mutate: func(c *Config) { c.Levels.Smooth = nil }, want: ErrNoLevels},
		{name: "negative faces", mutate: func(c *Config) { c.Levels.Simplify = []SimplifyLevel{Faces(-1)} }, want: ErrInvalidLevel},
		{name: "zero smooth", mutate: func(c *Config) { c.Levels.Smooth = []int{0} }, want: ErrInvalidLevel},
		{name: "duplicate smooth", mutate: func(c *Config) { c.Levels.Smooth = []int{100, 100} }, want: ErrInvalidLevel},
		{name: "duplicate faces", mutate: func(c *Config) { c.Levels.Simplify = []SimplifyLevel{Faces(50), Faces(10), Faces(50)} }, want: ErrInvalidLevel},
		{name: "duplicate sentinel", mutate: func(c *Config) { c.Levels.Simplify = []SimplifyLevel{NoSimplify, NoSimplify} }, want: ErrInvalidLevel},
		{name: "bad verify", mutate: func(c *Config) { c.Verify.Mode = "some" }, want: ErrInvalidVerify},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "chewmesh.yaml")

	yamlContent := `
app:
  binary: /opt/avizo/bin/Avizo
  args: ["-no_gui", "-logfile", "avizo.log"]
  timeout: 30m

paths:
  input_dir: /data/meshes
  output_dir: /data/meshes/simp_smooth
  pattern: "*.ply"

levels:
  simplify: [none, 10000, 5000]
  smooth: [25, 100]

verify:
  mode: last
  check_exit: false

logging:
  level: debug
  log_file: chewmesh.log
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Binary != "/opt/avizo/bin/Avizo" {
		t.Errorf("expected avizo binary, got %s", cfg.App.Binary)
	}
	if len(cfg.App.Args) != 3 {
		t.Errorf("expected 3 args, got %v", cfg.App.Args)
	}
	if cfg.App.Timeout != 30*time.Minute {
		t.Errorf("expected timeout 30m, got %v", cfg.App.Timeout)
	}
	if cfg.Paths.Pattern != "*.ply" {
		t.Errorf("expected pattern *.ply, got %s", cfg.Paths.Pattern)
	}
	// Unset keys keep their defaults
	if cfg.Paths.WorkDir != "temp" {
		t.Errorf("expected default work dir, got %s", cfg.Paths.WorkDir)
	}

	want := []SimplifyLevel{NoSimplify, Faces(10000), Faces(5000)}
	if len(cfg.Levels.Simplify) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Levels.Simplify)
	}
	for i := range want {
		if cfg.Levels.Simplify[i] != want[i] {
			t.Errorf("simplify[%d]: expected %v, got %v", i, want[i], cfg.Levels.Simplify[i])
		}
	}
	if len(cfg.Levels.Smooth) != 2 || cfg.Levels.Smooth[1] != 100 {
		t.Errorf("expected smooth [25 100], got %v", cfg.Levels.Smooth)
	}
	if cfg.Verify.Mode != VerifyLast || cfg.Verify.CheckExit {
		t.Errorf("unexpected verify config %+v", cfg.Verify)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "chewmesh.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadFromFileNullLevel(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "chewmesh.yaml")
	if err := os.WriteFile(configPath, []byte("levels:\n  simplify: [~, 200]\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Levels.Simplify[0].None() {
		t.Errorf("expected null to decode as no simplification, got %v", cfg.Levels.Simplify[0])
	}
	if cfg.Levels.Simplify[1] != Faces(200) {
		t.Errorf("expected 200, got %v", cfg.Levels.Simplify[1])
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":     "levels:\n  simplify: [\n  invalid syntax here\n",
		"zero faces": "levels:\n  simplify: [0]\n",
		"word":       "levels:\n  simplify: [many]\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			cfg := Default()
			if err := loadFromFile(cfg, configPath); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/chewmesh.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("levels:\n  smooth: [5]\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find chewmesh.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "paths",
			setup: func() {
				*flagApp = "/usr/local/bin/Avizo"
				*flagInput = "/in"
				*flagOutput = "/out"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.App.Binary != "/usr/local/bin/Avizo" {
					t.Errorf("expected app override, got %s", cfg.App.Binary)
				}
				if cfg.Paths.InputDir != "/in" || cfg.Paths.OutputDir != "/out" {
					t.Errorf("unexpected paths %+v", cfg.Paths)
				}
			},
			teardown: func() {
				*flagApp = ""
				*flagInput = ""
				*flagOutput = ""
			},
		},
		{
			name: "levels",
			setup: func() {
				*flagSimplify = []string{"none", "2500"}
				*flagSmooth = []int{10, 20, 30}
			},
			verify: func(t *testing.T, cfg *Config) {
				if len(cfg.Levels.Simplify) != 2 || !cfg.Levels.Simplify[0].None() || cfg.Levels.Simplify[1].Faces != 2500 {
					t.Errorf("unexpected simplify levels %v", cfg.Levels.Simplify)
				}
				if len(cfg.Levels.Smooth) != 3 {
					t.Errorf("unexpected smooth levels %v", cfg.Levels.Smooth)
				}
			},
			teardown: func() {
				*flagSimplify = nil
				*flagSmooth = nil
			},
		},
		{
			name:  "verify flag",
			setup: func() { *flagVerify = VerifyLast },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Verify.Mode != VerifyLast {
					t.Errorf("expected verify mode 'last', got %s", cfg.Verify.Mode)
				}
			},
			teardown: func() { *flagVerify = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags: %v", err)
			}

			tt.verify(t, cfg)
		})
	}
}

func TestApplyFlagsInvalidLevel(t *testing.T) {
	*flagSimplify = []string{"0"}
	defer func() { *flagSimplify = nil }()

	if err := applyFlags(Default()); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "chewmesh.yaml")

	yamlContent := `
paths:
  input_dir: /from/file
  output_dir: /from/file/out
levels:
  smooth: [7]
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagInput = "/from/flag"
	defer func() {
		*flagConfig = ""
		*flagInput = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Paths.InputDir != "/from/flag" {
		t.Errorf("expected input dir from flag, got %s", cfg.Paths.InputDir)
	}
	if cfg.Paths.OutputDir != "/from/file/out" {
		t.Errorf("expected output dir from file, got %s", cfg.Paths.OutputDir)
	}
	if cfg.Levels.Smooth[0] != 7 {
		t.Errorf("expected smooth level from file, got %v", cfg.Levels.Smooth)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "chewmesh.yaml")
	if err := os.WriteFile(configPath, []byte("paths:\n  input_dir: /in\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrNoOutputDir) {
		t.Errorf("expected ErrNoOutputDir, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chewmesh.yaml")

	cfg := Default()
	cfg.Levels.Simplify = []SimplifyLevel{NoSimplify, Faces(800)}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	loaded.Levels.Simplify = nil
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Levels.Simplify) != 2 || !loaded.Levels.Simplify[0].None() || loaded.Levels.Simplify[1].Faces != 800 {
		t.Errorf("sentinel did not survive save, got %v", loaded.Levels.Simplify)
	}
}
