// Package amira runs Amira or Avizo headless on a command script.
package amira

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"

	"github.com/Faultbox/chewmesh/internal/config"
)

// ErrTimeout is returned when a run exceeds the configured timeout.
var ErrTimeout = errors.New("application timed out")

// ExitError reports a run that finished with a non-zero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("application exited with status %d", e.Code)
}

// App invokes the external application.
type App struct {
	binary  string
	args    []string
	timeout time.Duration
	log     *zap.Logger
}

// New creates an App from config. Application output is logged to log at
// debug level.
func New(cfg config.AppConfig, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		binary:  cfg.Binary,
		args:    append([]string(nil), cfg.Args...),
		timeout: cfg.Timeout,
		log:     log,
	}
}

// Command returns the argv used to run script.
func (a *App) Command(script string) []string {
	argv := make([]string, 0, len(a.args)+2)
	argv = append(argv, a.binary)
	argv = append(argv, a.args...)
	return append(argv, script)
}

// Run executes script and blocks until the application exits. A non-zero
// exit status is reported as *ExitError.
func (a *App) Run(ctx context.Context, script string) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	argv := a.Command(script)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = time.Second

	stdout := &zapio.Writer{Log: a.log.With(zap.String("stream", "stdout")), Level: zapcore.DebugLevel}
	stderr := &zapio.Writer{Log: a.log.With(zap.String("stream", "stderr")), Level: zapcore.DebugLevel}
	defer stdout.Close()
	defer stderr.Close()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	a.log.Debug("starting application", zap.Strings("argv", argv))
	err := cmd.Run()
	a.log.Debug("application finished", zap.Duration("elapsed", time.Since(start)))

	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, a.timeout)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("starting %s: %w", a.binary, err)
}
