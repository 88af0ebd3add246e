// Package batch drives the external application over a directory of
// meshes, one script and one invocation per input file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/chewmesh/internal/amira"
	"github.com/Faultbox/chewmesh/internal/config"
	"github.com/Faultbox/chewmesh/internal/hxscript"
)

// Executor runs a command script to completion.
type Executor interface {
	Run(ctx context.Context, script string) error
}

// Input is one mesh scheduled for processing.
type Input struct {
	Name      string // Filename in the input directory
	File      string // Name used inside the script
	Staged    bool   // File is a sanitized copy in the workspace
	Collision string // Input that already claimed one of this input's outputs
}

// FilePlan is the work for a single input.
type FilePlan struct {
	Input
	Outputs []hxscript.Output
}

// Runner processes a batch.
type Runner struct {
	cfg  *config.Config
	exec Executor
	log  *zap.Logger
}

// New creates a Runner. cfg should already be validated.
func New(cfg *config.Config, exec Executor, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, exec: exec, log: log}
}

// Inputs lists the regular files (or links to them) in the input directory
// that match the configured pattern, sorted by name. An input whose planned
// outputs overlap another's is marked with Collision; real filenames claim
// their outputs before sanitized copies do.
func (r *Runner) Inputs() ([]Input, error) {
	entries, err := os.ReadDir(r.cfg.Paths.InputDir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if p := r.cfg.Paths.Pattern; p != "" {
			if ok, _ := filepath.Match(p, e.Name()); !ok {
				continue
			}
		}
		if !r.isFile(e) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	inputs := make([]Input, 0, len(names))
	for _, name := range names {
		in := Input{Name: name, File: name}
		if hxscript.HasSpace(name) {
			in.File = hxscript.Sanitize(name)
			in.Staged = true
		}
		inputs = append(inputs, in)
	}

	claimed := make(map[string]string)
	claim := func(in *Input) {
		outs := r.job(*in, "").Outputs()
		for _, o := range outs {
			if prev, ok := claimed[o.Name]; ok {
				in.Collision = prev
				return
			}
		}
		for _, o := range outs {
			claimed[o.Name] = in.Name
		}
	}
	for _, staged := range []bool{false, true} {
		for i := range inputs {
			if inputs[i].Staged == staged {
				claim(&inputs[i])
			}
		}
	}
	return inputs, nil
}

// isFile reports whether e is a regular file, following symlinks.
func (r *Runner) isFile(e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(r.cfg.Paths.InputDir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

// Plan lists the expected outputs for every input without running anything.
func (r *Runner) Plan() ([]FilePlan, error) {
	inputs, err := r.Inputs()
	if err != nil {
		return nil, err
	}
	plans := make([]FilePlan, 0, len(inputs))
	for _, in := range inputs {
		plans = append(plans, FilePlan{Input: in, Outputs: r.job(in, "").Outputs()})
	}
	return plans, nil
}

func (r *Runner) job(in Input, workDir string) hxscript.Job {
	src := r.cfg.Paths.InputDir
	if in.Staged {
		src = workDir
	}
	return hxscript.Job{
		SourceDir: src,
		OutputDir: r.cfg.Paths.OutputDir,
		File:      in.File,
		Simplify:  r.cfg.Levels.Simplify,
		Smooth:    r.cfg.Levels.Smooth,
	}
}

// Script writes the script that would be generated for input name. Sanitized
// inputs are shown loading from the work directory prefix.
func (r *Runner) Script(w io.Writer, name string) error {
	inputs, err := r.Inputs()
	if err != nil {
		return err
	}
	for _, in := range inputs {
		if in.Name == name {
			return hxscript.Write(w, r.job(in, filepath.Join(r.cfg.Paths.OutputDir, r.cfg.Paths.WorkDir)))
		}
	}
	return fmt.Errorf("%s: no such input in %s", name, r.cfg.Paths.InputDir)
}

// Run processes every input in turn. Per-file failures are collected in the
// report and never stop the batch; the returned error is reserved for setup
// problems, workspace cleanup and cancellation.
func (r *Runner) Run(ctx context.Context) (report *Report, err error) {
	report = &Report{}

	inputs, err := r.Inputs()
	if err != nil {
		return report, err
	}
	report.Inputs = len(inputs)
	if err := os.MkdirAll(r.cfg.Paths.OutputDir, 0755); err != nil {
		return report, fmt.Errorf("creating output directory: %w", err)
	}

	ws, err := openWorkspace(r.cfg.Paths.OutputDir, r.cfg.Paths.WorkDir)
	if err != nil {
		return report, err
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(ws.Close))

	r.log.Info("starting batch",
		zap.Int("meshes", len(inputs)),
		zap.Stringers("simplify", r.cfg.Levels.Simplify),
		zap.Ints("smooth", r.cfg.Levels.Smooth),
	)

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		r.log.Info("processing mesh",
			zap.String("file", in.Name),
			zap.Int("index", i+1),
			zap.Int("total", len(inputs)),
		)

		f := r.process(ctx, ws, in, report)
		if f == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		report.Failures = append(report.Failures, f)
		r.log.Warn("error simplifying and/or smoothing mesh",
			zap.String("file", in.Name),
			zap.Strings("missing", f.Missing),
			zap.NamedError("cause", f.Err),
		)
	}

	if len(report.Failures) > 0 {
		r.log.Warn("error simplifying and/or smoothing one or more meshes",
			zap.Strings("files", report.Failed()),
		)
	}
	r.log.Info("batch finished",
		zap.Int("processed", report.Processed),
		zap.Int("outputs", report.Outputs),
		zap.Int("failed", len(report.Failures)),
	)
	return report, nil
}

// process runs one input and returns its failure, if any.
func (r *Runner) process(ctx context.Context, ws *workspace, in Input, report *Report) *Failure {
	if in.Collision != "" {
		return &Failure{File: in.Name, Err: fmt.Errorf("outputs of %s collide with %s", in.File, in.Collision)}
	}

	if in.Staged {
		if err := ws.stage(filepath.Join(r.cfg.Paths.InputDir, in.Name), in.File); err != nil {
			return &Failure{File: in.Name, Err: fmt.Errorf("staging sanitized copy: %w", err)}
		}
		defer func() {
			if err := ws.unstage(in.File); err != nil {
				r.log.Debug("removing staged copy", zap.String("file", in.File), zap.Error(err))
			}
		}()
	}

	job := r.job(in, ws.dir)
	if err := r.writeScript(ws, job); err != nil {
		return &Failure{File: in.Name, Err: fmt.Errorf("writing script: %w", err)}
	}
	r.log.Debug("script written", zap.String("path", ws.scriptPath()))

	runErr := r.exec.Run(ctx, ws.scriptPath())
	report.Processed++

	var exitErr *amira.ExitError
	if errors.As(runErr, &exitErr) && !r.cfg.Verify.CheckExit {
		r.log.Debug("ignoring exit status", zap.String("file", in.Name), zap.Int("status", exitErr.Code))
		runErr = nil
	}

	expected := r.expected(job)
	missing := missingOutputs(job.OutputDir, expected)
	report.Outputs += len(expected) - len(missing)

	if runErr == nil && len(missing) == 0 {
		return nil
	}
	return &Failure{File: in.Name, Missing: missing, Err: runErr}
}

func (r *Runner) writeScript(ws *workspace, job hxscript.Job) (err error) {
	f, err := ws.createScript()
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	return hxscript.Write(f, job)
}

// expected returns the outputs to check for job under the verify mode.
func (r *Runner) expected(job hxscript.Job) []hxscript.Output {
	outs := job.Outputs()
	if r.cfg.Verify.Mode != config.VerifyLast {
		return outs
	}
	last := job.Simplify[len(job.Simplify)-1]
	for _, o := range outs {
		if o.Simplify == last && o.Smooth == 0 {
			return []hxscript.Output{o}
		}
	}
	return nil
}

// missingOutputs returns the names in outs that are not regular files in dir.
func missingOutputs(dir string, outs []hxscript.Output) []string {
	var missing []string
	for _, o := range outs {
		info, err := os.Stat(filepath.Join(dir, o.Name))
		if err != nil || !info.Mode().IsRegular() {
			missing = append(missing, o.Name)
		}
	}
	return missing
}
