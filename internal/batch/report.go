package batch

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Failure records an input mesh whose outputs could not be confirmed.
type Failure struct {
	File    string   // Input filename
	Missing []string // Expected outputs that were not written
	Err     error    // Application or staging error, if any
}

func (f *Failure) Error() string {
	var parts []string
	if f.Err != nil {
		parts = append(parts, f.Err.Error())
	}
	if len(f.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(f.Missing, ", "))
	}
	return fmt.Sprintf("%s: %s", f.File, strings.Join(parts, "; "))
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Report summarizes a batch run.
type Report struct {
	Inputs    int // Meshes found in the input directory
	Processed int // Inputs handed to the application
	Outputs   int // Expected outputs confirmed on disk
	Failures  []*Failure
}

// Failed returns the input filenames that failed, in processing order.
func (r *Report) Failed() []string {
	names := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		names = append(names, f.File)
	}
	return names
}

// Err combines every failure into one error, or returns nil.
func (r *Report) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}
