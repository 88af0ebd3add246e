package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const scriptName = "script.hx"

// workspace is the scratch directory holding the per-file script and
// sanitized copies of input meshes. Close removes it.
type workspace struct {
	dir string
}

func openWorkspace(parent, prefix string) (*workspace, error) {
	dir, err := os.MkdirTemp(parent, prefix+"-")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	return &workspace{dir: dir}, nil
}

func (w *workspace) scriptPath() string {
	return filepath.Join(w.dir, scriptName)
}

// createScript truncates the script file for the next input.
func (w *workspace) createScript() (*os.File, error) {
	return os.Create(w.scriptPath())
}

// stage copies src into the workspace as name.
func (w *workspace) stage(src, name string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

func (w *workspace) unstage(name string) error {
	return os.Remove(filepath.Join(w.dir, name))
}

// Close deletes the script and then the directory.
func (w *workspace) Close() error {
	if err := os.Remove(w.scriptPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.RemoveAll(w.dir)
}
