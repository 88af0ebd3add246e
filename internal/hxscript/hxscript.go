// Package hxscript writes the Tcl command scripts that Amira and Avizo run
// in batch mode to simplify and smooth surfaces.
//
// The application labels every data object with the file it was last loaded
// from or saved to, so a filename doubles as the object name in later
// commands.
package hxscript

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Faultbox/chewmesh/internal/config"
)

const (
	// Header is the first line of every script.
	Header = "# Amira Script"

	// FormatPLY is the save format for all outputs.
	FormatPLY = "Stanford PLY"

	simplifier = "Simplifier"
	smoother   = "SmoothSurface"
)

// Job describes the script for a single input mesh.
type Job struct {
	SourceDir string // Directory File is loaded from
	OutputDir string
	File      string // Must not contain whitespace
	Simplify  []config.SimplifyLevel
	Smooth    []int
}

// Writer emits script commands. The first write error is kept and returned
// by Flush; later writes are dropped.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter returns a Writer buffering into w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) line(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format+"\n", args...)
}

// Flush writes buffered commands and returns the first error seen.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

// Header writes the script header comment.
func (w *Writer) Header() {
	w.line(Header)
}

// Blank separates logical blocks.
func (w *Writer) Blank() {
	w.line("")
}

// Remove discards an object from the application session. Saved files are
// not touched.
func (w *Writer) Remove(object string) {
	w.line("remove %s", Quote(object))
}

func (w *Writer) save(object, path string) {
	w.line("%s save %q %s", Quote(object), FormatPLY, Quote(path))
}

// Simplify loads file from srcDir and saves it into outDir, decimated to
// the level's face count unless the level is the no-simplification
// sentinel. It returns the saved filename, which is also the object's
// label from then on.
func (w *Writer) Simplify(srcDir, outDir, file string, level config.SimplifyLevel) string {
	w.line("load %s", Quote(filepath.Join(srcDir, file)))
	if level.None() {
		w.save(file, filepath.Join(outDir, file))
		return file
	}

	out := SimplifiedName(file, level)
	w.line("create HxSimplifier %s", simplifier)
	w.line("%s attach %s", simplifier, braced(file))
	w.line("%s simplifyParameters setValue faces %d", simplifier, level.Faces)
	w.line("%s simplifyAction setIndex 0", simplifier)
	w.line("%s fire", simplifier)
	w.save(file, filepath.Join(outDir, out))
	w.Blank()
	return out
}

// Smooth smooths the object labelled file for iters iterations, saves the
// result into outDir and removes the smoothed object from the session.
func (w *Writer) Smooth(outDir, file string, iters int) {
	out := SmoothedName(file, iters)
	w.line("create HxSurfaceSmooth %s", smoother)
	w.line("%s data connect %s", smoother, Quote(file))
	w.line("%s parameters setValue iterations %d", smoother, iters)
	w.line("%s action setIndex 0", smoother)
	w.line("%s fire", smoother)
	w.save(Stem(file)+".smooth", filepath.Join(outDir, out))
	w.Remove(out)
	w.Blank()
}

// Write renders the full script for job.
func Write(dst io.Writer, job Job) error {
	if HasSpace(job.File) {
		return fmt.Errorf("hxscript: filename %q contains whitespace", job.File)
	}

	w := NewWriter(dst)
	w.Header()
	for _, level := range job.Simplify {
		simp := w.Simplify(job.SourceDir, job.OutputDir, job.File, level)
		for _, iters := range job.Smooth {
			w.Smooth(job.OutputDir, simp, iters)
		}
		w.Remove(simp)
	}
	return w.Flush()
}

// braced always wraps a word in braces unless Quote has to escape it.
func braced(word string) string {
	if q := Quote(word); q != word {
		return q
	}
	return "{" + word + "}"
}

// Quote makes a path or object name safe as a single Tcl word.
func Quote(path string) string {
	if !strings.ContainsAny(path, " \t\n\r\"{}[]$;\\") {
		return path
	}
	if !strings.ContainsAny(path, "{}\\") {
		return "{" + path + "}"
	}
	var b strings.Builder
	for _, r := range path {
		if strings.ContainsRune(" \t\n\r\"{}[]$;\\", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
