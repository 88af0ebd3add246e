package hxscript

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/Faultbox/chewmesh/internal/config"
)

// Ext is the extension of every mesh the application writes.
const Ext = ".ply"

// HasSpace reports whether name contains whitespace.
func HasSpace(name string) bool {
	return strings.IndexFunc(name, unicode.IsSpace) >= 0
}

// Sanitize replaces each whitespace rune in name with an underscore.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}

// Stem strips the extension from a filename.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// SimplifiedName is the file a simplification level saves for name.
// The sentinel level keeps name unchanged.
func SimplifiedName(name string, level config.SimplifyLevel) string {
	if level.None() {
		return name
	}
	return Stem(name) + "-simp" + strconv.Itoa(level.Faces) + Ext
}

// SmoothedName is the file saved after smoothing name for iters iterations.
func SmoothedName(name string, iters int) string {
	return Stem(name) + "-smooth" + strconv.Itoa(iters) + Ext
}

// Output is one file the application is expected to produce.
type Output struct {
	Name     string
	Simplify config.SimplifyLevel
	Smooth   int // 0 for the unsmoothed variant
}

// Outputs lists the files a job produces, in script order: each
// simplification level's unsmoothed file followed by its smoothed variants.
func (j Job) Outputs() []Output {
	outs := make([]Output, 0, len(j.Simplify)*(len(j.Smooth)+1))
	for _, level := range j.Simplify {
		simp := SimplifiedName(j.File, level)
		outs = append(outs, Output{Name: simp, Simplify: level})
		for _, iters := range j.Smooth {
			outs = append(outs, Output{Name: SmoothedName(simp, iters), Simplify: level, Smooth: iters})
		}
	}
	return outs
}
