// Package origin records where a node, target, or environment was declared,
// so resolution errors can point back at the build description.
package origin

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Origin is a declaration site: either a position in a Go caller (when the
// project is constructed programmatically) or a position in a loaded build
// description file.
type Origin struct {
	File string
	Line int
}

// Capture returns the Origin of the caller's caller, skipping `skip`
// additional frames. A zero Origin is returned if the stack cannot be read.
func Capture(skip int) Origin {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Origin{}
	}
	return Origin{File: filepath.Base(file), Line: line}
}

// At builds an Origin from an explicit file position, e.g. an HCL range.
func At(file string, line int) Origin {
	return Origin{File: file, Line: line}
}

// IsZero reports whether no declaration site was recorded.
func (o Origin) IsZero() bool {
	return o.File == "" && o.Line == 0
}

func (o Origin) String() string {
	if o.IsZero() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", o.File, o.Line)
}
