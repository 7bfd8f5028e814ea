package resolver

import "fmt"

// MissingSourceError reports a declared source file that no step produces
// and that does not exist on disk.
type MissingSourceError struct {
	Path   string
	Target string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("target %q: source %q does not exist and nothing builds it", e.Target, e.Path)
}

// ToolMissingError reports a source suffix the environment cannot compile:
// either no toolchain handler exists for the suffix, or the handler names a
// tool the environment does not configure.
type ToolMissingError struct {
	Suffix string
	Tool   string
	Target string
}

func (e *ToolMissingError) Error() string {
	if e.Tool == "" {
		return fmt.Sprintf("target %q: no tool handles %q sources", e.Target, e.Suffix)
	}
	return fmt.Sprintf("target %q: tool %q for %q sources is not configured in the environment", e.Target, e.Tool, e.Suffix)
}

// InstallArityError reports an install_as target with other than exactly
// one source.
type InstallArityError struct {
	Target string
	Count  int
}

func (e *InstallArityError) Error() string {
	return fmt.Sprintf("target %q: install_as expects exactly one source, got %d", e.Target, e.Count)
}

// OutputConflictError reports two build steps claiming the same output
// path. The later target is named; the earlier step's origin is on the
// node itself.
type OutputConflictError struct {
	Path   string
	Target string
}

func (e *OutputConflictError) Error() string {
	return fmt.Sprintf("target %q: output %q is already produced by another step", e.Target, e.Path)
}

// NoEnvironmentError reports a target kind that needs an environment but
// was declared without one.
type NoEnvironmentError struct {
	Target string
	Kind   string
}

func (e *NoEnvironmentError) Error() string {
	return fmt.Sprintf("target %q (%s) has no environment", e.Target, e.Kind)
}
