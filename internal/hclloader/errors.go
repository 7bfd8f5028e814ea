package hclloader

import "fmt"

// UnknownEnvironmentError reports a target naming an environment no block
// declares.
type UnknownEnvironmentError struct {
	Name   string
	Target string
}

func (e *UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("target %q references unknown environment %q", e.Target, e.Name)
}

// UnknownTargetError reports a link, install, archive, or alias reference
// to a target no block declares.
type UnknownTargetError struct {
	Name     string
	Referrer string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("%q references unknown target %q", e.Referrer, e.Name)
}

// UnknownToolchainError reports an environment naming a toolchain that is
// not built in.
type UnknownToolchainError struct {
	Name        string
	Environment string
}

func (e *UnknownToolchainError) Error() string {
	return fmt.Sprintf("environment %q names unknown toolchain %q", e.Environment, e.Name)
}

// UnresolvedBaseError reports environments whose base references never
// resolve, either because the base is unknown or the bases form a cycle.
type UnresolvedBaseError struct {
	Names []string
}

func (e *UnresolvedBaseError) Error() string {
	return fmt.Sprintf("environment base references cannot be resolved: %v", e.Names)
}
