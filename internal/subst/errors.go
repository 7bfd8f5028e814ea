package subst

import (
	"fmt"
	"strings"
)

// MissingVariableError reports a template reference to a variable that is
// not defined anywhere in the namespace chain. Expansion never substitutes
// an empty string for an unknown reference.
type MissingVariableError struct {
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("undefined variable: $%s", e.Variable)
}

// CircularReferenceError reports a variable whose expansion, directly or
// through other variables, refers back to itself. Chain holds the reference
// path ending at the repeated variable.
type CircularReferenceError struct {
	Chain []string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular variable reference: %s", strings.Join(e.Chain, " -> "))
}

// FunctionError reports a malformed or unknown ${func(...)} call.
type FunctionError struct {
	Function string
	Reason   string
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("substitution function %s: %s", e.Function, e.Reason)
}

// EmbedError reports a list-valued variable interpolated into the middle of
// a token, where per-element expansion is impossible.
type EmbedError struct {
	Variable string
	Token    string
}

func (e *EmbedError) Error() string {
	return fmt.Sprintf("list variable $%s cannot be embedded in %q; use ${prefix(...)} or make it the entire token", e.Variable, e.Token)
}
