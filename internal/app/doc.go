// Package app wires the application together: it configures logging,
// loads the build description, resolves the dependency graph, and runs
// the requested output generators.
package app
