package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_InvalidDescription(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "build.hcl")
	invalidHCL := `
		program "app" {
			sources = [
	`
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0600))

	out := &bytes.Buffer{}
	err := run(out, []string{filePath})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load build description")
}

func TestRun_GeneratesNinjaFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "src", "main.c"), []byte("int main(void){return 0;}\n"), 0o644))
	description := `
environment "base" {
  toolchain = "gcc"
}

program "app" {
  environment = "base"
  sources     = ["src/main.c"]
  default     = true
}
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "build.hcl"), []byte(description), 0o644))

	out := &bytes.Buffer{}
	err := run(out, []string{tempDir})

	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(tempDir, "build.ninja"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "rule base_cc")
	assert.Contains(t, string(content), "default ")
}
