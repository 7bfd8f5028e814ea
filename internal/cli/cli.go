package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/ninjaplan/internal/app"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("ninjaplan", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
ninjaplan - A declarative build description compiler for C and C++ projects.

Usage:
  ninjaplan [options] [BUILD_PATH]

Arguments:
  BUILD_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	fileFlag := flagSet.String("file", "", "Path to the build description file or directory.")
	fFlag := flagSet.String("f", "", "Path to the build description file or directory (shorthand).")
	outputDirFlag := flagSet.String("output-dir", "", "Directory for generated files. Defaults to the description's directory.")
	oFlag := flagSet.String("o", "", "Directory for generated files (shorthand).")
	generatorsFlag := flagSet.String("generators", "ninja", "Comma-separated outputs to generate. Options: 'ninja', 'compile_commands', 'mermaid'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	versionFlag := flagSet.Bool("version", false, "Print the version and exit.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if *versionFlag {
		fmt.Fprintf(output, "ninjaplan %s\n", Version)
		return nil, true, nil
	}

	path := ""
	if *fileFlag != "" {
		path = *fileFlag
	} else if *fFlag != "" {
		path = *fFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Build description path determined.", "path", path)

	if path == "" {
		slog.Debug("No build description path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	outputDir := *outputDirFlag
	if outputDir == "" {
		outputDir = *oFlag
	}

	var generators []string
	for _, name := range strings.Split(*generatorsFlag, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			generators = append(generators, name)
		}
	}
	if len(generators) == 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid generators: at least one generator is required"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		DescriptionPath: path,
		OutputDir:       outputDir,
		Generators:      generators,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
