package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// DescriptionPath is a single build description file or a directory
	// searched recursively.
	DescriptionPath string

	// OutputDir is where generated files are written. Empty means the
	// build description's root directory.
	OutputDir string

	// Generators names the outputs to produce, in order.
	Generators []string

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.DescriptionPath == "" {
		return nil, errors.New("DescriptionPath is a required configuration field and cannot be empty")
	}
	if len(cfg.Generators) == 0 {
		cfg.Generators = []string{"ninja"}
	}
	return &cfg, nil
}
