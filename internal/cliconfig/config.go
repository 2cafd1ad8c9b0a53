// Package cliconfig parses the small, hand-rolled BabyDuck CLI surface:
// no flags library is warranted for three switches (spec §6).
package cliconfig

import (
	"fmt"
	"io"
	"os"
)

// Config holds the resolved CLI configuration for one compile+run.
type Config struct {
	SourcePath string // "" means read from stdin
	Trace      bool
	Input      io.Reader
	Output     io.Writer
}

// Parse reads os.Args-style arguments (excluding argv[0]) into a Config.
// Recognized forms: "babyduck", "babyduck -trace", "babyduck file.bd",
// "babyduck -trace file.bd" (order-independent).
func Parse(args []string) (*Config, error) {
	cfg := &Config{Output: os.Stdout}

	for _, a := range args {
		switch a {
		case "-trace", "--trace":
			cfg.Trace = true
		case "-h", "-help", "--help":
			return nil, fmt.Errorf("usage: babyduck [-trace] [file.bd]")
		default:
			if cfg.SourcePath != "" {
				return nil, fmt.Errorf("unexpected argument %q", a)
			}
			cfg.SourcePath = a
		}
	}

	if cfg.SourcePath != "" {
		f, err := os.Open(cfg.SourcePath)
		if err != nil {
			return nil, err
		}
		cfg.Input = f
	} else {
		cfg.Input = os.Stdin
	}

	return cfg, nil
}
