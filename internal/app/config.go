package app

import (
	"errors"
	"fmt"
	"os"
)

// NamedArg is one name=value argument from the command line.
type NamedArg struct {
	Name  string
	Value string
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl file or directory

	API     string
	Method  string
	Subject string
	Args    []string
	Named   []NamedArg

	Channel   string
	Offline   bool
	MacroFile string
	Format    string

	LogFormat string
	LogLevel  string
}

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.API == "" || cfg.Method == "" {
		return nil, errors.New("API and METHOD are required")
	}

	switch cfg.Format {
	case "":
		cfg.Format = FormatTable
	case FormatTable, FormatJSON:
	default:
		return nil, fmt.Errorf("invalid format %q: must be '%s' or '%s'", cfg.Format, FormatTable, FormatJSON)
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
	}
	if cfg.ConfigPath == "" && !cfg.Offline {
		return nil, errors.New("a config path with a remote block is required unless running offline")
	}

	for _, n := range cfg.Named {
		if n.Name == "" {
			return nil, errors.New("named arguments need a name")
		}
	}
	return &cfg, nil
}
