package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/dispatchgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// namedArgs collects repeated -set name=value flags in order.
type namedArgs []app.NamedArg

func (n *namedArgs) String() string {
	parts := make([]string, len(*n))
	for i, a := range *n {
		parts[i] = a.Name + "=" + a.Value
	}
	return strings.Join(parts, ",")
}

func (n *namedArgs) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	*n = append(*n, app.NamedArg{Name: strings.TrimSpace(name), Value: value})
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dispatchgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
dispatchgo - Call an engine API method and print the rows it returns.

Usage:
  dispatchgo [options] API METHOD SUBJECT [ARG...]

Arguments:
  API      The class holding the method, e.g. Queries.EntityAPI.
  METHOD   The method name, e.g. GetTop.
  SUBJECT  The subject of the call.
  ARG      Positional arguments. Values are read as HCL literals: 7 is a
           number, null is an absent value, "a b" is a string.

Options:
`)
		flagSet.PrintDefaults()
	}

	var named namedArgs
	flagSet.Var(&named, "set", "Named argument as name=value; repeatable. Overrides a positional argument for the same parameter.")
	configFlag := flagSet.String("config", "", "Path to an HCL config file or directory.")
	cFlag := flagSet.String("c", "", "Path to an HCL config file or directory (shorthand).")
	channelFlag := flagSet.String("channel", "", "Result channel name. Defaults to the configured channel.")
	offlineFlag := flagSet.Bool("offline", false, "Serve the call from the method blocks of the config instead of a remote engine.")
	macrosFlag := flagSet.String("macros", "", "Local include file used as the macro table.")
	formatFlag := flagSet.String("format", app.FormatTable, "Output format. Options: 'table' or 'json'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No method given, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() < 3 {
		return nil, false, &ExitError{Code: 2, Message: "expected API METHOD SUBJECT [ARG...]"}
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = *cFlag
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

	rest := flagSet.Args()
	config, err := app.NewConfig(app.Config{
		ConfigPath: configPath,
		API:        rest[0],
		Method:     rest[1],
		Subject:    rest[2],
		Args:       rest[3:],
		Named:      named,
		Channel:    *channelFlag,
		Offline:    *offlineFlag,
		MacroFile:  *macrosFlag,
		Format:     strings.ToLower(*formatFlag),
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "api", config.API, "method", config.Method)
	return config, false, nil
}
