package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dispatchgo/internal/app"
)

func TestParse(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg, exit, err := Parse([]string{
		"-c", dir,
		"-set", "page=2",
		"-set", "filter= a=b ",
		"-channel", "^||mine",
		"-format", "JSON",
		"-log-level", "DEBUG",
		"Queries.EntityAPI", "GetTop", "domain", "7", "null",
	}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)

	want := &app.Config{
		ConfigPath: dir,
		API:        "Queries.EntityAPI",
		Method:     "GetTop",
		Subject:    "domain",
		Args:       []string{"7", "null"},
		Named:      []app.NamedArg{{Name: "page", Value: "2"}, {Name: "filter", Value: " a=b "}},
		Channel:    "^||mine",
		Format:     app.FormatJSON,
		LogFormat:  "text",
		LogLevel:   "debug",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Offline(t *testing.T) {
	t.Parallel()

	cfg, _, err := Parse([]string{"-offline", "-macros", "defs.inc", "A", "m", "s"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, cfg.Offline)
	assert.Equal(t, "defs.inc", cfg.MacroFile)
	assert.Equal(t, app.FormatTable, cfg.Format)
	assert.Empty(t, cfg.Args)
}

func TestParse_Usage(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantMsg: "flag provided but not defined"},
		{name: "bad named arg", args: []string{"-set", "novalue", "A", "m", "s"}, wantMsg: "expected name=value"},
		{name: "too few positionals", args: []string{"-offline", "A", "m"}, wantMsg: "expected API METHOD SUBJECT"},
		{name: "bad log format", args: []string{"-offline", "-log-format", "xml", "A", "m", "s"}, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-offline", "-log-level", "loud", "A", "m", "s"}, wantMsg: "invalid log-level"},
		{name: "bad format", args: []string{"-offline", "-format", "xml", "A", "m", "s"}, wantMsg: "invalid format"},
		{name: "online without config", args: []string{"A", "m", "s"}, wantMsg: "unless running offline"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
