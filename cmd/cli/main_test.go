package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const offlineHCL = `
macros = ["#define CALLCHAIN UNION"]

method "Queries.EntityAPI" "GetTop" {
  formal  = "&result,domainid:%Integer,setop=$$$CALLCHAIN"
  returns = "entity:%String,frequency:%Integer"

  entry {
    key    = 1
    fields = ["cat", "3"]
  }
}
`

func TestRun_Offline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(offlineHCL), 0600))

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(out, errOut, []string{"-offline", "-c", path, "-format", "json", "Queries.EntityAPI", "GetTop", "domain", "7"})

	require.NoError(t, err)
	require.JSONEq(t, `[{"entity":"cat","frequency":"3"}]`, out.String())
}

func TestRun_LoadError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte("method \"A\" \"m\" {\n"), 0600))

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"-offline", "-c", path, "A", "m", "s"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}
	err := run(out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
