package hcl_adapter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dispatchgo/internal/config"
	"github.com/vk/dispatchgo/internal/testutil"
)

const fullConfig = `
remote {
  url                  = "http://localhost:52773/socket.io/"
  namespace            = "/engine"
  timeout              = "3s"
  insecure_skip_verify = true
}

dispatch {
  channel          = "^||rows"
  macro_prefix     = "$$$"
  cache_signatures = true
  macro_file       = "include/defines.inc"
}

macros = ["#define UNION 0"]

method "Queries.EntityAPI" "GetTop" {
  formal  = "&result,domainid:%Integer,setop=$$$UNION"
  returns = "entity:%String,frequency:%Integer"

  entry {
    key    = 2
    fields = ["dog", "1"]
  }
  entry {
    key    = 1
    fields = ["cat", "3"]
  }
}
`

func TestLoader_FullConfig(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": fullConfig})

	model, err := NewLoader().Load(ctx, filepath.Join(dir, "main.hcl"))
	require.NoError(t, err)

	prefix := "$$$"
	want := &config.Model{
		Remote: &config.Remote{
			URL:                "http://localhost:52773/socket.io/",
			Namespace:          "/engine",
			Timeout:            3 * time.Second,
			InsecureSkipVerify: true,
		},
		Dispatch: &config.Dispatch{
			Channel:         "^||rows",
			MacroPrefix:     &prefix,
			CacheSignatures: true,
			MacroFile:       "include/defines.inc",
		},
		Engine: &config.Engine{
			Macros: []string{"#define UNION 0"},
			Methods: []*config.Method{{
				API:     "Queries.EntityAPI",
				Name:    "GetTop",
				Formal:  "&result,domainid:%Integer,setop=$$$UNION",
				Returns: "entity:%String,frequency:%Integer",
				Entries: []*config.Entry{
					{Key: 2, Fields: []string{"dog", "1"}},
					{Key: 1, Fields: []string{"cat", "3"}},
				},
			}},
		},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_DirectoryMerge(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)
	dir := testutil.WriteFiles(t, map[string]string{
		"remote.hcl": `remote { url = "http://engine:80/socket.io/" }`,
		"methods/a.hcl": `
macros = ["#define A 1"]
method "A" "m" {
  formal  = "&r,s"
  returns = "c"
}`,
		"methods/b.hcl": `
macros = ["#define B 2"]
method "B" "m" {
  formal  = "&r,s"
  returns = "c"
  fail    = "boom"
}`,
		"methods/notes.txt": `not hcl`,
	})

	model, err := NewLoader().Load(ctx, dir, filepath.Join(dir, "does-not-exist"))
	require.NoError(t, err)

	require.NotNil(t, model.Remote)
	assert.Equal(t, config.DefaultTimeout, model.Remote.Timeout)
	assert.Nil(t, model.Dispatch)
	require.NotNil(t, model.Engine)
	assert.Equal(t, []string{"#define A 1", "#define B 2"}, model.Engine.Macros)
	require.Len(t, model.Engine.Methods, 2)
	assert.Equal(t, "boom", model.Engine.Methods[1].Fail)
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `remote {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown block",
			files:   map[string]string{"a.hcl": `step "x" {}`},
			wantErr: "failed to decode HCL file",
		},
		{
			name: "duplicate remote across files",
			files: map[string]string{
				"a.hcl": `remote { url = "http://a/" }`,
				"b.hcl": `remote { url = "http://b/" }`,
			},
			wantErr: "Duplicate remote block",
		},
		{
			name:    "duplicate dispatch",
			files:   map[string]string{"a.hcl": "dispatch {}\ndispatch {}"},
			wantErr: "Duplicate dispatch block",
		},
		{
			name: "duplicate method",
			files: map[string]string{"a.hcl": `
method "A" "m" {
  formal  = ""
  returns = ""
}
method "A" "m" {
  formal  = ""
  returns = ""
}`},
			wantErr: "Duplicate method definition",
		},
		{
			name:    "invalid timeout",
			files: map[string]string{"a.hcl": `
remote {
  url     = "http://a/"
  timeout = "soon"
}`},
			wantErr: "Invalid timeout",
		},
		{
			name:    "missing url",
			files:   map[string]string{"a.hcl": `remote { namespace = "/x" }`},
			wantErr: "url",
		},
		{
			name:    "empty channel",
			files:   map[string]string{"a.hcl": `dispatch { channel = "" }`},
			wantErr: "Invalid channel",
		},
		{
			name: "duplicate entry key",
			files: map[string]string{"a.hcl": `
method "A" "m" {
  formal  = ""
  returns = ""
  entry {
    key    = 1
    fields = []
  }
  entry {
    key    = 1
    fields = []
  }
}`},
			wantErr: "Duplicate entry key",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.Context(t)
			dir := testutil.WriteFiles(t, tc.files)

			_, err := NewLoader().Load(ctx, dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
