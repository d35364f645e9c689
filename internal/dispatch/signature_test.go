package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dispatchgo/internal/memengine"
	"github.com/vk/dispatchgo/internal/remote"
)

func TestParseParameterSpec(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		raw  string
		want []Parameter
	}{
		{
			name: "full formal string",
			raw:  `&result,domainid:%Integer,page:%Integer=1,setop=$$$UNION,filter=""`,
			want: []Parameter{
				{Name: "result", Marker: true},
				{Name: "domainid", Type: "%Integer"},
				{Name: "page", Type: "%Integer", HasDefault: true, Default: "1"},
				{Name: "setop", HasDefault: true, Default: "$$$UNION", Symbolic: true},
				{Name: "filter", HasDefault: true, Default: `""`},
			},
		},
		{
			name: "output and variadic markers",
			raw:  "*out:%String, ...rest, args...:%List",
			want: []Parameter{
				{Name: "out", Type: "%String", Marker: true},
				{Name: "rest", Marker: true},
				{Name: "args", Type: "%List", Marker: true},
			},
		},
		{
			name: "commas inside quoted defaults do not split",
			raw:  `a,sep:%String=",",b`,
			want: []Parameter{
				{Name: "a"},
				{Name: "sep", Type: "%String", HasDefault: true, Default: `","`},
				{Name: "b"},
			},
		},
		{
			name: "empty tokens are skipped",
			raw:  "a,,b,",
			want: []Parameter{{Name: "a"}, {Name: "b"}},
		},
		{
			name: "empty string",
			raw:  "",
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParseParameterSpec(tc.raw, DefaultMacroPrefix)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseParameterSpec() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseParameterSpec_CustomPrefix(t *testing.T) {
	t.Parallel()

	params := ParseParameterSpec("a=@@X,b=$$$Y", "@@")
	require.Len(t, params, 2)
	assert.True(t, params[0].Symbolic)
	assert.False(t, params[1].Symbolic)

	params = ParseParameterSpec("a=$$$X", "")
	require.Len(t, params, 1)
	assert.False(t, params[0].Symbolic, "an empty prefix disables macros")
}

func TestParseResultSchema(t *testing.T) {
	t.Parallel()

	got := ParseResultSchema("entUniId:%Integer, entity:%String,,frequency")
	want := []Column{
		{Name: "entUniId", DeclaredType: "%Integer"},
		{Name: "entity", DeclaredType: "%String"},
		{Name: "frequency"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseResultSchema() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, ParseResultSchema(""))
}

func TestCallable(t *testing.T) {
	t.Parallel()

	params := ParseParameterSpec("&result,subject,a,b", "")
	callable := Callable(params)
	require.Len(t, callable, 2)
	assert.Equal(t, "a", callable[0].Name)

	assert.Nil(t, Callable(params[:2]))
	assert.Nil(t, Callable(nil))
}

// countingMeta counts metadata lookups on top of an in-memory engine.
type countingMeta struct {
	*memengine.Engine
	params, results int
	err             error
}

func (m *countingMeta) ParameterSpec(ctx context.Context, api, method string) (string, error) {
	m.params++
	if m.err != nil {
		return "", m.err
	}
	return m.Engine.ParameterSpec(ctx, api, method)
}

func (m *countingMeta) ResultSchema(ctx context.Context, api, method string) (string, error) {
	m.results++
	if m.err != nil {
		return "", m.err
	}
	return m.Engine.ResultSchema(ctx, api, method)
}

func newCountingMeta() *countingMeta {
	e := memengine.New()
	e.Register("A", "m", &memengine.Method{Formal: "&r,s,x", Returns: "c:%String"})
	return &countingMeta{Engine: e}
}

func TestSignatureResolver_Cache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()
		meta := newCountingMeta()
		s := NewSignatureResolver(meta, DefaultMacroPrefix, true)
		for i := 0; i < 3; i++ {
			_, err := s.ParameterSpec(ctx, "A", "m")
			require.NoError(t, err)
			_, err = s.ResultSchema(ctx, "A", "m")
			require.NoError(t, err)
		}
		assert.Equal(t, 1, meta.params)
		assert.Equal(t, 1, meta.results)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		meta := newCountingMeta()
		s := NewSignatureResolver(meta, DefaultMacroPrefix, false)
		for i := 0; i < 3; i++ {
			_, err := s.ParameterSpec(ctx, "A", "m")
			require.NoError(t, err)
		}
		assert.Equal(t, 3, meta.params)
	})
}

func TestSignatureResolver_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewSignatureResolver(newCountingMeta(), DefaultMacroPrefix, false)
	_, err := s.ResultSchema(ctx, "A", "missing")
	require.ErrorIs(t, err, ErrSchemaNotFound)
	assert.ErrorIs(t, err, remote.ErrNotFound)

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "A", de.API)
	assert.Equal(t, "missing", de.Method)

	_, err = s.ParameterSpec(ctx, "Nope", "m")
	assert.ErrorIs(t, err, ErrSchemaNotFound)

	boom := errors.New("connection reset")
	meta := newCountingMeta()
	meta.err = boom
	s = NewSignatureResolver(meta, DefaultMacroPrefix, false)
	_, err = s.ParameterSpec(ctx, "A", "m")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrSchemaNotFound, "transport failures are not missing schemas")
}
