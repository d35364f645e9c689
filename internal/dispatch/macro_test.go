package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dispatchgo/internal/remote"
)

type failingTable struct{}

func (failingTable) Line(context.Context, int) (string, bool, error) {
	return "", false, errors.New("table unavailable")
}

func TestScanResolver(t *testing.T) {
	t.Parallel()

	table := remote.LineTable{
		"; constants",
		"#define",
		"#define UNION 0",
		"#define LABEL long value",
		"#define UNION 1",
		"#define INTERSECT 2 ; trailing",
	}
	r := &ScanResolver{Table: table, Prefix: DefaultMacroPrefix}

	testCases := []struct {
		token  string
		want   string
		wantOK bool
	}{
		{token: "$$$UNION", want: "0", wantOK: true},
		{token: "$$$INTERSECT", want: "2", wantOK: true},
		{token: "$$$LABEL", want: "long", wantOK: true},
		{token: "$$$union", wantOK: false},
		{token: "$$$MISSING", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			t.Parallel()
			got, ok, err := r.Resolve(context.Background(), tc.token)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScanResolver_TableError(t *testing.T) {
	t.Parallel()

	_, _, err := (&ScanResolver{Table: failingTable{}}).Resolve(context.Background(), "X")
	assert.ErrorContains(t, err, "table unavailable")
}

func TestMapResolver(t *testing.T) {
	t.Parallel()

	r := &MapResolver{Prefix: "@", Values: map[string]string{"X": "1"}}
	v, ok, err := r.Resolve(context.Background(), "@X")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok, _ = r.Resolve(context.Background(), "@Y")
	assert.False(t, ok)
}
