package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vk/dispatchgo/internal/dispatch"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

func render(w io.Writer, format string, res *dispatch.Result) error {
	if format == FormatJSON {
		return renderJSON(w, res)
	}
	return renderTable(w, res)
}

// renderTable writes one tab-aligned line per row under a header of column
// names. Omitted trailing columns are left blank.
func renderTable(w io.Writer, res *dispatch.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(res.Names(), "\t"))
	for _, row := range res.Strings() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// renderJSON writes the rows as a JSON array of objects. A short row's
// object lacks its omitted columns.
func renderJSON(w io.Writer, res *dispatch.Result) error {
	rows := make([]cty.Value, len(res.Rows))
	for i, row := range res.Rows {
		rows[i] = cty.ObjectVal(row)
	}
	val := cty.TupleVal(rows)

	out, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
