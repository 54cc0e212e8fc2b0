// Package inspect prints a diagnostic view of the nested units column.
package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/matchstats-cli/internal/dataset"
	"github.com/sirupsen/logrus"
)

// Result describes what Dump found.
type Result struct {
	Row   int
	Unit  dataset.Unit
	Found bool
	// Reason is set when Found is false.
	Reason string
}

// FirstUnit looks up the first unit of the given row without printing.
func FirstUnit(ds *dataset.Dataset, row int) Result {
	res := Result{Row: row}
	switch {
	case ds.Units == nil:
		res.Reason = "the dataset has no units column"
	case row < 0 || row >= ds.Rows():
		res.Reason = fmt.Sprintf("row %d is out of range (0..%d)", row, ds.Rows()-1)
	default:
		u, ok := ds.FirstUnit(row)
		if !ok {
			res.Reason = fmt.Sprintf("record %d has no units", row)
			break
		}
		res.Unit, res.Found = u, true
	}
	return res
}

// Dump writes the first unit of a record with every field on its own line.
// A missing unit is reported as a warning line and is not an error.
func Dump(w io.Writer, ds *dataset.Dataset, row int, log logrus.FieldLogger) Result {
	res := FirstUnit(ds, row)
	if !res.Found {
		if log != nil {
			log.WithField("row", row).Warn(res.Reason)
		}
		fmt.Fprintf(w, "⚠ Warning: cannot show a unit: %s\n", res.Reason)
		return res
	}
	fmt.Fprintf(w, "First unit of record %d:\n", row)
	width := 0
	for _, f := range res.Unit.Fields {
		width = max(width, len(f.Name))
	}
	for _, f := range res.Unit.Fields {
		fmt.Fprintf(w, "  %s%s : %s\n", f.Name, strings.Repeat(" ", width-len(f.Name)), format(f.Value))
	}
	return res
}

func format(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case string:
		return fmt.Sprintf("%q", t)
	default:
		return fmt.Sprint(t)
	}
}
