package inspect

import (
	"bytes"
	"io"
	"testing"

	"github.com/KaramelBytes/matchstats-cli/internal/dataset"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoRows() *dataset.Dataset {
	df := dataframe.New(series.New([]int{1, 5}, series.Int, dataset.ColPlacement))
	return dataset.FromFrame("t.parquet", df)
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDumpFirstUnit(t *testing.T) {
	ds := twoRows()
	ds.Units = [][]dataset.Unit{
		{{Fields: []dataset.UnitField{
			{Name: "character_id", Value: "TFT_Jinx"},
			{Name: "tier", Value: int64(2)},
			{Name: "itemNames", Value: []any{"InfinityEdge"}},
		}}},
		nil,
	}

	var buf bytes.Buffer
	res := Dump(&buf, ds, 0, quiet())
	require.True(t, res.Found)
	out := buf.String()
	assert.Contains(t, out, "First unit of record 0:")
	assert.Contains(t, out, `character_id : "TFT_Jinx"`)
	assert.Contains(t, out, "tier         : 2")
	assert.Contains(t, out, `itemNames    : ["InfinityEdge"]`)
}

func TestDumpWarnings(t *testing.T) {
	tests := []struct {
		name   string
		units  [][]dataset.Unit
		row    int
		reason string
	}{
		{"no units column", nil, 0, "no units column"},
		{"empty record", [][]dataset.Unit{nil, nil}, 1, "record 1 has no units"},
		{"out of range", [][]dataset.Unit{nil, nil}, 7, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := twoRows()
			ds.Units = tt.units
			var buf bytes.Buffer
			res := Dump(&buf, ds, tt.row, quiet())
			assert.False(t, res.Found)
			assert.Contains(t, res.Reason, tt.reason)
			assert.Contains(t, buf.String(), "⚠ Warning: cannot show a unit")
		})
	}
}

func TestFormatNull(t *testing.T) {
	assert.Equal(t, "null", format(nil))
	assert.Equal(t, "[1, null]", format([]any{int64(1), nil}))
}
