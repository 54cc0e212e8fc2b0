package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"
)

// DefaultPath is the dataset location used when none is configured.
const DefaultPath = "dataset.parquet"

// Options controls how a dataset file is loaded.
type Options struct {
	// UnitsColumn names the nested per-record unit list. Empty disables decoding.
	UnitsColumn string
	Logger      logrus.FieldLogger
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{UnitsColumn: "units"}
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

// Dataset is the in-memory table of match-round records. It is built once by
// Load, extended once by DeriveTop4 and read-only afterwards.
type Dataset struct {
	Name  string
	Path  string
	Frame dataframe.DataFrame
	// Units holds the decoded unit list per row; nil when the file has no units column.
	Units [][]Unit
	// Skipped lists nested columns that were not loaded into Frame.
	Skipped []string

	rows      int
	unitsName string
}

// FromFrame wraps an existing frame, mainly for callers that build data in memory.
func FromFrame(name string, df dataframe.DataFrame) *Dataset {
	return &Dataset{Name: name, Frame: df, rows: df.Nrow()}
}

// Rows returns the number of records.
func (d *Dataset) Rows() int { return d.rows }

// Columns counts every top-level field, including units and skipped nested columns.
func (d *Dataset) Columns() int {
	n := d.Frame.Ncol() + len(d.Skipped)
	if d.Units != nil {
		n++
	}
	return n
}

// ColumnNames lists frame columns followed by the nested ones.
func (d *Dataset) ColumnNames() []string {
	names := append([]string{}, d.Frame.Names()...)
	if d.Units != nil {
		names = append(names, d.unitsName)
	}
	return append(names, d.Skipped...)
}

// Head returns the first n rows of the frame.
func (d *Dataset) Head(n int) dataframe.DataFrame {
	if n <= 0 || n >= d.Frame.Nrow() {
		return d.Frame
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return d.Frame.Subset(idx)
}

// Load reads a parquet file into memory. A missing file yields a *NotFoundError.
func Load(path string, opt Options) (*Dataset, error) {
	log := opt.logger().WithField("path", path)
	fh, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer fh.Close()
	st, err := fh.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	pf, err := parquet.OpenFile(fh, st.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	log.WithFields(logrus.Fields{"rows": pf.NumRows(), "row_groups": len(pf.RowGroups())}).Debug("parquet footer read")

	ds := &Dataset{Name: filepath.Base(path), Path: path, rows: int(pf.NumRows())}
	schema := pf.Schema()
	var cols []series.Series
	for _, field := range schema.Fields() {
		name := field.Name()
		if opt.UnitsColumn != "" && strings.EqualFold(name, opt.UnitsColumn) {
			units, err := readUnits(pf, name, ds.rows)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			ds.Units = units
			ds.unitsName = name
			continue
		}
		if !field.Leaf() || field.Repeated() {
			log.WithField("column", name).Debug("skipping nested column")
			ds.Skipped = append(ds.Skipped, name)
			continue
		}
		leaf, ok := schema.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("column %s: not in schema", name)
		}
		s, err := readScalar(pf, name, leaf.ColumnIndex, field.Type().Kind(), ds.rows)
		if err != nil {
			return nil, err
		}
		if s == nil {
			log.WithField("column", name).Debug("skipping unsupported physical type")
			ds.Skipped = append(ds.Skipped, name)
			continue
		}
		cols = append(cols, *s)
	}
	if len(cols) > 0 {
		ds.Frame = dataframe.New(cols...)
		if ds.Frame.Err != nil {
			return nil, fmt.Errorf("build table: %w", ds.Frame.Err)
		}
	}
	return ds, nil
}

// readScalar converts one flat column into a gota series. It returns nil for
// physical types with no series equivalent (INT96).
func readScalar(pf *parquet.File, name string, idx int, kind parquet.Kind, rows int) (*series.Series, error) {
	var s series.Series
	switch kind {
	case parquet.Boolean:
		vals := make([]string, 0, rows)
		err := readColumn(pf, idx, func(v parquet.Value) error {
			switch {
			case v.IsNull():
				vals = append(vals, "NaN")
			case v.Boolean():
				vals = append(vals, "true")
			default:
				vals = append(vals, "false")
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		s = series.New(vals, series.Bool, name)
	case parquet.Int32, parquet.Int64:
		ints := make([]int, 0, rows)
		var strs []string
		err := readColumn(pf, idx, func(v parquet.Value) error {
			if v.IsNull() {
				if strs == nil {
					strs = make([]string, len(ints), max(rows, len(ints)))
					for i, x := range ints {
						strs[i] = strconv.Itoa(x)
					}
				}
				strs = append(strs, "NaN")
				return nil
			}
			x := int(v.Int64())
			if kind == parquet.Int32 {
				x = int(v.Int32())
			}
			if strs != nil {
				strs = append(strs, strconv.Itoa(x))
				return nil
			}
			ints = append(ints, x)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if strs != nil {
			s = series.New(strs, series.Int, name)
		} else {
			s = series.New(ints, series.Int, name)
		}
	case parquet.Float, parquet.Double:
		vals := make([]float64, 0, rows)
		err := readColumn(pf, idx, func(v parquet.Value) error {
			switch {
			case v.IsNull():
				vals = append(vals, math.NaN())
			case kind == parquet.Float:
				vals = append(vals, float64(v.Float()))
			default:
				vals = append(vals, v.Double())
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		s = series.New(vals, series.Float, name)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		vals := make([]string, 0, rows)
		err := readColumn(pf, idx, func(v parquet.Value) error {
			if v.IsNull() {
				vals = append(vals, "NaN")
				return nil
			}
			vals = append(vals, string(v.ByteArray()))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		s = series.New(vals, series.String, name)
	default:
		return nil, nil
	}
	if s.Err != nil {
		return nil, fmt.Errorf("column %s: %w", name, s.Err)
	}
	if s.Len() != rows {
		return nil, fmt.Errorf("column %s: %d values for %d rows", name, s.Len(), rows)
	}
	return &s, nil
}

// readColumn streams every value of the leaf column at idx across all row groups.
func readColumn(pf *parquet.File, idx int, fn func(parquet.Value) error) error {
	buf := make([]parquet.Value, 1024)
	for g, rg := range pf.RowGroups() {
		chunks := rg.ColumnChunks()
		if idx >= len(chunks) {
			return fmt.Errorf("row group %d: no column %d", g, idx)
		}
		if err := readPages(chunks[idx].Pages(), buf, fn); err != nil {
			return fmt.Errorf("row group %d: %w", g, err)
		}
	}
	return nil
}

func readPages(pages parquet.Pages, buf []parquet.Value, fn func(parquet.Value) error) error {
	defer pages.Close()
	for {
		page, err := pages.ReadPage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		vr := page.Values()
		for {
			n, err := vr.ReadValues(buf)
			for _, v := range buf[:n] {
				if ferr := fn(v); ferr != nil {
					return ferr
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return err
			}
		}
	}
}
