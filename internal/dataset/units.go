package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// UnitField is one named attribute of a unit (character id, tier, items...).
type UnitField struct {
	Name  string
	Value any
}

// Unit is a single board unit with its fields in schema order.
type Unit struct {
	Fields []UnitField
}

// Get returns the value of the named field.
func (u Unit) Get(name string) (any, bool) {
	for _, f := range u.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (u *Unit) set(name string, v any) {
	for i := range u.Fields {
		if u.Fields[i].Name == name {
			u.Fields[i].Value = v
			return
		}
	}
	u.Fields = append(u.Fields, UnitField{Name: name, Value: v})
}

func (u *Unit) appendTo(name string, v any) {
	cur, _ := u.Get(name)
	list, _ := cur.([]any)
	if v != nil {
		list = append(list, v)
	}
	if list == nil {
		list = []any{}
	}
	u.set(name, list)
}

// String renders the unit as {name: value, ...}.
func (u Unit) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, f := range u.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%s: %v", f.Name, f.Value))
	}
	b.WriteString("}")
	return b.String()
}

// wrapper segments introduced by the parquet LIST encoding.
var listSegments = map[string]bool{"list": true, "element": true, "item": true, "array": true, "bag": true}

func unitFieldName(path []string) string {
	var parts []string
	for _, seg := range path[1:] {
		if listSegments[seg] {
			continue
		}
		parts = append(parts, seg)
	}
	if len(parts) == 0 {
		return "value"
	}
	return strings.Join(parts, ".")
}

// listLevels walks path from the root and returns the repetition and
// definition levels at which an element of the first repeated node exists.
func listLevels(root parquet.Node, path []string) (rep, def int, ok bool) {
	node := root
	for _, seg := range path {
		var child parquet.Node
		for _, f := range node.Fields() {
			if f.Name() == seg {
				child = f
				break
			}
		}
		if child == nil {
			return 0, 0, false
		}
		if child.Repeated() {
			return rep + 1, def + 1, true
		}
		if child.Optional() {
			def++
		}
		node = child
	}
	return 0, 0, false
}

// readUnits decodes the nested unit list column into one []Unit per row.
// Rows whose list is null or empty get a nil slice.
func readUnits(pf *parquet.File, column string, rows int) ([][]Unit, error) {
	schema := pf.Schema()
	units := make([][]Unit, rows)
	type leafCol struct {
		path  []string
		index int
	}
	var leaves []leafCol
	for i, path := range schema.Columns() {
		if len(path) > 0 && path[0] == column {
			leaves = append(leaves, leafCol{path: path, index: i})
		}
	}
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].index < leaves[j].index })
	for _, lc := range leaves {
		rep, def, ok := listLevels(schema, lc.path)
		if !ok {
			return nil, fmt.Errorf("%s is not a repeated column", strings.Join(lc.path, "."))
		}
		leaf, found := schema.Lookup(lc.path...)
		if !found {
			return nil, fmt.Errorf("%s: not in schema", strings.Join(lc.path, "."))
		}
		name := unitFieldName(lc.path)
		nested := leaf.MaxRepetitionLevel > rep
		row, elem := -1, -1
		err := readColumn(pf, lc.index, func(v parquet.Value) error {
			r := v.RepetitionLevel()
			if r == 0 {
				row++
				elem = -1
			}
			if row < 0 || row >= rows {
				return fmt.Errorf("%s: value beyond row %d", name, rows)
			}
			if r <= rep {
				if v.DefinitionLevel() < def {
					return nil
				}
				elem++
			}
			if elem < 0 {
				return fmt.Errorf("%s: nested value before first unit in row %d", name, row)
			}
			for len(units[row]) <= elem {
				units[row] = append(units[row], Unit{})
			}
			u := &units[row][elem]
			if nested {
				u.appendTo(name, valueOf(v))
			} else {
				u.set(name, valueOf(v))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return units, nil
}

func valueOf(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

// FirstUnit returns the first unit of the given row. The bool is false when
// the dataset has no units column, the row is out of range or has no units.
func (d *Dataset) FirstUnit(row int) (Unit, bool) {
	if d.Units == nil || row < 0 || row >= len(d.Units) || len(d.Units[row]) == 0 {
		return Unit{}, false
	}
	return d.Units[row][0], true
}
