// Package dataset provides columnar tabular data loaded from CSV, with the
// exploration and splitting operations the credit-risk workflow is built on.
//
// A Dataset is immutable: every operation either reads it or returns a new
// Dataset. Columns are typed Int, String, or Vector; the loader infers Int
// versus String per column, and the preprocessing assembler adds Vector
// columns.
package dataset

import (
	"github.com/credigo/credigo/pkg/errors"
)

// ColumnType identifies the storage type of a column.
type ColumnType int

const (
	// Int columns hold int64 values parsed by the loader.
	Int ColumnType = iota
	// String columns hold raw CSV cell values.
	String
	// Vector columns hold fixed-length feature vectors built by an assembler.
	Vector
)

// String returns the type name used in schema error messages.
func (t ColumnType) String() string {
	switch t {
	case Int:
		return "int"
	case String:
		return "string"
	case Vector:
		return "vector"
	default:
		return "unknown"
	}
}

// Lookup maps an integer code to its display description. Codes absent from
// the table are reported as LookupError, never defaulted.
type Lookup map[int64]string

// column is a single named, typed column. Exactly one of the value slices is
// populated, matching typ.
type column struct {
	name string
	typ  ColumnType
	ints []int64
	strs []string
	vecs [][]float64
}

// Dataset is an ordered collection of named, row-aligned columns.
type Dataset struct {
	cols  []column
	index map[string]int
	nRows int
}

// New builds a Dataset from parallel column definitions. It is mainly used by
// the loader and by tests; NumRows is taken from the first column.
func New() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// NumRows returns the number of data rows.
func (ds *Dataset) NumRows() int {
	return ds.nRows
}

// NumCols returns the number of columns.
func (ds *Dataset) NumCols() int {
	return len(ds.cols)
}

// ColumnNames returns the column names in their original order.
func (ds *Dataset) ColumnNames() []string {
	names := make([]string, len(ds.cols))
	for i, c := range ds.cols {
		names[i] = c.name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (ds *Dataset) HasColumn(name string) bool {
	_, ok := ds.index[name]
	return ok
}

// Type returns the type of the named column.
func (ds *Dataset) Type(name string) (ColumnType, error) {
	i, ok := ds.index[name]
	if !ok {
		return 0, errors.NewSchemaError("Type", name, "not found")
	}
	return ds.cols[i].typ, nil
}

// Ints returns the values of an Int column. The returned slice is shared and
// must not be modified.
func (ds *Dataset) Ints(name string) ([]int64, error) {
	c, err := ds.typedColumn("Ints", name, Int)
	if err != nil {
		return nil, err
	}
	return c.ints, nil
}

// Strings returns the values of a String column. The returned slice is shared
// and must not be modified.
func (ds *Dataset) Strings(name string) ([]string, error) {
	c, err := ds.typedColumn("Strings", name, String)
	if err != nil {
		return nil, err
	}
	return c.strs, nil
}

// Vectors returns the values of a Vector column. The returned slice is shared
// and must not be modified.
func (ds *Dataset) Vectors(name string) ([][]float64, error) {
	c, err := ds.typedColumn("Vectors", name, Vector)
	if err != nil {
		return nil, err
	}
	return c.vecs, nil
}

// Floats returns an Int column converted to float64, the form the statistics
// and estimator layers consume. The slice is freshly allocated.
func (ds *Dataset) Floats(name string) ([]float64, error) {
	c, err := ds.typedColumn("Floats", name, Int)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(c.ints))
	for i, v := range c.ints {
		out[i] = float64(v)
	}
	return out, nil
}

func (ds *Dataset) typedColumn(op, name string, want ColumnType) (*column, error) {
	i, ok := ds.index[name]
	if !ok {
		return nil, errors.NewSchemaError(op, name, "not found")
	}
	c := &ds.cols[i]
	if c.typ != want {
		return nil, errors.NewSchemaError(op, name, "is "+c.typ.String()+", want "+want.String())
	}
	return c, nil
}

// addColumn appends a column, enforcing unique names and row alignment.
func (ds *Dataset) addColumn(op string, c column) error {
	if _, dup := ds.index[c.name]; dup {
		return errors.NewSchemaError(op, c.name, "duplicate column name")
	}

	var n int
	switch c.typ {
	case Int:
		n = len(c.ints)
	case String:
		n = len(c.strs)
	case Vector:
		n = len(c.vecs)
	}
	if len(ds.cols) == 0 {
		ds.nRows = n
	} else if n != ds.nRows {
		return errors.NewDimensionError(op, ds.nRows, n, 0)
	}

	ds.index[c.name] = len(ds.cols)
	ds.cols = append(ds.cols, c)
	return nil
}

// AddInts appends an Int column. Used by the loader and the sample generator.
func (ds *Dataset) AddInts(name string, values []int64) error {
	return ds.addColumn("AddInts", column{name: name, typ: Int, ints: values})
}

// AddStrings appends a String column.
func (ds *Dataset) AddStrings(name string, values []string) error {
	return ds.addColumn("AddStrings", column{name: name, typ: String, strs: values})
}

// WithVector returns a new Dataset with one extra Vector column appended.
// Existing column storage is shared with the receiver.
func (ds *Dataset) WithVector(name string, vecs [][]float64) (*Dataset, error) {
	out := &Dataset{
		cols:  make([]column, len(ds.cols), len(ds.cols)+1),
		index: make(map[string]int, len(ds.index)+1),
		nRows: ds.nRows,
	}
	copy(out.cols, ds.cols)
	for k, v := range ds.index {
		out.index[k] = v
	}
	if err := out.addColumn("WithVector", column{name: name, typ: Vector, vecs: vecs}); err != nil {
		return nil, err
	}
	return out, nil
}

// Subset returns a new Dataset containing the given rows in the given order.
// Row indices outside [0, NumRows) are a ValueError.
func (ds *Dataset) Subset(rows []int) (*Dataset, error) {
	for _, r := range rows {
		if r < 0 || r >= ds.nRows {
			return nil, errors.NewValueError("Subset", "row index out of range")
		}
	}

	out := &Dataset{
		cols:  make([]column, len(ds.cols)),
		index: make(map[string]int, len(ds.index)),
		nRows: len(rows),
	}
	for i, c := range ds.cols {
		nc := column{name: c.name, typ: c.typ}
		switch c.typ {
		case Int:
			nc.ints = make([]int64, len(rows))
			for j, r := range rows {
				nc.ints[j] = c.ints[r]
			}
		case String:
			nc.strs = make([]string, len(rows))
			for j, r := range rows {
				nc.strs[j] = c.strs[r]
			}
		case Vector:
			nc.vecs = make([][]float64, len(rows))
			for j, r := range rows {
				nc.vecs[j] = c.vecs[r]
			}
		}
		out.cols[i] = nc
		out.index[c.name] = i
	}
	return out, nil
}
