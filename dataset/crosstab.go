package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/credigo/credigo/pkg/errors"
)

// CrossTable is a two-way frequency table: Counts[i][j] is the number of rows
// whose row-column value is RowKeys[i] and whose col-column value is
// ColKeys[j]. Keys are ascending. RowLabels default to the decimal row keys
// and can be replaced through ApplyRowLookup.
type CrossTable struct {
	RowName   string
	ColName   string
	RowKeys   []int64
	ColKeys   []int64
	RowLabels []string
	Counts    [][]int
}

// CrossTab cross-tabulates two Int columns.
func (ds *Dataset) CrossTab(rowCol, colCol string) (*CrossTable, error) {
	rowVals, err := ds.Ints(rowCol)
	if err != nil {
		return nil, err
	}
	colVals, err := ds.Ints(colCol)
	if err != nil {
		return nil, err
	}

	rowKeys := distinctSorted(rowVals)
	colKeys := distinctSorted(colVals)

	rowIdx := make(map[int64]int, len(rowKeys))
	for i, k := range rowKeys {
		rowIdx[k] = i
	}
	colIdx := make(map[int64]int, len(colKeys))
	for j, k := range colKeys {
		colIdx[k] = j
	}

	counts := make([][]int, len(rowKeys))
	for i := range counts {
		counts[i] = make([]int, len(colKeys))
	}
	for n := range rowVals {
		counts[rowIdx[rowVals[n]]][colIdx[colVals[n]]]++
	}

	labels := make([]string, len(rowKeys))
	for i, k := range rowKeys {
		labels[i] = strconv.FormatInt(k, 10)
	}

	return &CrossTable{
		RowName:   rowCol,
		ColName:   colCol,
		RowKeys:   rowKeys,
		ColKeys:   colKeys,
		RowLabels: labels,
		Counts:    counts,
	}, nil
}

// ApplyRowLookup replaces the row labels with their descriptions from lk.
// A row key absent from the table is a LookupError; there is no default.
func (t *CrossTable) ApplyRowLookup(lk Lookup) error {
	labels := make([]string, len(t.RowKeys))
	for i, k := range t.RowKeys {
		desc, ok := lk[k]
		if !ok {
			return errors.NewLookupError(t.RowName+" lookup", k)
		}
		labels[i] = desc
	}
	t.RowLabels = labels
	return nil
}

// String renders the table with aligned columns.
func (t *CrossTable) String() string {
	head := t.RowName + ` \ ` + t.ColName

	labelWidth := len(head)
	for _, l := range t.RowLabels {
		if len(l) > labelWidth {
			labelWidth = len(l)
		}
	}

	colWidths := make([]int, len(t.ColKeys))
	for j, k := range t.ColKeys {
		colWidths[j] = len(strconv.FormatInt(k, 10))
		for i := range t.RowKeys {
			if w := len(strconv.Itoa(t.Counts[i][j])); w > colWidths[j] {
				colWidths[j] = w
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", labelWidth, head)
	for j, k := range t.ColKeys {
		fmt.Fprintf(&b, "  %*d", colWidths[j], k)
	}
	b.WriteByte('\n')

	for i, label := range t.RowLabels {
		fmt.Fprintf(&b, "%-*s", labelWidth, label)
		for j := range t.ColKeys {
			fmt.Fprintf(&b, "  %*d", colWidths[j], t.Counts[i][j])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func distinctSorted(values []int64) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}
