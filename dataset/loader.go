package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/credigo/credigo/pkg/errors"
	"github.com/credigo/credigo/pkg/log"
)

// ReadCSV loads a headered CSV file into a Dataset. Column types are
// inferred: a column whose every value parses as int64 becomes Int,
// everything else String. All load errors are fatal; there is no partial
// load.
func ReadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read csv %s", path)
	}
	defer f.Close()

	ds, err := ReadCSVFrom(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read csv %s", path)
	}

	logger := log.GetLoggerWithName("credigo.dataset")
	logger.Info("Dataset loaded",
		log.DataPathKey, path,
		log.SamplesKey, ds.NumRows(),
		log.ColumnsKey, ds.NumCols(),
	)
	return ds, nil
}

// ReadCSVFrom loads a headered CSV stream into a Dataset. It backs ReadCSV
// and keeps tests independent of the filesystem.
func ReadCSVFrom(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errors.ErrEmptyData, "missing header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "header row")
	}

	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return nil, errors.NewSchemaError("ReadCSV", name, "duplicate column name")
		}
		seen[name] = true
	}

	// The csv reader enforces the header's field count from here on, so a
	// ragged row surfaces as csv.ErrFieldCount with a line number.
	raw := make([][]string, len(header))
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}
		for i, cell := range record {
			raw[i] = append(raw[i], cell)
		}
		row++
	}

	if len(raw[0]) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "no data rows")
	}

	ds := New()
	for i, name := range header {
		if ints, ok := parseIntColumn(raw[i]); ok {
			if err := ds.AddInts(name, ints); err != nil {
				return nil, err
			}
			continue
		}
		if err := ds.AddStrings(name, raw[i]); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// parseIntColumn attempts to parse every cell as int64. It reports ok=false
// at the first cell that is not an integer.
func parseIntColumn(cells []string) ([]int64, bool) {
	out := make([]int64, len(cells))
	for i, cell := range cells {
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
