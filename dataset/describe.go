package dataset

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/credigo/credigo/pkg/errors"
)

// Summary holds the five-number description of one numeric column. StdDev is
// the sample standard deviation (n-1 denominator).
type Summary struct {
	Column string
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// GroupMean is the mean of a value column within one key group.
type GroupMean struct {
	Key  int64
	Mean float64
}

// LabeledValues carries all values of a column within one key group, the
// input shape the box plot consumes.
type LabeledValues struct {
	Key    int64
	Values []float64
}

// Describe summarizes the named Int columns. Referencing a missing or
// non-numeric column is a SchemaError.
func (ds *Dataset) Describe(cols ...string) ([]Summary, error) {
	out := make([]Summary, 0, len(cols))
	for _, name := range cols {
		values, err := ds.Floats(name)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, errors.Wrapf(errors.ErrEmptyData, "Describe %s", name)
		}
		out = append(out, Summary{
			Column: name,
			Count:  len(values),
			Mean:   stat.Mean(values, nil),
			StdDev: stat.StdDev(values, nil),
			Min:    floats.Min(values),
			Max:    floats.Max(values),
		})
	}
	return out, nil
}

// GroupMeanBy returns the mean of valueCol for each distinct value of keyCol,
// ordered by ascending key. Both columns must be Int.
func (ds *Dataset) GroupMeanBy(valueCol, keyCol string) ([]GroupMean, error) {
	groups, err := ds.GroupValues(valueCol, keyCol)
	if err != nil {
		return nil, err
	}

	out := make([]GroupMean, len(groups))
	for i, g := range groups {
		out[i] = GroupMean{Key: g.Key, Mean: stat.Mean(g.Values, nil)}
	}
	return out, nil
}

// GroupValues collects the values of valueCol per distinct value of keyCol,
// ordered by ascending key. Both columns must be Int.
func (ds *Dataset) GroupValues(valueCol, keyCol string) ([]LabeledValues, error) {
	values, err := ds.Floats(valueCol)
	if err != nil {
		return nil, err
	}
	keys, err := ds.Ints(keyCol)
	if err != nil {
		return nil, err
	}

	byKey := make(map[int64][]float64)
	for i, k := range keys {
		byKey[k] = append(byKey[k], values[i])
	}

	order := make([]int64, 0, len(byKey))
	for k := range byKey {
		order = append(order, k)
	}
	sort.Slice(order, func(a, b int) bool { return order[a] < order[b] })

	out := make([]LabeledValues, len(order))
	for i, k := range order {
		out[i] = LabeledValues{Key: k, Values: byKey[k]}
	}
	return out, nil
}
