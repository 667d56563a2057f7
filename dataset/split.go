package dataset

import (
	"math/rand/v2"

	"github.com/credigo/credigo/pkg/errors"
	"github.com/credigo/credigo/pkg/log"
)

// RandomSplit partitions the rows into len(fractions) disjoint Datasets by
// independent per-row draws, so the resulting sizes are approximate rather
// than exact. Fractions must be positive and are normalized by their sum.
//
// A single PCG stream seeded from seed is consumed in row order, exactly one
// Float64 per row; the draw picks the bucket whose cumulative fraction range
// contains it. The same seed over the same rows reproduces the same split.
func (ds *Dataset) RandomSplit(fractions []float64, seed int64) ([]*Dataset, error) {
	if len(fractions) == 0 {
		return nil, errors.NewValueError("RandomSplit", "no fractions given")
	}
	var total float64
	for _, f := range fractions {
		if f <= 0 {
			return nil, errors.NewValidationError("fractions", "must be positive", f)
		}
		total += f
	}

	// Cumulative upper bounds, with the last pinned to 1 so rounding in the
	// running sum cannot leave a row unassigned.
	bounds := make([]float64, len(fractions))
	var cum float64
	for i, f := range fractions {
		cum += f / total
		bounds[i] = cum
	}
	bounds[len(bounds)-1] = 1

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	buckets := make([][]int, len(fractions))
	for row := 0; row < ds.nRows; row++ {
		u := rng.Float64()
		for b, upper := range bounds {
			if u < upper {
				buckets[b] = append(buckets[b], row)
				break
			}
		}
	}

	out := make([]*Dataset, len(buckets))
	sizes := make([]int, len(buckets))
	for i, rows := range buckets {
		sub, err := ds.Subset(rows)
		if err != nil {
			return nil, err
		}
		out[i] = sub
		sizes[i] = len(rows)
	}

	logger := log.GetLoggerWithName("credigo.dataset")
	logger.Debug("Random split",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, ds.nRows,
		"sizes", sizes,
		log.RandomSeedKey, seed,
	)
	return out, nil
}
