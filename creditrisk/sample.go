package creditrisk

import (
	"encoding/csv"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/credigo/credigo/pkg/errors"
)

// WriteSampleCSV writes n synthetic rows in the German credit coding so
// demos and end-to-end tests run without the real dataset. Balance, duration
// and amount correlate with the outcome; the remaining columns draw
// uniformly from their valid code ranges. Same seed, same bytes.
func WriteSampleCSV(w io.Writer, n int, seed int64) error {
	if n < 1 {
		return errors.NewValidationError("n", "must be at least 1", n)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{LabelColumn}, FeatureColumns...)); err != nil {
		return errors.Wrap(err, "creditrisk.WriteSampleCSV")
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(sampleRow(rng)); err != nil {
			return errors.Wrap(err, "creditrisk.WriteSampleCSV")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "creditrisk.WriteSampleCSV")
	}
	return nil
}

// sampleRow draws one coded row. Roughly 70% of customers are credit-worthy,
// matching the real dataset's class balance. Credit-worthy customers skew
// toward funded accounts, shorter terms and smaller credits.
func sampleRow(rng *rand.Rand) []string {
	good := rng.Float64() < 0.7

	var label, balance, duration, amount int64
	if good {
		label = 1
		balance = code(rng, 2, 4)
		duration = code(rng, 6, 36)
		amount = code(rng, 250, 5250)
	} else {
		balance = code(rng, 1, 2)
		duration = code(rng, 18, 72)
		amount = code(rng, 1500, 18424)
	}

	// FeatureColumns order.
	values := []int64{
		balance,
		duration,
		code(rng, 0, 4),   // history
		code(rng, 0, 10),  // purpose
		amount,
		code(rng, 1, 5),   // savings
		code(rng, 1, 5),   // employment
		code(rng, 1, 4),   // instPercent
		code(rng, 1, 4),   // sexMarried
		code(rng, 1, 3),   // guarantors
		code(rng, 1, 4),   // residenceDuration
		code(rng, 1, 4),   // assets
		code(rng, 19, 75), // age
		code(rng, 1, 3),   // concCredit
		code(rng, 1, 3),   // apartment
		code(rng, 1, 4),   // credits
		code(rng, 1, 4),   // occupation
		code(rng, 1, 2),   // dependents
		code(rng, 1, 2),   // hasPhone
		code(rng, 1, 2),   // foreign
	}

	row := make([]string, 0, len(values)+1)
	row = append(row, strconv.FormatInt(label, 10))
	for _, v := range values {
		row = append(row, strconv.FormatInt(v, 10))
	}
	return row
}

// code draws uniformly from [lo, hi].
func code(rng *rand.Rand, lo, hi int64) int64 {
	return lo + rng.Int64N(hi-lo+1)
}
