package creditrisk

import (
	"github.com/credigo/credigo/pkg/errors"
)

// Config carries the workflow parameters. DataPath is required; zero-valued
// numeric fields fall back to their DefaultConfig values when Run starts.
type Config struct {
	// DataPath locates the credit CSV.
	DataPath string

	// Seed drives both the train/test split and the forest construction.
	Seed int64

	// NumTrees, MaxDepth and MaxBins are forwarded to the forest.
	NumTrees int
	MaxDepth int
	MaxBins  int

	// TrainFraction is the share of rows assigned to the training split;
	// the remainder is the test split.
	TrainFraction float64

	// PlotDir, when non-empty, receives the exploration and importance
	// charts as PNG files. Empty leaves the workflow plot-free.
	PlotDir string
}

// DefaultConfig returns the parameters the original analysis used: an 80/20
// split and a 20-tree forest of depth 5 with 150 histogram bins, all seeded
// with 42.
func DefaultConfig(dataPath string) Config {
	return Config{
		DataPath:      dataPath,
		Seed:          42,
		NumTrees:      20,
		MaxDepth:      5,
		MaxBins:       150,
		TrainFraction: 0.8,
	}
}

// withDefaults fills unset numeric fields from DefaultConfig. Seed stays as
// given: 0 is a valid seed.
func (cfg Config) withDefaults() Config {
	def := DefaultConfig(cfg.DataPath)
	if cfg.NumTrees == 0 {
		cfg.NumTrees = def.NumTrees
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.MaxBins == 0 {
		cfg.MaxBins = def.MaxBins
	}
	if cfg.TrainFraction == 0 {
		cfg.TrainFraction = def.TrainFraction
	}
	return cfg
}

func (cfg Config) validate() error {
	if cfg.DataPath == "" {
		return errors.NewValidationError("DataPath", "must not be empty", cfg.DataPath)
	}
	if cfg.NumTrees < 1 {
		return errors.NewValidationError("NumTrees", "must be at least 1", cfg.NumTrees)
	}
	if cfg.TrainFraction <= 0 || cfg.TrainFraction >= 1 {
		return errors.NewValidationError("TrainFraction", "must be in (0, 1)", cfg.TrainFraction)
	}
	return nil
}
