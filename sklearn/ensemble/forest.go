// Package ensemble implements bagged tree ensembles with a scikit-learn
// compatible API.
package ensemble

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/credigo/credigo/core/model"
	"github.com/credigo/credigo/core/parallel"
	credigoErrors "github.com/credigo/credigo/pkg/errors"
	"github.com/credigo/credigo/pkg/log"
	"github.com/credigo/credigo/sklearn/tree"
)

// RandomForestClassifier averages the class distributions of bagged CART
// trees. Trees are grown in parallel, each from its own seeded random
// stream, so a fixed seed reproduces the forest exactly regardless of how
// the work is scheduled.
//
// Example:
//
//	rf := ensemble.NewRandomForestClassifier(
//	    ensemble.WithNEstimators(20),
//	    ensemble.WithMaxDepth(5),
//	    ensemble.WithSeed(42),
//	)
//	if err := rf.Fit(X, y); err != nil {
//	    return err
//	}
//	proba, err := rf.PredictProba(XTest)
type RandomForestClassifier struct {
	model.BaseEstimator

	// Hyperparameters
	nEstimators     int
	criterion       string
	maxDepth        int // -1 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int // 0 means ceil(sqrt(n_features))
	maxBins         int // 0 means all candidate thresholds
	bootstrap       bool
	randomState     int64

	// Learned state
	trees_     []*tree.Tree
	classes_   []int
	nClasses_  int
	nFeatures_ int
}

// Option configures a RandomForestClassifier.
type Option func(*RandomForestClassifier)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(rf *RandomForestClassifier) { rf.nEstimators = n }
}

// WithCriterion sets the split quality measure: "gini", "entropy" or
// "variance".
func WithCriterion(criterion string) Option {
	return func(rf *RandomForestClassifier) { rf.criterion = criterion }
}

// WithMaxDepth limits each tree's depth. Negative values leave it
// unlimited.
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestClassifier) { rf.maxDepth = depth }
}

// WithMinSamplesSplit sets the smallest node that may still be split.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestClassifier) { rf.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the smallest allowed leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestClassifier) { rf.minSamplesLeaf = n }
}

// WithMaxFeatures sets how many features each split considers. Zero picks
// ceil(sqrt(n_features)) at fit time.
func WithMaxFeatures(n int) Option {
	return func(rf *RandomForestClassifier) { rf.maxFeatures = n }
}

// WithMaxBins caps the candidate thresholds evaluated per feature.
func WithMaxBins(n int) Option {
	return func(rf *RandomForestClassifier) { rf.maxBins = n }
}

// WithBootstrap toggles sampling with replacement. Without it every tree
// trains on the full data and differs only through feature subsampling.
func WithBootstrap(enabled bool) Option {
	return func(rf *RandomForestClassifier) { rf.bootstrap = enabled }
}

// WithSeed fixes the random streams of all trees.
func WithSeed(seed int64) Option {
	return func(rf *RandomForestClassifier) { rf.randomState = seed }
}

// NewRandomForestClassifier creates a forest with scikit-learn style
// defaults: 100 gini trees of unlimited depth, bootstrap sampling, and
// sqrt-of-features subsampling per split.
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		nEstimators:     100,
		criterion:       "gini",
		maxDepth:        -1,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxBins:         255,
		bootstrap:       true,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// Fit grows the forest from X (n samples x n features) and y (n x 1).
//
// Tree t draws from the stream PCG(seed, seed+t+1) in a fixed order: first
// the n bootstrap indices, then the per-split feature subsets of the
// depth-first tree build. The streams are independent, so the parallel
// build is as reproducible as a sequential one.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) (err error) {
	defer credigoErrors.Recover(&err, "RandomForestClassifier.Fit")
	start := time.Now()

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return credigoErrors.NewDimensionError("RandomForestClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return credigoErrors.NewDimensionError("RandomForestClassifier.Fit", 1, yCols, 1)
	}
	if nSamples == 0 {
		return credigoErrors.Wrap(credigoErrors.ErrEmptyData, "RandomForestClassifier.Fit")
	}
	if rf.nEstimators < 1 {
		return credigoErrors.NewValidationError("n_estimators", "must be at least 1", rf.nEstimators)
	}

	crit, err := tree.CriterionByName(rf.criterion)
	if err != nil {
		return err
	}
	labels, classes, err := tree.ClassIndices("RandomForestClassifier.Fit", y)
	if err != nil {
		return err
	}

	rows := tree.MatrixRows(X)
	maxFeatures := rf.maxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Ceil(math.Sqrt(float64(nFeatures))))
	}
	if maxFeatures > nFeatures {
		maxFeatures = nFeatures
	}

	trees := make([]*tree.Tree, rf.nEstimators)
	treeErrs := make([]error, rf.nEstimators)
	parallel.Parallelize(rf.nEstimators, func(startIdx, endIdx int) {
		for t := startIdx; t < endIdx; t++ {
			seed := uint64(rf.randomState)
			rng := rand.New(rand.NewPCG(seed, seed+uint64(t)+1))

			samples := make([]int, nSamples)
			if rf.bootstrap {
				for i := range samples {
					samples[i] = rng.IntN(nSamples)
				}
			} else {
				for i := range samples {
					samples[i] = i
				}
			}

			trees[t], treeErrs[t] = tree.Grow(rows, labels, len(classes), samples, tree.BuildConfig{
				Criterion:       crit,
				MaxDepth:        rf.maxDepth,
				MinSamplesSplit: rf.minSamplesSplit,
				MinSamplesLeaf:  rf.minSamplesLeaf,
				MaxFeatures:     maxFeatures,
				MaxBins:         rf.maxBins,
				RNG:             rng,
			})
		}
	})
	for _, e := range treeErrs {
		if e != nil {
			return e
		}
	}

	rf.trees_ = trees
	rf.classes_ = classes
	rf.nClasses_ = len(classes)
	rf.nFeatures_ = nFeatures
	rf.SetFitted()

	logger := log.GetLoggerWithName("credigo.ensemble")
	logger.Info("Random forest trained",
		log.ModelNameKey, "RandomForestClassifier",
		log.NumTreesKey, rf.nEstimators,
		log.MaxDepthKey, rf.maxDepth,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.RandomSeedKey, rf.randomState,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// PredictProba returns the forest's class probabilities as an n x k matrix:
// the per-tree leaf distributions averaged over all trees, columns ordered
// like Classes().
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, credigoErrors.NewNotFittedError("RandomForestClassifier", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != rf.nFeatures_ {
		return nil, credigoErrors.NewDimensionError("RandomForestClassifier.PredictProba", rf.nFeatures_, nFeatures, 1)
	}

	out := mat.NewDense(nSamples, rf.nClasses_, nil)
	nTrees := float64(len(rf.trees_))
	parallel.Parallelize(nSamples, func(startIdx, endIdx int) {
		row := make([]float64, nFeatures)
		sum := make([]float64, rf.nClasses_)
		for i := startIdx; i < endIdx; i++ {
			mat.Row(row, i, X)
			for c := range sum {
				sum[c] = 0
			}
			for _, tr := range rf.trees_ {
				floats.Add(sum, tr.PredictProba(row))
			}
			floats.Scale(1/nTrees, sum)
			out.SetRow(i, sum)
		}
	})
	return out, nil
}

// Predict returns the most probable class of each row as an n x 1 matrix.
// Probability ties resolve to the class with the smaller label.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := proba.Dims()
	out := mat.NewDense(nSamples, 1, nil)
	row := make([]float64, rf.nClasses_)
	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, proba)
		// MaxIdx returns the first maximum, so ties go to the smaller label.
		out.Set(i, 0, float64(rf.classes_[floats.MaxIdx(row)]))
	}
	return out, nil
}

// DecisionFunction returns the vote margin. For binary problems it is an
// n x 1 matrix of p(classes[1]) - p(classes[0]), positive values favoring
// the larger label. For multiclass problems it returns the probabilities.
func (rf *RandomForestClassifier) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	if rf.nClasses_ != 2 {
		return proba, nil
	}
	nSamples, _ := proba.Dims()
	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		out.Set(i, 0, proba.At(i, 1)-proba.At(i, 0))
	}
	return out, nil
}

// Score returns the accuracy on X against the labels in y.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := y.Dims()
	if nSamples == 0 {
		return 0, credigoErrors.Wrap(credigoErrors.ErrEmptyData, "RandomForestClassifier.Score")
	}
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Classes returns the class labels in ascending order.
func (rf *RandomForestClassifier) Classes() []int {
	out := make([]int, len(rf.classes_))
	copy(out, rf.classes_)
	return out
}

// NTrees returns the number of fitted trees.
func (rf *RandomForestClassifier) NTrees() int {
	return len(rf.trees_)
}

// GetFeatureImportances returns the forest's impurity-based importances:
// the per-tree impurity decreases summed over all trees, normalized to
// sum to 1. A forest with no splits reports all zeros.
func (rf *RandomForestClassifier) GetFeatureImportances() []float64 {
	if len(rf.trees_) == 0 {
		return nil
	}
	sums := make([]float64, rf.nFeatures_)
	for _, tr := range rf.trees_ {
		floats.Add(sums, tr.ImportanceSums())
	}
	total := floats.Sum(sums)
	for i := range sums {
		sums[i] = credigoErrors.SafeDivide(sums[i], total)
	}
	return sums
}

// DumpTree renders tree i as If/Else rules, in the format NameFeatures
// rewrites.
func (rf *RandomForestClassifier) DumpTree(i int) (string, error) {
	if !rf.IsFitted() {
		return "", credigoErrors.NewNotFittedError("RandomForestClassifier", "DumpTree")
	}
	if i < 0 || i >= len(rf.trees_) {
		return "", credigoErrors.NewValueError("RandomForestClassifier.DumpTree", "tree index out of range")
	}
	return rf.trees_[i].Dump(rf.classes_), nil
}

// DescribeTree renders tree i with a summary header line.
func (rf *RandomForestClassifier) DescribeTree(i int) (string, error) {
	dump, err := rf.DumpTree(i)
	if err != nil {
		return "", err
	}
	tr := rf.trees_[i]
	header := fmt.Sprintf("Tree %d: depth %d, %d nodes, %d leaves\n",
		i, tr.Depth(), len(tr.Nodes), tr.NLeaves())
	return header + dump, nil
}

// GetParams returns the hyperparameters with scikit-learn compatible keys.
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      rf.nEstimators,
		"criterion":         rf.criterion,
		"max_depth":         rf.maxDepth,
		"min_samples_split": rf.minSamplesSplit,
		"min_samples_leaf":  rf.minSamplesLeaf,
		"max_features":      rf.maxFeatures,
		"max_bins":          rf.maxBins,
		"bootstrap":         rf.bootstrap,
		"random_state":      rf.randomState,
	}
}

// SetParams updates hyperparameters from a GetParams-style map. Unknown
// keys are rejected.
func (rf *RandomForestClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators":
			if v, ok := value.(int); ok {
				rf.nEstimators = v
			}
		case "criterion":
			if v, ok := value.(string); ok {
				if _, err := tree.CriterionByName(v); err != nil {
					return err
				}
				rf.criterion = v
			}
		case "max_depth":
			if v, ok := value.(int); ok {
				rf.maxDepth = v
			}
		case "min_samples_split":
			if v, ok := value.(int); ok {
				rf.minSamplesSplit = v
			}
		case "min_samples_leaf":
			if v, ok := value.(int); ok {
				rf.minSamplesLeaf = v
			}
		case "max_features":
			if v, ok := value.(int); ok {
				rf.maxFeatures = v
			}
		case "max_bins":
			if v, ok := value.(int); ok {
				rf.maxBins = v
			}
		case "bootstrap":
			if v, ok := value.(bool); ok {
				rf.bootstrap = v
			}
		case "random_state":
			if v, ok := value.(int64); ok {
				rf.randomState = v
			}
		default:
			return credigoErrors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
