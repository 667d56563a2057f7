package tree

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/credigo/credigo/core/model"
	credigoErrors "github.com/credigo/credigo/pkg/errors"
	"github.com/credigo/credigo/pkg/log"
)

// DecisionTreeClassifier is a CART classification tree with a
// scikit-learn compatible API.
//
// Example:
//
//	dt := tree.NewDecisionTreeClassifier(
//	    tree.WithCriterion("gini"),
//	    tree.WithMaxDepth(5),
//	)
//	if err := dt.Fit(X, y); err != nil {
//	    return err
//	}
//	predictions, err := dt.Predict(XTest)
type DecisionTreeClassifier struct {
	model.BaseEstimator

	// Hyperparameters
	criterion       string
	maxDepth        int // -1 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int // 0 means all features
	maxBins         int // 0 means all candidate thresholds
	randomState     int64

	// Learned state
	tree_      *Tree
	classes_   []int
	nClasses_  int
	nFeatures_ int
}

// Option configures a DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithCriterion sets the split quality measure: "gini", "entropy" or
// "variance".
func WithCriterion(criterion string) Option {
	return func(dt *DecisionTreeClassifier) { dt.criterion = criterion }
}

// WithMaxDepth limits the tree depth. Negative values leave it unlimited.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeClassifier) { dt.maxDepth = depth }
}

// WithMinSamplesSplit sets the smallest node that may still be split.
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the smallest allowed leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesLeaf = n }
}

// WithMaxFeatures sets how many features are drawn per split. Zero
// considers every feature and no randomness is involved.
func WithMaxFeatures(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.maxFeatures = n }
}

// WithMaxBins caps the candidate thresholds evaluated per feature, in the
// manner of histogram-based learners. Zero evaluates every boundary
// between distinct values.
func WithMaxBins(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.maxBins = n }
}

// WithSeed fixes the random stream used for feature subsampling.
func WithSeed(seed int64) Option {
	return func(dt *DecisionTreeClassifier) { dt.randomState = seed }
}

// NewDecisionTreeClassifier creates a classifier with scikit-learn style
// defaults: gini criterion, unlimited depth, min_samples_split=2,
// min_samples_leaf=1.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		criterion:       "gini",
		maxDepth:        -1,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxBins:         255,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// Fit learns the tree from X (n samples x n features) and y (n x 1).
// Labels must be integer valued; they are mapped to class indices in
// ascending order, so Classes() reports them sorted.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) (err error) {
	defer credigoErrors.Recover(&err, "DecisionTreeClassifier.Fit")

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return credigoErrors.NewDimensionError("DecisionTreeClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return credigoErrors.NewDimensionError("DecisionTreeClassifier.Fit", 1, yCols, 1)
	}
	if nSamples == 0 {
		return credigoErrors.Wrap(credigoErrors.ErrEmptyData, "DecisionTreeClassifier.Fit")
	}

	crit, err := CriterionByName(dt.criterion)
	if err != nil {
		return err
	}

	labels, classes, err := ClassIndices("DecisionTreeClassifier.Fit", y)
	if err != nil {
		return err
	}

	rows := MatrixRows(X)
	samples := make([]int, nSamples)
	for i := range samples {
		samples[i] = i
	}

	var rng *rand.Rand
	if dt.maxFeatures > 0 && dt.maxFeatures < nFeatures {
		seed := uint64(dt.randomState)
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	tr, err := Grow(rows, labels, len(classes), samples, BuildConfig{
		Criterion:       crit,
		MaxDepth:        dt.maxDepth,
		MinSamplesSplit: dt.minSamplesSplit,
		MinSamplesLeaf:  dt.minSamplesLeaf,
		MaxFeatures:     dt.maxFeatures,
		MaxBins:         dt.maxBins,
		RNG:             rng,
	})
	if err != nil {
		return err
	}

	dt.tree_ = tr
	dt.classes_ = classes
	dt.nClasses_ = len(classes)
	dt.nFeatures_ = nFeatures
	dt.SetFitted()

	logger := log.GetLoggerWithName("credigo.tree")
	logger.Debug("Decision tree fitted",
		log.ModelNameKey, "DecisionTreeClassifier",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		"depth", tr.Depth(),
		"n_leaves", tr.NLeaves(),
	)
	return nil
}

// Predict returns the majority class of each row as an n x 1 matrix.
// Probability ties resolve to the class with the smaller label.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() {
		return nil, credigoErrors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.nFeatures_ {
		return nil, credigoErrors.NewDimensionError("DecisionTreeClassifier.Predict", dt.nFeatures_, nFeatures, 1)
	}

	out := mat.NewDense(nSamples, 1, nil)
	row := make([]float64, nFeatures)
	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, X)
		proba := dt.tree_.PredictProba(row)
		out.Set(i, 0, float64(dt.classes_[argmax(proba)]))
	}
	return out, nil
}

// PredictProba returns the per-class probabilities as an n x k matrix, with
// columns ordered like Classes().
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() {
		return nil, credigoErrors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.nFeatures_ {
		return nil, credigoErrors.NewDimensionError("DecisionTreeClassifier.PredictProba", dt.nFeatures_, nFeatures, 1)
	}

	out := mat.NewDense(nSamples, dt.nClasses_, nil)
	row := make([]float64, nFeatures)
	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, X)
		out.SetRow(i, dt.tree_.PredictProba(row))
	}
	return out, nil
}

// Score returns the accuracy on X against the labels in y. A model that
// cannot predict scores 0.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) float64 {
	predictions, err := dt.Predict(X)
	if err != nil {
		return 0
	}
	nSamples, _ := y.Dims()
	if nSamples == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples)
}

// Classes returns the class labels in ascending order.
func (dt *DecisionTreeClassifier) Classes() []int {
	out := make([]int, len(dt.classes_))
	copy(out, dt.classes_)
	return out
}

// GetDepth returns the depth of the fitted tree, the root being depth 0.
func (dt *DecisionTreeClassifier) GetDepth() int {
	if dt.tree_ == nil {
		return 0
	}
	return dt.tree_.Depth()
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	if dt.tree_ == nil {
		return 0
	}
	return dt.tree_.NLeaves()
}

// GetFeatureImportances returns the impurity-based importances, normalized
// to sum to 1. A tree with no splits reports all zeros.
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	if dt.tree_ == nil {
		return nil
	}
	sums := dt.tree_.ImportanceSums()
	total := 0.0
	for _, s := range sums {
		total += s
	}
	for i := range sums {
		sums[i] = credigoErrors.SafeDivide(sums[i], total)
	}
	return sums
}

// GetParams returns the hyperparameters with scikit-learn compatible keys.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         dt.criterion,
		"max_depth":         dt.maxDepth,
		"min_samples_split": dt.minSamplesSplit,
		"min_samples_leaf":  dt.minSamplesLeaf,
		"max_features":      dt.maxFeatures,
		"max_bins":          dt.maxBins,
		"random_state":      dt.randomState,
	}
}

// SetParams updates hyperparameters from a GetParams-style map. Unknown
// keys are rejected.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "criterion":
			if v, ok := value.(string); ok {
				if _, err := CriterionByName(v); err != nil {
					return err
				}
				dt.criterion = v
			}
		case "max_depth":
			if v, ok := value.(int); ok {
				dt.maxDepth = v
			}
		case "min_samples_split":
			if v, ok := value.(int); ok {
				dt.minSamplesSplit = v
			}
		case "min_samples_leaf":
			if v, ok := value.(int); ok {
				dt.minSamplesLeaf = v
			}
		case "max_features":
			if v, ok := value.(int); ok {
				dt.maxFeatures = v
			}
		case "max_bins":
			if v, ok := value.(int); ok {
				dt.maxBins = v
			}
		case "random_state":
			if v, ok := value.(int64); ok {
				dt.randomState = v
			}
		default:
			return credigoErrors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// ClassIndices maps the labels in the n x 1 matrix y onto contiguous class
// indices, the form Grow expects. It returns the index of each sample and
// the distinct labels in ascending order.
func ClassIndices(op string, y mat.Matrix) ([]int, []int, error) {
	nSamples, _ := y.Dims()
	raw := make([]int, nSamples)
	seen := make(map[int]bool)
	for i := 0; i < nSamples; i++ {
		v := y.At(i, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, nil, credigoErrors.NewValueError(op, "labels must be integer valued")
		}
		raw[i] = int(v)
		seen[raw[i]] = true
	}

	classes := make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	labels := make([]int, nSamples)
	for i, r := range raw {
		labels[i] = index[r]
	}
	return labels, classes, nil
}

// MatrixRows copies a gonum matrix into the per-row float slices Grow
// consumes.
func MatrixRows(X mat.Matrix) [][]float64 {
	nSamples, nFeatures := X.Dims()
	backing := make([]float64, nSamples*nFeatures)
	rows := make([][]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		row := backing[i*nFeatures : (i+1)*nFeatures : (i+1)*nFeatures]
		mat.Row(row, i, X)
		rows[i] = row
	}
	return rows
}

// argmax returns the index of the largest value, preferring the smaller
// index on ties.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
