package ensemble

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/credigo/credigo/core/parallel"
	"github.com/credigo/credigo/metrics"
	credigoErrors "github.com/credigo/credigo/pkg/errors"
)

// KFoldSplitter yields train/test index pairs for cross-validation.
type KFoldSplitter interface {
	Split(X, y mat.Matrix) []CVFold
	GetNSplits() int
}

// CVFold is a single train/test partition.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold splits samples into k consecutive folds, optionally shuffled.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewKFold creates a k-fold splitter. Fewer than 2 splits falls back to 5.
func NewKFold(nSplits int, shuffle bool, randomSeed int64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of folds.
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split generates the train/test indices of each fold. The first
// nSamples mod k folds receive one extra test sample.
func (kf *KFold) Split(X, _ mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		seed := uint64(kf.RandomSeed)
		r := rand.New(rand.NewPCG(seed, seed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	current := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		test := make([]int, testSize)
		copy(test, indices[current:current+testSize])

		train := make([]int, 0, nSamples-testSize)
		train = append(train, indices[:current]...)
		train = append(train, indices[current+testSize:]...)

		folds[i] = CVFold{TrainIndices: train, TestIndices: test}
		current += testSize
	}
	return folds
}

// StratifiedKFold splits samples into k folds that preserve the per-class
// proportions of y.
type StratifiedKFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewStratifiedKFold creates a stratified k-fold splitter. Fewer than 2
// splits falls back to 5.
func NewStratifiedKFold(nSplits int, shuffle bool, randomSeed int64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of folds.
func (skf *StratifiedKFold) GetNSplits() int {
	return skf.NSplits
}

// Split generates stratified train/test indices for each fold. Classes are
// processed in ascending label order so the fold composition is stable
// across runs.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	classIndices := make(map[float64][]int)
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		classIndices[label] = append(classIndices[label], i)
	}
	labels := make([]float64, 0, len(classIndices))
	for label := range classIndices {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	if skf.Shuffle {
		seed := uint64(skf.RandomSeed)
		r := rand.New(rand.NewPCG(seed, seed))
		for _, label := range labels {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]CVFold, skf.NSplits)
	for _, label := range labels {
		indices := classIndices[label]
		nClass := len(indices)
		foldSize := nClass / skf.NSplits
		remainder := nClass % skf.NSplits

		current := 0
		for i := 0; i < skf.NSplits; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			folds[i].TestIndices = append(folds[i].TestIndices, indices[current:current+testSize]...)
			current += testSize
		}
	}

	for i := range folds {
		sort.Ints(folds[i].TestIndices)
		inTest := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			inTest[idx] = true
		}
		train := make([]int, 0, nSamples-len(folds[i].TestIndices))
		for j := 0; j < nSamples; j++ {
			if !inTest[j] {
				train = append(train, j)
			}
		}
		folds[i].TrainIndices = train
	}
	return folds
}

// CVResult holds per-fold cross-validation scores.
type CVResult struct {
	TrainScores []float64
	TestScores  []float64
}

// GetMeanScore returns the mean test score.
func (cv *CVResult) GetMeanScore() float64 {
	if len(cv.TestScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, score := range cv.TestScores {
		sum += score
	}
	return sum / float64(len(cv.TestScores))
}

// GetStdScore returns the sample standard deviation of the test scores.
func (cv *CVResult) GetStdScore() float64 {
	if len(cv.TestScores) <= 1 {
		return 0
	}
	mean := cv.GetMeanScore()
	sumSq := 0.0
	for _, score := range cv.TestScores {
		diff := score - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(cv.TestScores)-1))
}

// CrossValidateClassifier scores a forest configuration over the folds of
// the splitter, training a fresh forest per fold with the hyperparameters
// of the template. Supported scorings are "accuracy" (the default ""),
// "auc" and "logloss"; the latter two need 0/1 labels.
func CrossValidateClassifier(template *RandomForestClassifier, X, y mat.Matrix,
	splitter KFoldSplitter, scoring string) (*CVResult, error) {

	if scoring == "" {
		scoring = "accuracy"
	}
	switch scoring {
	case "accuracy", "auc", "logloss":
	default:
		return nil, credigoErrors.NewValidationError("scoring", "must be one of accuracy, auc, logloss", scoring)
	}

	folds := splitter.Split(X, y)
	nFolds := len(folds)
	result := &CVResult{
		TrainScores: make([]float64, nFolds),
		TestScores:  make([]float64, nFolds),
	}

	params := template.GetParams()
	foldErrs := make([]error, nFolds)
	parallel.Parallelize(nFolds, func(start, end int) {
		for idx := start; idx < end; idx++ {
			fold := folds[idx]
			trainX, trainY := foldSubset(X, y, fold.TrainIndices)
			testX, testY := foldSubset(X, y, fold.TestIndices)

			rf := NewRandomForestClassifier()
			if err := rf.SetParams(params); err != nil {
				foldErrs[idx] = err
				continue
			}
			if err := rf.Fit(trainX, trainY); err != nil {
				foldErrs[idx] = credigoErrors.Wrapf(err, "fold %d training failed", idx)
				continue
			}

			trainScore, err := scoreFold(rf, trainX, trainY, scoring)
			if err != nil {
				foldErrs[idx] = credigoErrors.Wrapf(err, "fold %d train scoring failed", idx)
				continue
			}
			testScore, err := scoreFold(rf, testX, testY, scoring)
			if err != nil {
				foldErrs[idx] = credigoErrors.Wrapf(err, "fold %d test scoring failed", idx)
				continue
			}
			result.TrainScores[idx] = trainScore
			result.TestScores[idx] = testScore
		}
	})
	for _, err := range foldErrs {
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// scoreFold computes one scoring metric for a fitted forest.
func scoreFold(rf *RandomForestClassifier, X, y mat.Matrix, scoring string) (float64, error) {
	yVec := columnVector(y, 0)

	switch scoring {
	case "accuracy":
		predictions, err := rf.Predict(X)
		if err != nil {
			return 0, err
		}
		return metrics.Accuracy(yVec, columnVector(predictions, 0))

	case "auc":
		proba, err := rf.PredictProba(X)
		if err != nil {
			return 0, err
		}
		return metrics.AUC(yVec, columnVector(proba, rf.nClasses_-1))

	case "logloss":
		proba, err := rf.PredictProba(X)
		if err != nil {
			return 0, err
		}
		return metrics.BinaryLogLoss(yVec, columnVector(proba, rf.nClasses_-1))
	}
	return 0, credigoErrors.NewValidationError("scoring", "must be one of accuracy, auc, logloss", scoring)
}

// foldSubset copies the listed rows of X and y into new matrices, in
// ascending row order.
func foldSubset(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	_, xCols := X.Dims()
	_, yCols := y.Dims()

	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	xSub := mat.NewDense(len(sorted), xCols, nil)
	ySub := mat.NewDense(len(sorted), yCols, nil)
	for i, idx := range sorted {
		for j := 0; j < xCols; j++ {
			xSub.Set(i, j, X.At(idx, j))
		}
		for j := 0; j < yCols; j++ {
			ySub.Set(i, j, y.At(idx, j))
		}
	}
	return xSub, ySub
}

// columnVector copies column j of m into a fresh vector.
func columnVector(m mat.Matrix, j int) *mat.VecDense {
	rows, _ := m.Dims()
	v := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		v.SetVec(i, m.At(i, j))
	}
	return v
}
