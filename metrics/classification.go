package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/credigo/credigo/pkg/errors"
)

// logLossEpsilon clips predicted probabilities away from 0 and 1 so that
// log loss stays finite.
const logLossEpsilon = 1e-15

// AUC computes the area under the ROC curve for binary classification.
//
// Labels in yTrue must be exactly 0 or 1. The score is computed with the
// rank-sum (Mann-Whitney U) formulation, with tied prediction scores
// receiving their average rank, so the result is invariant to any strictly
// monotone transform of yPred.
//
// When yTrue contains only a single class the metric is undefined; an
// UndefinedMetricWarning is emitted and 0.5 is returned.
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AUC", "nil input vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	nPos := 0
	for i := 0; i < n; i++ {
		label := yTrue.AtVec(i)
		if label != 0 && label != 1 {
			return 0, errors.NewValueError("AUC", "labels must be binary (0 or 1)")
		}
		if label == 1 {
			nPos++
		}
	}
	nNeg := n - nPos

	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present in y_true", 0.5))
		return 0.5, nil
	}

	// Rank all predictions ascending, averaging ranks over ties.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return yPred.AtVec(order[a]) < yPred.AtVec(order[b])
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && yPred.AtVec(order[j]) == yPred.AtVec(order[i]) {
			j++
		}
		// Positions i..j-1 share the same score; 1-based average rank.
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			ranks[order[k]] = avgRank
		}
		i = j
	}

	var rankSumPos float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			rankSumPos += ranks[i]
		}
	}

	u := rankSumPos - float64(nPos)*float64(nPos+1)/2.0
	return u / (float64(nPos) * float64(nNeg)), nil
}

// AUCMatrix computes AUC for matrix inputs. Only the first column of each
// matrix is used, which matches the n×1 label and score matrices produced
// by the estimators in this library.
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	yTrueVec, err := firstColumn("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	yPredVec, err := firstColumn("AUCMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return AUC(yTrueVec, yPredVec)
}

// BinaryLogLoss computes the binary cross-entropy loss.
//
// Predicted probabilities are clipped to [eps, 1-eps] so that perfect
// (0 or 1) predictions do not produce infinite loss.
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("BinaryLogLoss", "nil input vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		label := yTrue.AtVec(i)
		if label != 0 && label != 1 {
			return 0, errors.NewValueError("BinaryLogLoss", "labels must be binary (0 or 1)")
		}

		p := errors.ClipValue(yPred.AtVec(i), logLossEpsilon, 1-logLossEpsilon)
		if label == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}

	return sum / float64(n), nil
}

// Accuracy computes the fraction of exactly matching predictions.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("Accuracy", "nil input vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError computes the fraction of mismatching predictions,
// i.e. 1 - Accuracy.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// firstColumn extracts column 0 of m as a dense vector.
func firstColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "nil matrix")
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}

	v := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}
