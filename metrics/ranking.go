package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/credigo/credigo/pkg/errors"
)

// scoredPair pairs a predicted score with a ground-truth relevance grade.
type scoredPair = struct {
	score     float64
	relevance float64
}

// NDCG computes the normalized discounted cumulative gain at rank k.
//
// Items are ranked by yPred descending and gains use the exponential form
// (2^relevance - 1). Relevance grades must be non-negative. k limits the
// evaluation depth; pass -1 to evaluate the full ranking.
//
// When every relevance grade is zero the ideal DCG is zero and the metric
// is undefined; an UndefinedMetricWarning is emitted and 0 is returned.
func NDCG(yTrue, yPred *mat.VecDense, k int) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("NDCG", "nil input vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("NDCG", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("NDCG", n, yPred.Len(), 0)
	}
	if k == 0 || k < -1 {
		return 0, errors.NewValidationError("k", "must be -1 (full ranking) or a positive rank", k)
	}

	pairs := make([]scoredPair, n)
	for i := 0; i < n; i++ {
		rel := yTrue.AtVec(i)
		if rel < 0 {
			return 0, errors.NewValueError("NDCG", "relevance grades must be non-negative")
		}
		pairs[i] = scoredPair{score: yPred.AtVec(i), relevance: rel}
	}

	ranked := make([]scoredPair, n)
	copy(ranked, pairs)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	ideal := make([]scoredPair, n)
	copy(ideal, pairs)
	sort.SliceStable(ideal, func(a, b int) bool {
		return ideal[a].relevance > ideal[b].relevance
	})

	idcg := dcg(ideal, k)
	if idcg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("NDCG", "all relevance grades are zero", 0))
		return 0, nil
	}

	return dcg(ranked, k) / idcg, nil
}

// NDCGMatrix computes NDCG for matrix inputs. Only the first column of each
// matrix is used.
func NDCGMatrix(yTrue, yPred mat.Matrix, k int) (float64, error) {
	yTrueVec, err := firstColumn("NDCGMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	yPredVec, err := firstColumn("NDCGMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return NDCG(yTrueVec, yPredVec, k)
}

// dcg computes the discounted cumulative gain over the first k pairs in the
// order given. k < 0 or k > len(pairs) evaluates all pairs.
func dcg(pairs []scoredPair, k int) float64 {
	if k < 0 || k > len(pairs) {
		k = len(pairs)
	}

	var sum float64
	for i := 0; i < k; i++ {
		gain := math.Exp2(pairs[i].relevance) - 1
		sum += gain / math.Log2(float64(i)+2)
	}
	return sum
}

// AveragePrecision computes the average precision of a ranking with binary
// relevance labels.
//
// Items are ranked by yPred descending; the precision at each relevant
// position is averaged over the number of relevant items.
//
// When yTrue contains no relevant items the metric is undefined; an
// UndefinedMetricWarning is emitted and 0 is returned.
func AveragePrecision(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AveragePrecision", "nil input vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AveragePrecision", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AveragePrecision", n, yPred.Len(), 0)
	}

	pairs := make([]scoredPair, n)
	for i := 0; i < n; i++ {
		rel := yTrue.AtVec(i)
		if rel != 0 && rel != 1 {
			return 0, errors.NewValueError("AveragePrecision", "labels must be binary (0 or 1)")
		}
		pairs[i] = scoredPair{score: yPred.AtVec(i), relevance: rel}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].score > pairs[b].score
	})

	var hits, sum float64
	for i, p := range pairs {
		if p.relevance == 1 {
			hits++
			sum += hits / float64(i+1)
		}
	}

	if hits == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AveragePrecision", "no relevant items in y_true", 0))
		return 0, nil
	}

	return sum / hits, nil
}

// MeanAveragePrecision computes the mean of AveragePrecision over a list of
// rankings, one per query.
func MeanAveragePrecision(yTrueList, yPredList []*mat.VecDense) (float64, error) {
	if len(yTrueList) == 0 {
		return 0, errors.NewValueError("MeanAveragePrecision", "empty query list")
	}
	if len(yTrueList) != len(yPredList) {
		return 0, errors.NewDimensionError("MeanAveragePrecision", len(yTrueList), len(yPredList), 0)
	}

	var sum float64
	for i := range yTrueList {
		ap, err := AveragePrecision(yTrueList[i], yPredList[i])
		if err != nil {
			return 0, err
		}
		sum += ap
	}
	return sum / float64(len(yTrueList)), nil
}
