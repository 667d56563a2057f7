// Package tree implements CART decision trees over explicit node arenas,
// with scikit-learn compatible classifier types on top.
package tree

import (
	"math"

	credigoErrors "github.com/credigo/credigo/pkg/errors"
)

// Criterion measures the impurity of a class distribution. Implementations
// must be stateless so a single value can be shared across goroutines.
type Criterion interface {
	// Name returns the parameter-string name of the criterion.
	Name() string

	// Impurity computes the impurity of a node whose per-class sample
	// counts are counts and whose total sample count is total.
	Impurity(counts []float64, total float64) float64
}

// Gini is the Gini impurity: 1 - sum(p_c^2).
type Gini struct{}

// Name returns "gini".
func (Gini) Name() string { return "gini" }

// Impurity computes the Gini impurity.
func (Gini) Impurity(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	var sumSq float64
	for _, c := range counts {
		p := c / total
		sumSq += p * p
	}
	return 1 - sumSq
}

// Entropy is the information entropy: -sum(p_c * log2(p_c)).
type Entropy struct{}

// Name returns "entropy".
func (Entropy) Name() string { return "entropy" }

// Impurity computes the entropy in bits.
func (Entropy) Impurity(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}

// Variance treats the class indices as numeric targets and measures their
// variance. For binary 0/1 labels this is p(1-p), the label variance.
type Variance struct{}

// Name returns "variance".
func (Variance) Name() string { return "variance" }

// Impurity computes the variance of the class-index distribution.
func (Variance) Impurity(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	var mean float64
	for cls, c := range counts {
		mean += float64(cls) * c
	}
	mean /= total

	var v float64
	for cls, c := range counts {
		d := float64(cls) - mean
		v += c * d * d
	}
	return v / total
}

// CriterionByName resolves the parameter strings "gini", "entropy", and
// "variance" to their implementations.
func CriterionByName(name string) (Criterion, error) {
	switch name {
	case "gini":
		return Gini{}, nil
	case "entropy":
		return Entropy{}, nil
	case "variance":
		return Variance{}, nil
	default:
		return nil, credigoErrors.NewValidationError("criterion", "must be one of gini, entropy, variance", name)
	}
}
