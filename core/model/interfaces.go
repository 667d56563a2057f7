// Package model provides additional interfaces and types for machine learning models.
// This file complements the base interfaces in estimator.go
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is the base interface shared by all learning models.
type Estimator interface {
	Fitter

	// IsFitted returns whether the model has been trained.
	IsFitted() bool
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns a goodness-of-fit measure for the prediction,
	// accuracy for classifiers and R^2 for regressors.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Estimator
	Predictor
	Scorer
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Predictor
	Scorer

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique classes seen during fitting.
	Classes() []int
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}
