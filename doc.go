// Package credigo provides a credit-risk scoring toolkit for Go, built
// around the German credit dataset workflow: load a coded CSV, explore it,
// train a random-forest classifier, and evaluate the ranking by AUC.
//
// CrediGo offers a scikit-learn-like estimator API, so the forest and the
// tree underneath it can also be used on their own, outside the credit
// workflow.
//
// # Features
//
// - End-to-end workflow: one call runs load, exploration, training and evaluation
// - scikit-learn-like API: options, Fit/Predict/PredictProba, GetParams/SetParams
// - Deterministic training: fixed seeds reproduce identical forests bit for bit
// - Robust error handling: typed errors with stack traces for every failure mode
// - CPU-parallel tree building with per-tree random streams
//
// # Installation
//
// Install CrediGo using go get:
//
//	go get github.com/credigo/credigo
//
// # Quick Start
//
// Score a credit dataset end to end:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/credigo/credigo/creditrisk"
//	)
//
//	func main() {
//	    report, err := creditrisk.Run(creditrisk.DefaultConfig("german_credit.csv"))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(report)
//	}
//
// Or use the estimators directly:
//
//	clf := ensemble.NewRandomForestClassifier(
//	    ensemble.WithNEstimators(20),
//	    ensemble.WithMaxDepth(5),
//	    ensemble.WithSeed(42),
//	)
//	if err := clf.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//	proba, err := clf.PredictProba(XTest)
//
// # Packages
//
// The library is organized into several packages:
//
//   - creditrisk: the end-to-end scoring workflow and dataset schema
//   - dataset: columnar CSV loading, descriptive statistics, cross tables, splitting
//   - preprocessing: the feature vector assembler
//   - sklearn/tree: the CART decision tree engine and classifier
//   - sklearn/ensemble: the random forest, cross-validation, importance tables
//   - metrics: AUC, accuracy, log loss, ranking and regression metrics
//   - visualize: box plots and importance bar charts via gonum/plot
//   - core/model: estimator interfaces and base types
//   - core/parallel: parallel processing utilities
//
// # Determinism
//
// Every source of randomness is a seeded PCG stream consumed in a documented
// order: the splitter draws once per row, each tree owns an independent
// stream for its bootstrap sample and feature subsets. Training in parallel
// cannot change results.
package credigo
