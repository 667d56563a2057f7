// Package log defines standard attribute keys for machine learning operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in CrediGo. Using these standard keys enables better
// log analysis, monitoring, and debugging of machine learning workflows.
//
// The attributes are organized into categories:
//   - Model and Operation Context
//   - Data Shape and Characteristics
//   - Performance Metrics
//   - Error Context
//
// These keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "RandomForestClassifier", "DecisionTreeClassifier", "VectorAssembler"
	ModelNameKey = "model.name"

	// EstimatorIDKey provides a unique identifier for a specific model instance.
	// This is useful for tracking multiple instances of the same model type.
	// Examples: "rf-001", "assembler-abc123", UUID strings
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the machine learning operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "dataset", "preprocessing", "ensemble", "metrics"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	// Examples: "training", "inference", "validation", "preprocessing"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
// These attributes describe the structure and properties of data being processed.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	// This is crucial for understanding the scale of data being processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	// Important for dimensionality tracking and debugging shape mismatches.
	FeaturesKey = "data.features"

	// TargetsKey indicates the number of target variables for supervised learning.
	// Usually 1 for single-target problems, >1 for multi-target problems.
	TargetsKey = "data.targets"

	// ColumnsKey indicates the number of columns in a loaded table.
	ColumnsKey = "data.columns"

	// DataPathKey records the source path of a loaded dataset.
	DataPathKey = "data.path"

	// DataTypeKey specifies the type of data being processed.
	// Examples: "int", "string", "vector", "mixed"
	DataTypeKey = "data.type"
)

// Performance Metrics
// These attributes capture timing, accuracy, and resource usage information.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	// This is essential for performance monitoring and optimization.
	DurationMsKey = "perf.duration_ms"

	// DurationSecondsKey records the execution time in seconds for longer operations.
	// Useful for training operations that take minutes or hours.
	DurationSecondsKey = "perf.duration_seconds"

	// AccuracyKey records model accuracy for evaluation operations.
	// Range typically [0.0, 1.0] for classification accuracy.
	AccuracyKey = "metrics.accuracy"

	// AUCKey records area under the ROC curve for binary classification.
	// Range [0.0, 1.0], with 0.5 corresponding to random ranking.
	AUCKey = "metrics.auc"

	// LossKey records loss value during training or evaluation.
	// Lower values typically indicate better model performance.
	LossKey = "metrics.loss"

	// IterationKey records the current iteration number during iterative processes.
	// For ensembles this is the index of the tree being built.
	IterationKey = "training.iteration"
)

// Prediction and Output Context
// These attributes describe prediction operations and their results.
const (
	// PredsKey indicates the number of predictions made.
	// Useful for throughput monitoring and batch size optimization.
	PredsKey = "preds.count"

	// ConfidenceKey records prediction confidence or probability.
	// Range typically [0.0, 1.0] for classification confidence.
	ConfidenceKey = "preds.confidence"

	// ThresholdKey records decision thresholds used for classification.
	// Important for understanding model decision boundaries.
	ThresholdKey = "preds.threshold"
)

// Error and Warning Context
// These attributes provide additional context for error and warning messages.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	// Examples: "DIMENSION_MISMATCH", "NOT_FITTED", "SCHEMA_MISMATCH"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "ValidationError", "SchemaError", "LookupError"
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated by the error logging functions.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey provides helpful suggestions for resolving issues.
	// Examples: "Check input data shape", "Verify the CSV header"
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
// These attributes capture model configuration and hyperparameters.
const (
	// HyperParamsKey contains model hyperparameters as a structured object.
	// Useful for tracking model configuration and reproducibility.
	HyperParamsKey = "model.hyperparams"

	// NumTreesKey records the number of trees in an ensemble.
	NumTreesKey = "model.n_estimators"

	// MaxDepthKey records the maximum tree depth.
	MaxDepthKey = "model.max_depth"

	// RandomSeedKey records the random seed for reproducibility.
	// Essential for debugging and ensuring reproducible results.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute value constants for common operations.
// Using these constants ensures consistency across the codebase.
const (
	// Standard ML operations
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"
	OperationLoad         = "load"
	OperationSplit        = "split"

	// Standard ML phases
	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseTesting       = "testing"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"

	// Standard error codes
	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorSchemaMismatch    = "SCHEMA_MISMATCH"
	ErrorLookupMiss        = "LOOKUP_MISS"
)
