// Package log defines standard attribute keys for low-rank kernel regression.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples", "kernel.rank") so log lines from the models and the
// experiment harness can be filtered the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the model type.
	// Examples: "RFF", "Ridge", "LowRankRidge"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "rff", "projection", "experiment"
	ComponentKey = "ml.component"

	// PhaseKey indicates the evaluation phase.
	// Examples: "training", "validation", "testing"
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of input features (columns).
	FeaturesKey = "data.features"

	// DatasetKey names the dataset being processed.
	DatasetKey = "data.name"
)

// Low-rank approximation parameters
const (
	// MethodKey names the low-rank method: "ICD", "Nystrom", "RFF".
	MethodKey = "kernel.method"

	// RankKey records the requested rank of the approximation.
	RankKey = "kernel.rank"

	// AchievedRankKey records the rank actually reached when a method stops early.
	AchievedRankKey = "kernel.achieved_rank"

	// GammaKey records a single kernel bandwidth.
	GammaKey = "kernel.gamma"

	// GammaRangeKey records the full ordered set of bandwidths.
	GammaRangeKey = "kernel.gamma_range"

	// DeltaKey records the look-ahead candidate count per bandwidth.
	DeltaKey = "kernel.delta"

	// CandidatesKey records the size of the candidate feature pool.
	CandidatesKey = "kernel.candidates"

	// LambdaKey records the ridge regularization strength.
	LambdaKey = "ridge.lambda"

	// ConditionKey records a condition number estimate of the normal equations.
	ConditionKey = "ridge.condition"

	// DegenerateKey reports whether the solve fell back to a pseudo-inverse.
	DegenerateKey = "ridge.degenerate"
)

// Performance and Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// RMSEKey records a residual standard deviation.
	RMSEKey = "metrics.rmse"

	// ExplainedVarianceKey records an explained variance score.
	ExplainedVarianceKey = "metrics.evar"

	// R2ScoreKey records R² coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// IterationKey records the cross-validation iteration.
	IterationKey = "training.iteration"

	// TrialKey records a hyperparameter search trial number.
	TrialKey = "tune.trial"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// OutputPathKey records where results are written.
	OutputPathKey = "output.path"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseTesting    = "testing"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
