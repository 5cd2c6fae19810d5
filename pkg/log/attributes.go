// Standard attribute keys for training and inference logs. Keys follow a
// hierarchical "area.name" convention to keep log filtering uniform.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "BinaryASGD".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"

	// StepKey names the pipeline step being fitted or applied.
	StepKey = "pipeline.step"
)

// Data Shape
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
)

// Training progress and metrics
const (
	DurationMsKey = "perf.duration_ms"

	// LossKey records the training objective of a pass.
	LossKey = "metrics.loss"

	AccuracyKey = "metrics.accuracy"

	EpochKey = "training.epoch"

	// ObservationsKey is the total number of examples consumed so far.
	ObservationsKey = "training.observations"

	PredsKey = "preds.count"
)

// Hyperparameters
const (
	LearningRateKey = "hyperparams.learning_rate"

	// AveragingRateKey records the current averaging step size.
	AveragingRateKey = "hyperparams.averaging_rate"

	RegularizationKey = "hyperparams.regularization"

	RandomSeedKey = "config.random_seed"
)

// Error context
const (
	ErrorTypeKey = "error.type"
)

// Standard attribute values.
const (
	OperationFit        = "fit"
	OperationPartialFit = "partial_fit"
	OperationPredict    = "predict"
	OperationScore      = "score"
	OperationCalibrate  = "calibrate_step_size"

	PhaseTraining  = "training"
	PhaseInference = "inference"
)
