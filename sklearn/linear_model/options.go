package linear_model

import (
	"github.com/ezoic/asgd/core/tensor"
	"github.com/ezoic/asgd/pkg/log"
)

// ASGDOption configures a BinaryASGD at construction.
type ASGDOption func(*BinaryASGD)

// WithRandomState seeds the trainer's own shuffle generator. A negative seed
// seeds it from the clock once at construction.
func WithRandomState(seed int64) ASGDOption {
	return func(m *BinaryASGD) {
		m.randomState = seed
	}
}

// WithRandSource injects the source used to shuffle rows between epochs.
// Clones share an injected source.
func WithRandSource(src tensor.Source) ASGDOption {
	return func(m *BinaryASGD) {
		m.rng = src
	}
}

// WithLogger sets the logger. Defaults to the package provider's
// "linear_model" logger.
func WithLogger(logger log.Logger) ASGDOption {
	return func(m *BinaryASGD) {
		m.logger = logger
	}
}

// WithEarlyStopping stops Fit once FitConverged reports a plateau.
func WithEarlyStopping(enabled bool) ASGDOption {
	return func(m *BinaryASGD) {
		m.earlyStopping = enabled
	}
}

// WithMinIterations sets the number of recorded passes FitConverged requires.
func WithMinIterations(n int) ASGDOption {
	return func(m *BinaryASGD) {
		if n > 0 {
			m.minIterations = n
		}
	}
}

// WithStepSizeCalibrationSamples limits DetermineStepSize0 to the first n rows.
func WithStepSizeCalibrationSamples(n int) ASGDOption {
	return func(m *BinaryASGD) {
		if n > 0 {
			m.calibrationSamples = n
		}
	}
}

// WithVerbose logs per-epoch progress at info level when v > 0.
func WithVerbose(v int) ASGDOption {
	return func(m *BinaryASGD) {
		m.verbose = v
	}
}
