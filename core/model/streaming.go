package model

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Batch represents a data batch for streaming learning
type Batch struct {
	X mat.Matrix // Feature matrix
	Y mat.Matrix // Label column
}

// OnlineClassifier is a binary classifier that can learn one batch at a time.
type OnlineClassifier interface {
	// PartialFit runs one ordered pass over the batch.
	PartialFit(X, y mat.Matrix) error

	// Predict returns one ±1 label per row of X as an n x 1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)

	// DecisionFunction returns the raw score per row of X.
	DecisionFunction(X mat.Matrix) (mat.Matrix, error)
}

// StreamingClassifier consumes batches from a channel.
type StreamingClassifier interface {
	OnlineClassifier

	// FitStream trains until the channel is closed or ctx is done.
	FitStream(ctx context.Context, dataChan <-chan *Batch) error
}

// OnlineMetrics tracks the training objective during online learning.
type OnlineMetrics interface {
	// Loss returns the objective of the latest pass.
	Loss() float64

	// LossHistory returns the objective of every pass so far.
	LossHistory() []float64

	// FitConverged reports whether the objective has plateaued.
	FitConverged() bool
}
