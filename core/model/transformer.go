package model

import "gonum.org/v1/gonum/mat"

// Transformer learns a feature mapping from X and applies it.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (*mat.Dense, error)
}

// IncrementalTransformer is a Transformer whose statistics can also be
// updated one batch at a time.
type IncrementalTransformer interface {
	Transformer
	PartialFit(X mat.Matrix) error
}
