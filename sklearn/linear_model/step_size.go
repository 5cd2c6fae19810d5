package linear_model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/asgd/metrics"
	asgdErrors "github.com/ezoic/asgd/pkg/errors"
	"github.com/ezoic/asgd/pkg/log"
)

const (
	stepSizeSearchBase      = 1.0
	stepSizeSearchFactor    = 2.0
	stepSizeSearchTolerance = 1e-4
	maxStepSizeSearchSteps  = 64
)

// DetermineStepSize0 picks the initial primal step size with a geometric
// search (Bottou, "Stochastic Gradient Descent Tricks"). Each candidate is
// scored by running one pass of a clone over the first
// calibration-sample rows of X; the search moves by factors of two from 1
// until the cost stops improving by more than 1e-4.
//
// The chosen value is stored as the trainer's initial step size and returned.
// The trainer's parameters and observation count are not touched.
func (m *BinaryASGD) DetermineStepSize0(X, y mat.Matrix) (_ float64, err error) {
	defer asgdErrors.Recover(&err, "BinaryASGD.DetermineStepSize0")
	const op = "BinaryASGD.DetermineStepSize0"

	rows, err := m.checkXY(op, X, y, 1)
	if err != nil {
		return 0, err
	}
	n := min(rows, m.calibrationSamples)
	Xs, ys := headRows(X, n), headRows(y, n)

	lo := stepSizeSearchBase
	loCost := m.evaluateStepSize(Xs, ys, lo)
	hi := lo * stepSizeSearchFactor
	hiCost := m.evaluateStepSize(Xs, ys, hi)

	switch {
	case loCost < hiCost:
		for i := 0; i < maxStepSizeSearchSteps && loCost+stepSizeSearchTolerance < hiCost; i++ {
			hi, hiCost = lo, loCost
			lo = hi / stepSizeSearchFactor
			loCost = m.evaluateStepSize(Xs, ys, lo)
		}
	case hiCost < loCost:
		for i := 0; i < maxStepSizeSearchSteps && hiCost+stepSizeSearchTolerance < loCost; i++ {
			lo, loCost = hi, hiCost
			hi = lo * stepSizeSearchFactor
			hiCost = m.evaluateStepSize(Xs, ys, hi)
		}
	}

	m.sgdStepSize0 = lo
	m.sgdStepSize, m.asgdStepSize = m.stepSizes(m.nObservations)

	m.logger.Info("Step size calibrated",
		log.OperationKey, log.OperationCalibrate,
		log.SamplesKey, n,
		log.LearningRateKey, lo,
		log.LossKey, loCost,
	)
	return lo, nil
}

// evaluateStepSize runs one pass of a clone at step size eta0 and returns the
// regularized hinge cost of the half-and-half blend of its primal and
// averaged parameters. Non-finite costs map to +Inf.
func (m *BinaryASGD) evaluateStepSize(X, y mat.Matrix, eta0 float64) float64 {
	other := m.Clone()
	other.sgdStepSize0 = eta0
	other.sgdStepSize, other.asgdStepSize = other.stepSizes(other.nObservations)
	other.partialFit(X, y, nil)

	w := mat.NewVecDense(m.nFeatures, nil)
	w.AddVec(other.asgdWeights, other.sgdWeights)
	w.ScaleVec(0.5, w)
	b := 0.5 * (other.asgdBias + other.sgdBias)

	rows, _ := X.Dims()
	scores := mat.NewVecDense(rows, nil)
	scores.MulVec(X, w)
	for i := 0; i < rows; i++ {
		scores.SetVec(i, scores.AtVec(i)+b)
	}

	hinge, err := metrics.HingeLoss(mat.NewVecDense(rows, mat.Col(nil, 0, y)), scores)
	if err != nil {
		return math.Inf(1)
	}
	cost := hinge + m.l2Regularization*mat.Dot(w, w)
	if asgdErrors.CheckScalar("step_size_cost", cost, 0) != nil {
		return math.Inf(1)
	}
	return cost
}

// headRows returns the first n rows of a, sharing storage when a is a *mat.Dense.
func headRows(a mat.Matrix, n int) mat.Matrix {
	r, c := a.Dims()
	if n >= r {
		return a
	}
	if d, ok := a.(*mat.Dense); ok {
		return d.Slice(0, n, 0, c)
	}
	out := mat.NewDense(n, c, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, a.At(i, j))
		}
	}
	return out
}
