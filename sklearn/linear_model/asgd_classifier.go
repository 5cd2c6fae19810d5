// Package linear_model implements online linear classifiers.
//
// BinaryASGD trains a binary hinge-loss linear classifier with stochastic
// gradient descent and Polyak-Ruppert averaging: every example updates a
// primal (SGD) weight vector, and a running average of the primal iterates is
// kept alongside it. The averaged parameters are the model used by Predict.
//
// Example usage:
//
//	clf, err := linear_model.NewBinaryASGD(2, 0.1, 1e-4, 5, false,
//		linear_model.WithRandomState(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := clf.Fit(X, y); err != nil { // X: n x 2, y: n x 1 of ±1
//		log.Fatal(err)
//	}
//	labels, err := clf.Predict(XTest)
//
// A trainer is owned by one goroutine at a time; it does no internal locking.
package linear_model

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/asgd/core/model"
	"github.com/ezoic/asgd/core/tensor"
	"github.com/ezoic/asgd/metrics"
	asgdErrors "github.com/ezoic/asgd/pkg/errors"
	"github.com/ezoic/asgd/pkg/log"
)

const (
	// DefaultSGDStepSizeSchedulingExponent is the decay exponent of the primal step size.
	DefaultSGDStepSizeSchedulingExponent = 2.0 / 3.0

	// DefaultMinIterations caps the number of passes required before the
	// plateau test in FitConverged may succeed.
	DefaultMinIterations = 5

	// DefaultStepSizeCalibrationSamples is the number of leading rows used by
	// DetermineStepSize0.
	DefaultStepSizeCalibrationSamples = 1000

	// three parameter-sized vectors are allocated per trainer
	parameterVectors = 3
	maxFeatures      = math.MaxInt / (parameterVectors * 8)
)

var (
	_ model.StreamingClassifier = (*BinaryASGD)(nil)
	_ model.OnlineMetrics       = (*BinaryASGD)(nil)
)

// BinaryASGD is a binary linear classifier trained by averaged SGD.
type BinaryASGD struct {
	state *model.StateManager

	// Hyperparameters
	nFeatures          int
	l2Regularization   float64
	nIterations        int
	feedback           bool
	randomState        int64
	earlyStopping      bool
	minIterations      int
	calibrationSamples int
	verbose            int

	// Primal (SGD) parameters
	sgdWeights *mat.VecDense
	sgdBias    float64

	// Averaged (ASGD) parameters. asgdNext receives each new average before
	// being swapped in, so the two averaged buffers never alias sgdWeights.
	asgdWeights *mat.VecDense
	asgdNext    *mat.VecDense
	asgdBias    float64

	// Scheduling state
	sgdStepSize                     float64
	sgdStepSize0                    float64
	sgdStepSizeSchedulingExponent   float64
	sgdStepSizeSchedulingMultiplier float64
	asgdStepSize                    float64
	asgdStepSize0                   float64
	nObservations                   int64

	lossHistory []float64
	nEpochs     int

	pcg    *rand.PCG // non-nil when the trainer owns its generator
	rng    tensor.Source
	logger log.Logger
}

// NewBinaryASGD creates a trainer with zeroed primal and averaged parameters.
//
// Parameters:
//   - nFeatures: number of features per example (> 0)
//   - sgdStepSize0: initial primal step size; 0 calibrates it on the first
//     Fit or PartialFit batch
//   - l2Regularization: L2 penalty, strictly positive
//   - nIterations: number of epochs run by Fit (> 0)
//   - feedback: copy the averaged parameters onto the primal ones after each epoch
//
// Errors:
//   - ErrInvalidHyperparameter: any argument outside its legal range
//   - ErrAllocationFailure: the parameter vectors cannot be allocated
func NewBinaryASGD(nFeatures int, sgdStepSize0, l2Regularization float64, nIterations int, feedback bool, options ...ASGDOption) (m *BinaryASGD, err error) {
	const op = "NewBinaryASGD"

	switch {
	case !(l2Regularization > 0) || math.IsInf(l2Regularization, 1):
		return nil, asgdErrors.NewHyperparameterError("l2_regularization", "must be strictly positive and finite", l2Regularization)
	case nFeatures <= 0:
		return nil, asgdErrors.NewHyperparameterError("n_features", "must be positive", nFeatures)
	case nIterations <= 0:
		return nil, asgdErrors.NewHyperparameterError("n_iterations", "must be positive", nIterations)
	case !(sgdStepSize0 >= 0) || math.IsInf(sgdStepSize0, 1):
		return nil, asgdErrors.NewHyperparameterError("sgd_step_size0", "must be finite and non-negative", sgdStepSize0)
	case nFeatures > maxFeatures:
		return nil, asgdErrors.NewAllocationError(op, nFeatures, nil)
	}

	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = asgdErrors.NewAllocationError(op, nFeatures, r)
		}
	}()

	m = &BinaryASGD{
		state:                           model.NewStateManager(),
		nFeatures:                       nFeatures,
		l2Regularization:                l2Regularization,
		nIterations:                     nIterations,
		feedback:                        feedback,
		randomState:                     -1,
		minIterations:                   min(nIterations, DefaultMinIterations),
		calibrationSamples:              DefaultStepSizeCalibrationSamples,
		sgdStepSize0:                    sgdStepSize0,
		sgdStepSizeSchedulingExponent:   DefaultSGDStepSizeSchedulingExponent,
		sgdStepSizeSchedulingMultiplier: l2Regularization,
		asgdStepSize0:                   1,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.rng == nil {
		seed := uint64(m.randomState)
		if m.randomState < 0 {
			seed = uint64(time.Now().UnixNano())
		}
		m.pcg = rand.NewPCG(seed, seed^0xdeadbeef)
		m.rng = rand.New(m.pcg)
	}
	if m.logger == nil {
		m.logger = log.GetLoggerWithName("linear_model").With(
			log.ModelNameKey, "BinaryASGD",
			log.ComponentKey, "linear_model",
		)
	}

	m.sgdWeights = mat.NewVecDense(nFeatures, nil)
	m.asgdWeights = mat.NewVecDense(nFeatures, nil)
	m.asgdNext = mat.NewVecDense(nFeatures, nil)
	m.sgdStepSize, m.asgdStepSize = m.stepSizes(0)

	return m, nil
}

// stepSizes returns the primal and averaging step sizes after n observations.
// Both depend only on n and the fixed hyperparameters.
func (m *BinaryASGD) stepSizes(n int64) (sgd, asgd float64) {
	if n == 0 {
		return m.sgdStepSize0, m.asgdStepSize0
	}
	scheduling := 1 + m.sgdStepSize0*float64(n)*m.sgdStepSizeSchedulingMultiplier
	sgd = m.sgdStepSize0 / math.Pow(scheduling, m.sgdStepSizeSchedulingExponent)
	asgd = 1 / float64(n)
	return sgd, asgd
}

// checkXY validates shapes and labels before any state is touched.
func (m *BinaryASGD) checkXY(op string, X, y mat.Matrix, minRows int) (int, error) {
	if X == nil || y == nil {
		return 0, asgdErrors.NewValueError(op, "X and y cannot be nil")
	}
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows < minRows {
		return 0, asgdErrors.NewDimensionError(op, minRows, rows, 0)
	}
	if yCols != 1 {
		return 0, asgdErrors.NewDimensionError(op, 1, yCols, 1)
	}
	if yRows != rows {
		return 0, asgdErrors.NewDimensionError(op, rows, yRows, 0)
	}
	if cols != m.nFeatures {
		return 0, asgdErrors.NewDimensionError(op, m.nFeatures, cols, 1)
	}
	for i := 0; i < rows; i++ {
		if v := y.At(i, 0); v != 1 && v != -1 {
			return 0, asgdErrors.NewValueError(op, "labels must be -1 or +1")
		}
	}
	return rows, nil
}

// checkMarginBiases validates an optional rows x 1 column of per-example
// margin biases. nil means every bias is zero.
func checkMarginBiases(op string, marginBiases mat.Matrix, rows int) error {
	if marginBiases == nil {
		return nil
	}
	r, c := marginBiases.Dims()
	if c != 1 {
		return asgdErrors.NewDimensionError(op, 1, c, 1)
	}
	if r != rows {
		return asgdErrors.NewDimensionError(op, rows, r, 0)
	}
	for i := 0; i < r; i++ {
		if v := marginBiases.At(i, 0); math.IsNaN(v) || math.IsInf(v, 0) {
			return asgdErrors.NewValueError(op, "margin biases must be finite")
		}
	}
	return nil
}

// PartialFit runs one ordered pass over X and y, updating the primal and
// averaged parameters example by example. Rows are consumed in the given
// order; shuffling is the caller's job.
//
// Shapes and labels are validated up front, so a rejected call leaves the
// trainer untouched. Repeated calls continue the same step-size schedule.
// A trainer built with a zero initial step size calibrates it on the first
// non-empty batch.
func (m *BinaryASGD) PartialFit(X, y mat.Matrix) error {
	return m.PartialFitWithMarginBiases(X, y, nil)
}

// PartialFitWithMarginBiases is PartialFit with a per-example margin bias:
// the hinge step for row i fires when its margin is below
// 1 - marginBiases[i]. marginBiases is a rows x 1 column; nil means zero for
// every row, which is exactly PartialFit.
func (m *BinaryASGD) PartialFitWithMarginBiases(X, y, marginBiases mat.Matrix) (err error) {
	defer asgdErrors.Recover(&err, "BinaryASGD.PartialFit")
	const op = "BinaryASGD.PartialFit"

	rows, err := m.checkXY(op, X, y, 0)
	if err != nil {
		return err
	}
	if err := checkMarginBiases(op, marginBiases, rows); err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}

	if m.sgdStepSize0 == 0 {
		if _, err := m.DetermineStepSize0(X, y); err != nil {
			return asgdErrors.Wrap(err, "step size calibration failed")
		}
	}

	m.partialFit(X, y, marginBiases)

	if m.logger.Enabled(context.Background(), log.LevelDebug) {
		m.logger.Debug("Partial fit completed",
			log.OperationKey, log.OperationPartialFit,
			log.SamplesKey, rows,
			log.ObservationsKey, m.nObservations,
			log.LossKey, m.Loss(),
		)
	}
	return nil
}

type rawRowViewer interface {
	RawRowView(i int) []float64
}

// partialFit is the unvalidated update loop. marginBiases may be nil.
func (m *BinaryASGD) partialFit(X, y, marginBiases mat.Matrix) {
	rows, _ := X.Dims()
	raw, isRaw := X.(rawRowViewer)
	buf := make([]float64, m.nFeatures)
	costs := make([]float64, rows)

	for i := 0; i < rows; i++ {
		var row []float64
		if isRaw {
			row = raw.RawRowView(i)
		} else {
			row = mat.Row(buf, i, X)
		}
		obs := mat.NewVecDense(m.nFeatures, row)
		label := y.At(i, 0)

		margin := label * (mat.Dot(obs, m.sgdWeights) + m.sgdBias)
		threshold := 1.0
		if marginBiases != nil {
			threshold -= marginBiases.At(i, 0)
		}

		// L2 shrinkage applies whether or not the hinge term fires.
		m.sgdWeights.ScaleVec(1-m.l2Regularization*m.sgdStepSize, m.sgdWeights)

		if margin < threshold {
			m.sgdWeights.AddScaledVec(m.sgdWeights, m.sgdStepSize*label, obs)
			m.sgdBias += m.sgdStepSize * label
			costs[i] = 1 - margin
		}

		// Averaging reads the primal state written above.
		m.asgdNext.ScaleVec(1-m.asgdStepSize, m.asgdWeights)
		m.asgdNext.AddScaledVec(m.asgdNext, m.asgdStepSize, m.sgdWeights)
		m.asgdWeights, m.asgdNext = m.asgdNext, m.asgdWeights
		m.asgdBias = (1-m.asgdStepSize)*m.asgdBias + m.asgdStepSize*m.sgdBias

		m.nObservations++
		m.sgdStepSize, m.asgdStepSize = m.stepSizes(m.nObservations)
	}

	objective := floats.Sum(costs)/float64(rows) + m.l2Regularization*mat.Dot(m.asgdWeights, m.asgdWeights)
	m.lossHistory = append(m.lossHistory, objective)

	m.state.Observe(m.nFeatures, rows)
	m.state.SetFitted()
}

// Fit trains for nIterations epochs. Before each epoch the rows of X and y
// are shuffled in place with one shared permutation drawn from the trainer's
// random source; with feedback enabled the primal parameters are reset to
// the averaged ones after each epoch.
//
// Errors:
//   - ErrShapeMismatch: X has fewer than 2 rows, y is not one column, row
//     counts differ, or X's column count is not nFeatures
//   - ValueError: a label is not ±1
//   - NumericalInstabilityError: the weights became non-finite during an epoch
func (m *BinaryASGD) Fit(X, y *mat.Dense) error {
	return m.FitWithMarginBiases(X, y, nil)
}

// FitWithMarginBiases is Fit with a per-example margin bias column (see
// PartialFitWithMarginBiases). The column is shuffled in place together with
// X and y, so every bias stays with its example. nil means zero biases.
func (m *BinaryASGD) FitWithMarginBiases(X, y, marginBiases *mat.Dense) (err error) {
	defer asgdErrors.Recover(&err, "BinaryASGD.Fit")
	const op = "BinaryASGD.Fit"

	if X == nil || y == nil {
		return asgdErrors.NewValueError(op, "X and y cannot be nil")
	}
	rows, err := m.checkXY(op, X, y, 2)
	if err != nil {
		return err
	}

	buffers := []tensor.RowViewer{X, y}
	var biases mat.Matrix
	if marginBiases != nil {
		if err := checkMarginBiases(op, marginBiases, rows); err != nil {
			return err
		}
		buffers = append(buffers, marginBiases)
		biases = marginBiases
	}

	startTime := time.Now()
	m.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, rows,
		log.FeaturesKey, m.nFeatures,
		log.RegularizationKey, m.l2Regularization,
	)

	if m.sgdStepSize0 == 0 {
		if _, err := m.DetermineStepSize0(X, y); err != nil {
			return asgdErrors.Wrap(err, "step size calibration failed")
		}
	}

	converged := false
	for epoch := 0; epoch < m.nIterations; epoch++ {
		if _, err := tensor.ShuffleRows(m.rng, buffers...); err != nil {
			return err
		}

		m.partialFit(X, y, biases)

		if m.feedback {
			m.sgdWeights.CopyVec(m.asgdWeights)
			m.sgdBias = m.asgdBias
		}
		m.nEpochs++

		if err := m.checkStability(epoch); err != nil {
			m.logger.Error("Training diverged", err, log.EpochKey, epoch)
			return err
		}

		m.logEpoch(epoch)

		if m.earlyStopping && m.FitConverged() {
			converged = true
			break
		}
	}

	if m.earlyStopping && !converged {
		asgdErrors.Warn(asgdErrors.NewConvergenceWarning("BinaryASGD", m.nIterations, "training objective has not plateaued"))
	}

	m.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.ObservationsKey, m.nObservations,
		log.LossKey, m.Loss(),
	)
	return nil
}

func (m *BinaryASGD) checkStability(epoch int) error {
	if err := asgdErrors.CheckNumericalStability("sgd_weights", m.sgdWeights.RawVector().Data, epoch); err != nil {
		return err
	}
	if err := asgdErrors.CheckNumericalStability("asgd_weights", m.asgdWeights.RawVector().Data, epoch); err != nil {
		return err
	}
	return asgdErrors.CheckScalar("asgd_bias", m.asgdBias, epoch)
}

func (m *BinaryASGD) logEpoch(epoch int) {
	fields := []any{
		log.EpochKey, epoch,
		log.LossKey, m.Loss(),
		log.LearningRateKey, m.sgdStepSize,
		log.AveragingRateKey, m.asgdStepSize,
		log.ObservationsKey, m.nObservations,
	}
	if m.verbose > 0 {
		m.logger.Info("Epoch completed", fields...)
		return
	}
	m.logger.Debug("Epoch completed", fields...)
}

// FitConverged reports whether the training objective has plateaued: at
// least minIterations passes were recorded and the latest objective is above
// 99% of the one at the midpoint of the history.
func (m *BinaryASGD) FitConverged() bool {
	h := m.lossHistory
	if len(h) < m.minIterations || len(h) == 0 {
		return false
	}
	return h[len(h)-1] > 0.99*h[len(h)/2]
}

// FitStream trains on batches from dataChan until it is closed or ctx is done.
// Batches are consumed one at a time on the calling goroutine.
func (m *BinaryASGD) FitStream(ctx context.Context, dataChan <-chan *model.Batch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-dataChan:
			if !ok {
				return nil
			}
			if err := m.PartialFit(batch.X, batch.Y); err != nil {
				return err
			}
		}
	}
}

// decision computes dot(row, asgdWeights) + asgdBias for every row of X.
func (m *BinaryASGD) decision(op string, X mat.Matrix) ([]float64, error) {
	if X == nil {
		return nil, asgdErrors.NewValueError(op, "X cannot be nil")
	}
	rows, cols := X.Dims()
	if cols != m.nFeatures {
		return nil, asgdErrors.NewDimensionError(op, m.nFeatures, cols, 1)
	}
	if rows == 0 {
		return nil, asgdErrors.NewValueError(op, "X has no rows")
	}

	out := make([]float64, rows)
	scores := mat.NewVecDense(rows, out)
	scores.MulVec(X, m.asgdWeights)
	for i := range out {
		out[i] += m.asgdBias
	}
	return out, nil
}

// DecisionFunction returns the averaged model's raw score for each row of X
// as an n x 1 matrix.
func (m *BinaryASGD) DecisionFunction(X mat.Matrix) (_ mat.Matrix, err error) {
	defer asgdErrors.Recover(&err, "BinaryASGD.DecisionFunction")

	out, err := m.decision("BinaryASGD.DecisionFunction", X)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(len(out), 1, out), nil
}

// Predict returns the sign of the averaged model's score for each row of X
// as an n x 1 matrix of ±1. A score of exactly zero maps to +1.
// Predict does not modify the trainer.
func (m *BinaryASGD) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer asgdErrors.Recover(&err, "BinaryASGD.Predict")

	out, err := m.decision("BinaryASGD.Predict", X)
	if err != nil {
		return nil, err
	}
	for i, s := range out {
		out[i] = sign(s)
	}

	m.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.PredsKey, len(out),
	)
	return mat.NewDense(len(out), 1, out), nil
}

// PredictOne classifies a single feature vector.
func (m *BinaryASGD) PredictOne(x []float64) (float64, error) {
	if len(x) != m.nFeatures {
		return 0, asgdErrors.NewDimensionError("BinaryASGD.PredictOne", m.nFeatures, len(x), 1)
	}
	score := floats.Dot(x, m.asgdWeights.RawVector().Data) + m.asgdBias
	return sign(score), nil
}

func sign(score float64) float64 {
	if score >= 0 {
		return 1
	}
	return -1
}

// Score returns the accuracy of Predict(X) against the ±1 labels in y.
func (m *BinaryASGD) Score(X, y mat.Matrix) (_ float64, err error) {
	defer asgdErrors.Recover(&err, "BinaryASGD.Score")

	if y == nil {
		return 0, asgdErrors.NewValueError("BinaryASGD.Score", "y cannot be nil")
	}
	predictions, err := m.decision("BinaryASGD.Score", X)
	if err != nil {
		return 0, err
	}
	for i, s := range predictions {
		predictions[i] = sign(s)
	}

	yRows, yCols := y.Dims()
	if yCols != 1 {
		return 0, asgdErrors.NewDimensionError("BinaryASGD.Score", 1, yCols, 1)
	}
	if yRows != len(predictions) {
		return 0, asgdErrors.NewDimensionError("BinaryASGD.Score", len(predictions), yRows, 0)
	}

	yTrue := mat.NewVecDense(yRows, mat.Col(nil, 0, y))
	return metrics.Accuracy(yTrue, mat.NewVecDense(len(predictions), predictions))
}

// Reset returns the trainer to its freshly constructed state. The random
// source is not rewound.
func (m *BinaryASGD) Reset() {
	m.sgdWeights.Zero()
	m.asgdWeights.Zero()
	m.asgdNext.Zero()
	m.sgdBias = 0
	m.asgdBias = 0
	m.nObservations = 0
	m.sgdStepSize, m.asgdStepSize = m.stepSizes(0)
	m.lossHistory = nil
	m.nEpochs = 0
	m.state.Reset()
}

// Clone returns a deep copy of the trainer. When the trainer owns its random
// generator the clone gets a copy of the generator's state, so drawing from
// one does not advance the other; a source injected with WithRandSource is
// shared.
func (m *BinaryASGD) Clone() *BinaryASGD {
	c := *m
	c.state = m.state.Clone()
	c.sgdWeights = mat.VecDenseCopyOf(m.sgdWeights)
	c.asgdWeights = mat.VecDenseCopyOf(m.asgdWeights)
	c.asgdNext = mat.NewVecDense(m.nFeatures, nil)
	c.lossHistory = append([]float64(nil), m.lossHistory...)

	if m.pcg != nil {
		state, err := m.pcg.MarshalBinary()
		if err == nil {
			c.pcg = new(rand.PCG)
			if err = c.pcg.UnmarshalBinary(state); err == nil {
				c.rng = rand.New(c.pcg)
			}
		}
		if err != nil {
			c.pcg = nil
		}
	}
	return &c
}

// NObservations returns the number of examples consumed so far.
func (m *BinaryASGD) NObservations() int64 { return m.nObservations }

// NEpochs returns the number of epochs run by Fit so far.
func (m *BinaryASGD) NEpochs() int { return m.nEpochs }

// NFeatures returns the number of features.
func (m *BinaryASGD) NFeatures() int { return m.nFeatures }

// NIterations returns the number of epochs each Fit call runs.
func (m *BinaryASGD) NIterations() int { return m.nIterations }

// Feedback reports whether feedback mode is enabled.
func (m *BinaryASGD) Feedback() bool { return m.feedback }

// L2Regularization returns the L2 penalty.
func (m *BinaryASGD) L2Regularization() float64 { return m.l2Regularization }

// SGDStepSize returns the current primal step size.
func (m *BinaryASGD) SGDStepSize() float64 { return m.sgdStepSize }

// SGDStepSize0 returns the initial primal step size.
func (m *BinaryASGD) SGDStepSize0() float64 { return m.sgdStepSize0 }

// ASGDStepSize returns the current averaging step size.
func (m *BinaryASGD) ASGDStepSize() float64 { return m.asgdStepSize }

// SGDWeights returns a copy of the primal weights.
func (m *BinaryASGD) SGDWeights() []float64 { return copyVec(m.sgdWeights) }

// SGDBias returns the primal bias.
func (m *BinaryASGD) SGDBias() float64 { return m.sgdBias }

// ASGDWeights returns a copy of the averaged weights.
func (m *BinaryASGD) ASGDWeights() []float64 { return copyVec(m.asgdWeights) }

// ASGDBias returns the averaged bias.
func (m *BinaryASGD) ASGDBias() float64 { return m.asgdBias }

// Coef returns the model coefficients, i.e. a copy of the averaged weights.
func (m *BinaryASGD) Coef() []float64 { return m.ASGDWeights() }

// Intercept returns the model intercept, i.e. the averaged bias.
func (m *BinaryASGD) Intercept() float64 { return m.asgdBias }

// IsFitted reports whether any training pass has run.
func (m *BinaryASGD) IsFitted() bool { return m.state.IsFitted() }

// Loss returns the training objective of the latest pass, or +Inf before training.
func (m *BinaryASGD) Loss() float64 {
	if len(m.lossHistory) == 0 {
		return math.Inf(1)
	}
	return m.lossHistory[len(m.lossHistory)-1]
}

// LossHistory returns the training objective of every pass so far.
func (m *BinaryASGD) LossHistory() []float64 {
	return append([]float64(nil), m.lossHistory...)
}

// GetParams returns the hyperparameters
func (m *BinaryASGD) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_features":                          m.nFeatures,
		"sgd_step_size0":                      m.sgdStepSize0,
		"l2_regularization":                   m.l2Regularization,
		"n_iterations":                        m.nIterations,
		"feedback":                            m.feedback,
		"random_state":                        m.randomState,
		"early_stopping":                      m.earlyStopping,
		"min_n_iterations":                    m.minIterations,
		"sgd_step_size_scheduling_exponent":   m.sgdStepSizeSchedulingExponent,
		"sgd_step_size_scheduling_multiplier": m.sgdStepSizeSchedulingMultiplier,
		"fitted":                              m.state.IsFitted(),
	}
}

func copyVec(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
