package linear_model

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/asgd/core/model"
	asgdErrors "github.com/ezoic/asgd/pkg/errors"
	"github.com/ezoic/asgd/pkg/log"
)

// separable returns n rows of two well separated clusters around (+2,+2)
// and (-2,-2) with alternating labels.
func separable(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		label := 1.0
		if i%2 == 1 {
			label = -1
		}
		jitter := float64(i%7) / 10
		X.Set(i, 0, label*2+jitter-0.3)
		X.Set(i, 1, label*2-jitter+0.3)
		y.Set(i, 0, label)
	}
	return X, y
}

func newTestASGD(t *testing.T, nFeatures int, eta0, l2 float64, nIter int, feedback bool, opts ...ASGDOption) *BinaryASGD {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelError)
	opts = append([]ASGDOption{WithRandomState(42), WithLogger(logger)}, opts...)
	m, err := NewBinaryASGD(nFeatures, eta0, l2, nIter, feedback, opts...)
	require.NoError(t, err)
	return m
}

// TestNewBinaryASGD は初期状態をテスト
func TestNewBinaryASGD(t *testing.T) {
	m := newTestASGD(t, 3, 0.1, 1e-4, 5, false)

	assert.Equal(t, []float64{0, 0, 0}, m.SGDWeights())
	assert.Equal(t, []float64{0, 0, 0}, m.ASGDWeights())
	assert.Zero(t, m.SGDBias())
	assert.Zero(t, m.ASGDBias())
	assert.Equal(t, int64(0), m.NObservations())
	assert.Equal(t, 0.1, m.SGDStepSize())
	assert.Equal(t, 1.0, m.ASGDStepSize())
	assert.InDelta(t, 2.0/3.0, m.sgdStepSizeSchedulingExponent, 1e-15)
	assert.Equal(t, 1e-4, m.sgdStepSizeSchedulingMultiplier)
	assert.False(t, m.IsFitted())
	assert.True(t, math.IsInf(m.Loss(), 1))

	params := m.GetParams()
	assert.Equal(t, 3, params["n_features"])
	assert.Equal(t, 5, params["n_iterations"])
	assert.Equal(t, false, params["feedback"])
}

func TestNewBinaryASGDInvalidHyperparameters(t *testing.T) {
	tests := []struct {
		name      string
		nFeatures int
		eta0      float64
		l2        float64
		nIter     int
	}{
		{"zero features", 0, 0.1, 1e-4, 1},
		{"negative features", -2, 0.1, 1e-4, 1},
		{"zero l2", 2, 0.1, 0, 1},
		{"negative l2", 2, 0.1, -1e-4, 1},
		{"NaN l2", 2, 0.1, math.NaN(), 1},
		{"infinite l2", 2, 0.1, math.Inf(1), 1},
		{"zero iterations", 2, 0.1, 1e-4, 0},
		{"negative step size", 2, -0.1, 1e-4, 1},
		{"NaN step size", 2, math.NaN(), 1e-4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewBinaryASGD(tt.nFeatures, tt.eta0, tt.l2, tt.nIter, false)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, asgdErrors.Is(err, asgdErrors.ErrInvalidHyperparameter))
			assert.False(t, asgdErrors.Is(err, asgdErrors.ErrAllocationFailure))

			var hpErr *asgdErrors.HyperparameterError
			assert.True(t, asgdErrors.As(err, &hpErr))
		})
	}
}

func TestNewBinaryASGDAllocationFailure(t *testing.T) {
	m, err := NewBinaryASGD(math.MaxInt, 0.1, 1e-4, 1, false)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, asgdErrors.Is(err, asgdErrors.ErrAllocationFailure))
	assert.False(t, asgdErrors.Is(err, asgdErrors.ErrInvalidHyperparameter))
}

// TestPartialFitTwoPoints は2点の手計算結果と一致することをテスト
func TestPartialFitTwoPoints(t *testing.T) {
	const eta0, l2 = 0.1, 1e-4
	m := newTestASGD(t, 2, eta0, l2, 1, false)

	X := mat.NewDense(2, 2, []float64{1, 1, -1, -1})
	y := mat.NewDense(2, 1, []float64{1, -1})
	require.NoError(t, m.PartialFit(X, y))

	// first example: margin 0, weights become eta0 * x; averaging rate 1 copies them
	// second example: margin 0.1 < 1 at step size eta1
	eta1 := eta0 / math.Pow(1+eta0*1*l2, 2.0/3.0)
	wantW := 0.1*(1-l2*eta1) + eta1
	wantB := 0.1 - eta1

	for _, w := range m.SGDWeights() {
		assert.InDelta(t, wantW, w, 1e-12)
	}
	assert.InDelta(t, wantB, m.SGDBias(), 1e-12)

	// averaging rate after the first observation is 1/1
	assert.InDeltaSlice(t, m.SGDWeights(), m.ASGDWeights(), 1e-12)
	assert.InDelta(t, wantB, m.ASGDBias(), 1e-12)

	assert.Equal(t, int64(2), m.NObservations())
	assert.InDelta(t, 0.5, m.ASGDStepSize(), 1e-15)
	assert.InDelta(t, eta0/math.Pow(1+eta0*2*l2, 2.0/3.0), m.SGDStepSize(), 1e-15)

	pred, err := m.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1}, mat.Col(nil, 0, pred))
}

func TestPartialFitMarginAboveOneOnlyShrinks(t *testing.T) {
	const eta0, l2 = 0.5, 0.01
	m := newTestASGD(t, 2, eta0, l2, 1, false)
	m.sgdWeights.SetVec(0, 2)
	m.sgdBias = 0.25

	X := mat.NewDense(1, 2, []float64{1, 0})
	y := mat.NewDense(1, 1, []float64{1})
	require.NoError(t, m.PartialFit(X, y))

	assert.InDelta(t, 2*(1-l2*eta0), m.SGDWeights()[0], 1e-12)
	assert.Zero(t, m.SGDWeights()[1])
	assert.Equal(t, 0.25, m.SGDBias())
	assert.Zero(t, m.lossHistory[0]-l2*mat.Dot(m.asgdWeights, m.asgdWeights))
}

func TestPartialFitAveraging(t *testing.T) {
	m := newTestASGD(t, 2, 0.2, 1e-3, 1, false)

	X := mat.NewDense(3, 2, []float64{1, 0, 0, -1, 0.5, 0.5})
	y := mat.NewDense(3, 1, []float64{1, 1, -1})

	require.NoError(t, m.PartialFit(X.Slice(0, 1, 0, 2), y.Slice(0, 1, 0, 1)))
	assert.InDeltaSlice(t, m.SGDWeights(), m.ASGDWeights(), 1e-15)

	prevAvg, prevAvgBias := m.ASGDWeights(), m.ASGDBias()
	mu := m.ASGDStepSize()
	assert.InDelta(t, 1.0, mu, 1e-15)

	require.NoError(t, m.PartialFit(X.Slice(1, 2, 0, 2), y.Slice(1, 2, 0, 1)))
	sgd := m.SGDWeights()
	for j, w := range m.ASGDWeights() {
		assert.InDelta(t, (1-mu)*prevAvg[j]+mu*sgd[j], w, 1e-15)
	}
	assert.InDelta(t, (1-mu)*prevAvgBias+mu*m.SGDBias(), m.ASGDBias(), 1e-15)

	prevAvg, prevAvgBias = m.ASGDWeights(), m.ASGDBias()
	mu = m.ASGDStepSize()
	assert.InDelta(t, 0.5, mu, 1e-15)

	require.NoError(t, m.PartialFit(X.Slice(2, 3, 0, 2), y.Slice(2, 3, 0, 1)))
	sgd = m.SGDWeights()
	for j, w := range m.ASGDWeights() {
		assert.InDelta(t, (1-mu)*prevAvg[j]+mu*sgd[j], w, 1e-15)
	}
	assert.InDelta(t, (1-mu)*prevAvgBias+mu*m.SGDBias(), m.ASGDBias(), 1e-15)
}

func TestStepSizesDependOnlyOnObservations(t *testing.T) {
	const eta0, l2 = 0.3, 0.05
	m := newTestASGD(t, 1, eta0, l2, 1, false)

	for _, n := range []int64{1, 2, 10, 1000} {
		sgd, asgd := m.stepSizes(n)
		assert.InDelta(t, eta0/math.Pow(1+eta0*float64(n)*l2, 2.0/3.0), sgd, 1e-15)
		assert.InDelta(t, 1/float64(n), asgd, 1e-15)
	}

	X, y := separable(4)
	Xa := mat.DenseCopyOf(X.Slice(0, 4, 0, 1))
	require.NoError(t, m.PartialFit(Xa, y))
	sgd, asgd := m.stepSizes(4)
	assert.Equal(t, sgd, m.SGDStepSize())
	assert.Equal(t, asgd, m.ASGDStepSize())
}

func TestPartialFitAccumulatesObservations(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 1, false)
	X, y := separable(10)

	require.NoError(t, m.PartialFit(X, y))
	require.NoError(t, m.PartialFit(X.Slice(0, 3, 0, 2), y.Slice(0, 3, 0, 1)))

	assert.Equal(t, int64(13), m.NObservations())
	assert.Len(t, m.LossHistory(), 2)
	assert.True(t, m.IsFitted())
}

func TestPartialFitShapeMismatch(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 1, false)

	tests := []struct {
		name string
		X    mat.Matrix
		y    mat.Matrix
	}{
		{"wrong feature count", mat.NewDense(2, 3, nil), mat.NewDense(2, 1, []float64{1, -1})},
		{"two label columns", mat.NewDense(2, 2, nil), mat.NewDense(2, 2, []float64{1, -1, 1, -1})},
		{"row count differs", mat.NewDense(3, 2, nil), mat.NewDense(2, 1, []float64{1, -1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.PartialFit(tt.X, tt.y)
			require.Error(t, err)
			assert.True(t, asgdErrors.Is(err, asgdErrors.ErrShapeMismatch))
			assert.Equal(t, int64(0), m.NObservations())
			assert.False(t, m.IsFitted())
		})
	}
}

func TestPartialFitRejectsNonSignedLabels(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 1, false)
	X := mat.NewDense(2, 2, []float64{1, 1, -1, -1})
	y := mat.NewDense(2, 1, []float64{1, 0})

	err := m.PartialFit(X, y)
	require.Error(t, err)

	var valErr *asgdErrors.ValueError
	assert.True(t, asgdErrors.As(err, &valErr))
	assert.Equal(t, []float64{0, 0}, m.SGDWeights())
}

// TestFit は分離可能なデータで学習できることをテスト
func TestFit(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 5, false)
	X, y := separable(40)

	require.NoError(t, m.Fit(X, y))

	assert.True(t, m.IsFitted())
	assert.Equal(t, int64(200), m.NObservations())
	assert.Equal(t, 5, m.NEpochs())
	assert.Len(t, m.LossHistory(), 5)

	acc, err := m.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestFitKeepsRowsPaired(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 3, false)
	X, y := separable(20)

	require.NoError(t, m.Fit(X, y))

	// the cluster sign of each row still matches its label
	for i := 0; i < 20; i++ {
		assert.Equal(t, math.Signbit(X.At(i, 0)+X.At(i, 1)), math.Signbit(y.At(i, 0)), "row %d", i)
	}
}

func TestFitDeterministicWithSeed(t *testing.T) {
	X1, y1 := separable(30)
	X2, y2 := separable(30)

	a := newTestASGD(t, 2, 0.05, 1e-3, 4, false, WithRandomState(7))
	b := newTestASGD(t, 2, 0.05, 1e-3, 4, false, WithRandomState(7))

	require.NoError(t, a.Fit(X1, y1))
	require.NoError(t, b.Fit(X2, y2))

	assert.Equal(t, a.ASGDWeights(), b.ASGDWeights())
	assert.Equal(t, a.ASGDBias(), b.ASGDBias())
	assert.Equal(t, a.SGDWeights(), b.SGDWeights())
	assert.True(t, mat.Equal(X1, X2))
}

func TestFitShapeMismatch(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 2, false)

	tests := []struct {
		name string
		X    *mat.Dense
		y    *mat.Dense
	}{
		{"single row", mat.NewDense(1, 2, nil), mat.NewDense(1, 1, []float64{1})},
		{"wrong feature count", mat.NewDense(2, 1, nil), mat.NewDense(2, 1, []float64{1, -1})},
		{"two label columns", mat.NewDense(2, 2, nil), mat.NewDense(2, 2, []float64{1, -1, 1, -1})},
		{"row count differs", mat.NewDense(3, 2, nil), mat.NewDense(2, 1, []float64{1, -1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Fit(tt.X, tt.y)
			require.Error(t, err)
			assert.True(t, asgdErrors.Is(err, asgdErrors.ErrShapeMismatch))

			var dimErr *asgdErrors.DimensionError
			assert.True(t, asgdErrors.As(err, &dimErr))
			assert.Equal(t, int64(0), m.NObservations())
		})
	}
}

func TestFitFeedbackCopiesAveragedParameters(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 3, true)
	X, y := separable(16)

	require.NoError(t, m.Fit(X, y))

	assert.Equal(t, m.ASGDWeights(), m.SGDWeights())
	assert.Equal(t, m.ASGDBias(), m.SGDBias())
	assert.NotSame(t, m.sgdWeights, m.asgdWeights)

	m.sgdWeights.SetVec(0, 100)
	assert.NotEqual(t, 100.0, m.ASGDWeights()[0])
}

func TestFitWithoutFeedbackKeepsPrimalIterate(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 3, false)
	X, y := separable(16)

	require.NoError(t, m.Fit(X, y))
	assert.NotEqual(t, m.ASGDWeights(), m.SGDWeights())
}

func TestFitCalibratesZeroStepSize(t *testing.T) {
	m := newTestASGD(t, 2, 0, 1e-4, 2, false)
	X, y := separable(20)

	require.NoError(t, m.Fit(X, y))

	eta0 := m.SGDStepSize0()
	assert.Greater(t, eta0, 0.0)
	// the search moves in powers of two from 1
	assert.Equal(t, math.Round(math.Log2(eta0)), math.Log2(eta0))
	assert.Equal(t, int64(40), m.NObservations())
}

func TestPartialFitCalibratesZeroStepSize(t *testing.T) {
	m := newTestASGD(t, 2, 0, 1e-4, 1, false)
	X, y := separable(20)

	require.NoError(t, m.PartialFit(X, y))

	eta0 := m.SGDStepSize0()
	assert.Greater(t, eta0, 0.0)
	assert.Equal(t, math.Round(math.Log2(eta0)), math.Log2(eta0))
	assert.NotEqual(t, []float64{0, 0}, m.ASGDWeights())
	assert.Equal(t, int64(20), m.NObservations())

	acc, err := m.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	// later batches keep the calibrated value
	require.NoError(t, m.PartialFit(X.Slice(0, 4, 0, 2), y.Slice(0, 4, 0, 1)))
	assert.Equal(t, eta0, m.SGDStepSize0())
	sgd, asgd := m.stepSizes(24)
	assert.Equal(t, sgd, m.SGDStepSize())
	assert.Equal(t, asgd, m.ASGDStepSize())
}

func TestFitStreamCalibratesZeroStepSize(t *testing.T) {
	m := newTestASGD(t, 2, 0, 1e-4, 1, false)

	dataChan := make(chan *model.Batch, 2)
	for i := 0; i < 2; i++ {
		X, y := separable(10)
		dataChan <- &model.Batch{X: X, Y: y}
	}
	close(dataChan)

	require.NoError(t, m.FitStream(context.Background(), dataChan))
	assert.Greater(t, m.SGDStepSize0(), 0.0)
	assert.NotEqual(t, []float64{0, 0}, m.SGDWeights())
	assert.Equal(t, int64(20), m.NObservations())
}

func TestPartialFitZeroMarginBiasesMatchPartialFit(t *testing.T) {
	X, y := separable(12)

	plain := newTestASGD(t, 2, 0.1, 1e-3, 1, false)
	biased := newTestASGD(t, 2, 0.1, 1e-3, 1, false)

	require.NoError(t, plain.PartialFit(X, y))
	require.NoError(t, biased.PartialFitWithMarginBiases(X, y, mat.NewDense(12, 1, nil)))

	assert.Equal(t, plain.SGDWeights(), biased.SGDWeights())
	assert.Equal(t, plain.ASGDWeights(), biased.ASGDWeights())
	assert.Equal(t, plain.ASGDBias(), biased.ASGDBias())
	assert.Equal(t, plain.LossHistory(), biased.LossHistory())
}

func TestPartialFitMarginBiasShiftsHingeThreshold(t *testing.T) {
	const eta0, l2 = 0.5, 0.01
	X := mat.NewDense(1, 2, []float64{1, 0})
	y := mat.NewDense(1, 1, []float64{1})

	// margin 0 is not below 1 - 1
	m := newTestASGD(t, 2, eta0, l2, 1, false)
	require.NoError(t, m.PartialFitWithMarginBiases(X, y, mat.NewDense(1, 1, []float64{1})))
	assert.Equal(t, []float64{0, 0}, m.SGDWeights())
	assert.Zero(t, m.SGDBias())
	assert.Equal(t, int64(1), m.NObservations())

	// margin 1.5 is below 1 - (-1)
	m = newTestASGD(t, 2, eta0, l2, 1, false)
	m.sgdWeights.SetVec(0, 1.5)
	require.NoError(t, m.PartialFitWithMarginBiases(X, y, mat.NewDense(1, 1, []float64{-1})))
	assert.InDelta(t, 1.5*(1-l2*eta0)+eta0, m.SGDWeights()[0], 1e-12)
	assert.InDelta(t, eta0, m.SGDBias(), 1e-12)
	assert.InDelta(t, -0.5+l2*mat.Dot(m.asgdWeights, m.asgdWeights), m.Loss(), 1e-12)
}

func TestPartialFitMarginBiasesValidation(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 1, false)
	X, y := separable(4)

	err := m.PartialFitWithMarginBiases(X, y, mat.NewDense(3, 1, nil))
	assert.True(t, asgdErrors.Is(err, asgdErrors.ErrShapeMismatch))

	err = m.PartialFitWithMarginBiases(X, y, mat.NewDense(4, 2, nil))
	assert.True(t, asgdErrors.Is(err, asgdErrors.ErrShapeMismatch))

	err = m.PartialFitWithMarginBiases(X, y, mat.NewDense(4, 1, []float64{0, math.NaN(), 0, 0}))
	var valErr *asgdErrors.ValueError
	assert.True(t, asgdErrors.As(err, &valErr))

	assert.Equal(t, int64(0), m.NObservations())
	assert.False(t, m.IsFitted())
}

func TestFitShufflesMarginBiasesWithRows(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 3, false)
	X, y := separable(20)
	biases := mat.NewDense(20, 1, mat.Col(nil, 0, X))
	original := mat.DenseCopyOf(X)

	require.NoError(t, m.FitWithMarginBiases(X, y, biases))

	assert.False(t, mat.Equal(original, X), "rows should have been permuted")
	for i := 0; i < 20; i++ {
		assert.Equal(t, X.At(i, 0), biases.At(i, 0), "row %d", i)
	}
	assert.Equal(t, int64(60), m.NObservations())
}

func TestFitTwoPointsAnySeed(t *testing.T) {
	const eta0, l2 = 0.1, 1e-4
	eta1 := eta0 / math.Pow(1+eta0*l2, 2.0/3.0)
	wantW := 0.1*(1-l2*eta1) + eta1

	for seed := int64(0); seed < 8; seed++ {
		m := newTestASGD(t, 2, eta0, l2, 1, false, WithRandomState(seed))
		X := mat.NewDense(2, 2, []float64{1, 1, -1, -1})
		y := mat.NewDense(2, 1, []float64{1, -1})

		require.NoError(t, m.Fit(X, y), "seed %d", seed)

		// y*x is (1, 1) for both rows, so the weights do not depend on the order
		assert.InDeltaSlice(t, []float64{wantW, wantW}, m.ASGDWeights(), 1e-12, "seed %d", seed)
		assert.InDelta(t, 0.1-eta1, math.Abs(m.ASGDBias()), 1e-12, "seed %d", seed)
		assert.Equal(t, int64(2), m.NObservations())

		pred, err := m.Predict(mat.NewDense(2, 2, []float64{1, 1, -1, -1}))
		require.NoError(t, err)
		assert.Equal(t, []float64{1, -1}, mat.Col(nil, 0, pred), "seed %d", seed)
	}
}

func TestObservationsContinueAcrossFitAndPartialFit(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-3, 2, false)
	X, y := separable(20)

	require.NoError(t, m.Fit(X, y))
	assert.Equal(t, int64(40), m.NObservations())
	sgd, asgd := m.stepSizes(40)
	assert.Equal(t, sgd, m.SGDStepSize())
	assert.Equal(t, asgd, m.ASGDStepSize())

	require.NoError(t, m.PartialFit(X.Slice(0, 5, 0, 2), y.Slice(0, 5, 0, 1)))
	assert.Equal(t, int64(45), m.NObservations())
	sgd, asgd = m.stepSizes(45)
	assert.Equal(t, sgd, m.SGDStepSize())
	assert.Equal(t, asgd, m.ASGDStepSize())

	require.NoError(t, m.Fit(X, y))
	assert.Equal(t, int64(85), m.NObservations())
	assert.InDelta(t, 1.0/85, m.ASGDStepSize(), 1e-15)
	assert.Len(t, m.LossHistory(), 5)
}

func TestDetermineStepSize0LeavesParametersUntouched(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 1, false, WithStepSizeCalibrationSamples(8))
	X, y := separable(20)
	require.NoError(t, m.PartialFit(X, y))

	weights, bias, n := m.ASGDWeights(), m.ASGDBias(), m.NObservations()

	eta0, err := m.DetermineStepSize0(X, y)
	require.NoError(t, err)
	assert.Greater(t, eta0, 0.0)
	assert.Equal(t, eta0, m.SGDStepSize0())

	assert.Equal(t, weights, m.ASGDWeights())
	assert.Equal(t, bias, m.ASGDBias())
	assert.Equal(t, n, m.NObservations())

	sgd, asgd := m.stepSizes(n)
	assert.Equal(t, sgd, m.SGDStepSize())
	assert.Equal(t, asgd, m.ASGDStepSize())
}

func TestPredict(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 1, false)

	// a zero model scores every row at 0, which maps to +1
	pred, err := m.Predict(mat.NewDense(3, 2, []float64{1, 2, -1, -2, 0, 0}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, mat.Col(nil, 0, pred))

	m.asgdWeights.SetVec(0, 1)
	m.asgdBias = -0.5
	X := mat.NewDense(3, 2, []float64{1, 0, 0, 5, 0.5, 0})
	pred, err = m.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1, 1}, mat.Col(nil, 0, pred))

	scores, err := m.DecisionFunction(X)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, -0.5, 0}, mat.Col(nil, 0, scores), 1e-15)

	label, err := m.PredictOne([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, -1.0, label)
}

func TestPredictDoesNotModifyState(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 2, false)
	X, y := separable(10)
	require.NoError(t, m.Fit(X, y))

	weights, bias, n := m.ASGDWeights(), m.ASGDBias(), m.NObservations()
	first, err := m.Predict(X)
	require.NoError(t, err)
	second, err := m.Predict(X)
	require.NoError(t, err)

	assert.True(t, mat.Equal(first, second))
	assert.Equal(t, weights, m.ASGDWeights())
	assert.Equal(t, bias, m.ASGDBias())
	assert.Equal(t, n, m.NObservations())
}

func TestPredictShapeMismatch(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 1, false)

	_, err := m.Predict(mat.NewDense(2, 3, nil))
	assert.True(t, asgdErrors.Is(err, asgdErrors.ErrShapeMismatch))

	_, err = m.PredictOne([]float64{1})
	assert.True(t, asgdErrors.Is(err, asgdErrors.ErrShapeMismatch))
}

func TestFitConverged(t *testing.T) {
	m := newTestASGD(t, 1, 0.1, 1e-4, 10, false)
	assert.Equal(t, 5, m.minIterations)
	assert.False(t, m.FitConverged())

	m.lossHistory = []float64{1, 0.5, 0.5, 0.5}
	assert.False(t, m.FitConverged(), "too few passes")

	m.lossHistory = []float64{1, 0.5, 0.5, 0.5, 0.5}
	assert.True(t, m.FitConverged())

	m.lossHistory = []float64{1, 0.8, 0.6, 0.4, 0.2}
	assert.False(t, m.FitConverged())
}

func TestFitEarlyStopping(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 50, false,
		WithEarlyStopping(true),
		WithMinIterations(2),
	)
	X, y := separable(20)

	require.NoError(t, m.Fit(X, y))
	assert.True(t, m.FitConverged())
	assert.Less(t, m.NEpochs(), 50)
	assert.Equal(t, int64(20*m.NEpochs()), m.NObservations())
}

func TestReset(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 2, false)
	X, y := separable(10)
	require.NoError(t, m.Fit(X, y))

	m.Reset()

	assert.Equal(t, []float64{0, 0}, m.SGDWeights())
	assert.Equal(t, []float64{0, 0}, m.ASGDWeights())
	assert.Zero(t, m.ASGDBias())
	assert.Equal(t, int64(0), m.NObservations())
	assert.Equal(t, 0.1, m.SGDStepSize())
	assert.Equal(t, 1.0, m.ASGDStepSize())
	assert.Empty(t, m.LossHistory())
	assert.False(t, m.IsFitted())
}

func TestClone(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 3, false)
	X1, y1 := separable(12)
	require.NoError(t, m.PartialFit(X1, y1))

	c := m.Clone()
	assert.Equal(t, m.ASGDWeights(), c.ASGDWeights())
	assert.Equal(t, m.NObservations(), c.NObservations())

	// training the clone leaves the original untouched
	before := m.ASGDWeights()
	X2, y2 := separable(12)
	require.NoError(t, c.Fit(X2, y2))
	assert.Equal(t, before, m.ASGDWeights())
	assert.Equal(t, int64(12), m.NObservations())

	// the clone's generator starts where the original's was
	X3, y3 := separable(12)
	require.NoError(t, m.Fit(X3, y3))
	assert.Equal(t, c.ASGDWeights(), m.ASGDWeights())
	assert.True(t, mat.Equal(X2, X3))
}

func TestFitStream(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 1, false)

	dataChan := make(chan *model.Batch, 3)
	for i := 0; i < 3; i++ {
		X, y := separable(8)
		dataChan <- &model.Batch{X: X, Y: y}
	}
	close(dataChan)

	require.NoError(t, m.FitStream(context.Background(), dataChan))
	assert.Equal(t, int64(24), m.NObservations())
	assert.Len(t, m.LossHistory(), 3)
}

func TestFitStreamCancelled(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 1, false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := m.FitStream(ctx, make(chan *model.Batch))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFitStreamStopsOnBadBatch(t *testing.T) {
	m := newTestASGD(t, 2, 0.1, 1e-4, 1, false)

	dataChan := make(chan *model.Batch, 1)
	dataChan <- &model.Batch{X: mat.NewDense(2, 3, nil), Y: mat.NewDense(2, 1, []float64{1, -1})}

	err := m.FitStream(context.Background(), dataChan)
	assert.True(t, asgdErrors.Is(err, asgdErrors.ErrShapeMismatch))
}

func TestFitLogging(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	m, err := NewBinaryASGD(2, 0.1, 1e-4, 2, false, WithRandomState(1), WithLogger(logger))
	require.NoError(t, err)

	X, y := separable(10)
	require.NoError(t, m.Fit(X, y))

	assert.True(t, logger.ContainsMessage("Training started"))
	assert.True(t, logger.ContainsMessage("Training completed"))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationFit))
	assert.True(t, logger.ContainsField(log.SamplesKey, float64(10)))
	assert.False(t, logger.ContainsMessage("Epoch completed"))

	logger.Clear()
	m.verbose = 1
	X, y = separable(10)
	require.NoError(t, m.Fit(X, y))
	assert.True(t, logger.ContainsMessage("Epoch completed"))
}

func TestFitDivergenceReported(t *testing.T) {
	m := newTestASGD(t, 1, 0.1, 1e-4, 1, false)
	m.sgdWeights.SetVec(0, -1)
	X := mat.NewDense(2, 1, []float64{math.Inf(1), 1})
	y := mat.NewDense(2, 1, []float64{1, -1})

	err := m.Fit(X, y)
	require.Error(t, err)

	var numErr *asgdErrors.NumericalInstabilityError
	assert.True(t, asgdErrors.As(err, &numErr))
}
