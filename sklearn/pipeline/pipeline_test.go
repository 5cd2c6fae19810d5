package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/asgd/core/model"
	"github.com/ezoic/asgd/pkg/errors"
	"github.com/ezoic/asgd/pkg/log"
	"github.com/ezoic/asgd/preprocessing"
	"github.com/ezoic/asgd/sklearn/linear_model"
)

// shiftedClusters returns two clusters on the diagonal, offset and stretched
// so the raw features are far from zero mean and unit variance.
func shiftedClusters(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		label := 1.0
		if i%2 == 1 {
			label = -1
		}
		jitter := float64(i%5) / 10
		X.Set(i, 0, 100+10*(label*2+jitter))
		X.Set(i, 1, -50+20*(label*2-jitter))
		y.Set(i, 0, label)
	}
	return X, y
}

func newClassifier(t *testing.T) *linear_model.BinaryASGD {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelError)
	clf, err := linear_model.NewBinaryASGD(2, 0.1, 1e-4, 5, false,
		linear_model.WithRandomState(42),
		linear_model.WithLogger(logger),
	)
	require.NoError(t, err)
	return clf
}

func TestPipelineFitPredict(t *testing.T) {
	scaler := preprocessing.NewStandardScalerDefault()
	clf := newClassifier(t)
	pipe := New(Step{Name: "scaler", Estimator: scaler}, Step{Name: "asgd", Estimator: clf})

	X, y := shiftedClusters(40)
	origX, origY := mat.DenseCopyOf(X), mat.DenseCopyOf(y)

	require.NoError(t, pipe.Fit(X, y))
	assert.True(t, pipe.IsFitted())
	assert.True(t, scaler.IsFitted())
	assert.Equal(t, int64(200), clf.NObservations())

	// the classifier shuffles its own copy
	assert.True(t, mat.Equal(origX, X))
	assert.True(t, mat.Equal(origY, y))

	acc, err := pipe.Score(X, y)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.95)

	pred, err := pipe.Predict(X)
	require.NoError(t, err)
	r, c := pred.Dims()
	assert.Equal(t, 40, r)
	assert.Equal(t, 1, c)

	scores, err := pipe.DecisionFunction(X)
	require.NoError(t, err)
	for i := 0; i < r; i++ {
		want := 1.0
		if scores.At(i, 0) < 0 {
			want = -1
		}
		assert.Equal(t, want, pred.At(i, 0), "row %d", i)
	}
}

func TestPipelineMatchesManualScaling(t *testing.T) {
	X, y := shiftedClusters(30)

	pipe := Make(preprocessing.NewStandardScalerDefault(), newClassifier(t))
	require.NoError(t, pipe.Fit(X, y))

	scaler := preprocessing.NewStandardScalerDefault()
	Xs, err := scaler.FitTransform(X)
	require.NoError(t, err)
	manual := newClassifier(t)
	require.NoError(t, manual.Fit(Xs, mat.DenseCopyOf(y)))

	fitted := pipe.NamedSteps()["step2"].(*linear_model.BinaryASGD)
	assert.Equal(t, manual.ASGDWeights(), fitted.ASGDWeights())
	assert.Equal(t, manual.ASGDBias(), fitted.ASGDBias())
}

func TestPipelineClassifierOnlyLeavesInputOrder(t *testing.T) {
	pipe := New(Step{Name: "asgd", Estimator: newClassifier(t)})
	X, y := shiftedClusters(20)
	origX := mat.DenseCopyOf(X)

	require.NoError(t, pipe.Fit(X, y))
	assert.True(t, mat.Equal(origX, X))
}

func TestPipelinePartialFitAndFitStream(t *testing.T) {
	scaler := preprocessing.NewStandardScalerDefault()
	clf := newClassifier(t)
	pipe := New(Step{Name: "scaler", Estimator: scaler}, Step{Name: "asgd", Estimator: clf})

	X, y := shiftedClusters(8)
	require.NoError(t, pipe.PartialFit(X, y))

	dataChan := make(chan *model.Batch, 2)
	for i := 0; i < 2; i++ {
		Xb, yb := shiftedClusters(8)
		dataChan <- &model.Batch{X: Xb, Y: yb}
	}
	close(dataChan)

	require.NoError(t, pipe.FitStream(context.Background(), dataChan))
	assert.Equal(t, int64(24), clf.NObservations())
	assert.Equal(t, 24, scaler.NSamplesSeen())
	assert.True(t, pipe.IsFitted())
	assert.Len(t, clf.LossHistory(), 3)
}

func TestPipelineNotFitted(t *testing.T) {
	pipe := Make(preprocessing.NewStandardScalerDefault(), newClassifier(t))
	X, y := shiftedClusters(4)

	_, err := pipe.Predict(X)
	assert.True(t, errors.Is(err, errors.ErrNotFitted))

	_, err = pipe.Score(X, y)
	assert.True(t, errors.Is(err, errors.ErrNotFitted))

	_, err = pipe.DecisionFunction(X)
	assert.True(t, errors.Is(err, errors.ErrNotFitted))
}

func TestPipelineInvalidSteps(t *testing.T) {
	X, y := shiftedClusters(4)

	tests := []struct {
		name string
		pipe *Pipeline
		call func(p *Pipeline) error
	}{
		{"no steps", New(), func(p *Pipeline) error { return p.Fit(X, y) }},
		{"classifier before scaler", Make(newClassifier(t), preprocessing.NewStandardScalerDefault()),
			func(p *Pipeline) error { return p.Fit(X, y) }},
		{"final step cannot learn incrementally", Make(preprocessing.NewStandardScalerDefault()),
			func(p *Pipeline) error { return p.PartialFit(X, y) }},
		{"nil labels", Make(newClassifier(t)), func(p *Pipeline) error { return p.Fit(X, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(tt.pipe)
			require.Error(t, err)

			var valErr *errors.ValueError
			assert.True(t, errors.As(err, &valErr))
			assert.False(t, tt.pipe.IsFitted())
		})
	}
}

func TestPipelineFitPropagatesStepErrors(t *testing.T) {
	pipe := Make(preprocessing.NewStandardScalerDefault(), newClassifier(t))

	// three features for a two-feature classifier
	err := pipe.Fit(mat.NewDense(4, 3, nil), mat.NewDense(4, 1, []float64{1, -1, 1, -1}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrShapeMismatch))
	assert.Contains(t, err.Error(), "step2")
}

func TestPipelineGetParams(t *testing.T) {
	pipe := New(
		Step{Name: "scaler", Estimator: preprocessing.NewStandardScaler(true, false)},
		Step{Name: "asgd", Estimator: newClassifier(t)},
	)

	params := pipe.GetParams()
	assert.Equal(t, false, params["verbose"])
	assert.Equal(t, true, params["scaler__with_mean"])
	assert.Equal(t, false, params["scaler__with_std"])
	assert.Equal(t, 2, params["asgd__n_features"])
	assert.Equal(t, 5, params["asgd__n_iterations"])

	steps := pipe.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "scaler", steps[0].Name)
}
