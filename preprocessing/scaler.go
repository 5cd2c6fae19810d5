// Package preprocessing provides feature scaling for the linear classifiers.
//
// Hinge-loss SGD is sensitive to feature scale: the step size schedule is
// shared by every coordinate, so features on very different ranges make the
// initial step size hard to pick. StandardScaler removes the mean and scales
// to unit variance, and can be fitted incrementally alongside PartialFit.
//
// Example usage:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(XTrain)
//	if err != nil {
//		log.Fatal(err)
//	}
//	XTestScaled, err := scaler.Transform(XTest)
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/asgd/core/model"
	asgdErrors "github.com/ezoic/asgd/pkg/errors"
)

// minScale replaces near-zero standard deviations so constant features do
// not divide by zero.
const minScale = 1e-8

// StandardScaler はデータを平均0、標準偏差1に変換する
type StandardScaler struct {
	state *model.StateManager

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差 (母集団)
	Scale []float64

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool

	// running sum of squared deviations per feature, used by PartialFit
	m2 []float64
}

// NewStandardScaler creates a scaler.
//
// Parameters:
//   - withMean: center each feature at zero
//   - withStd: scale each feature to unit variance
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// IsFitted reports whether statistics have been computed.
func (s *StandardScaler) IsFitted() bool { return s.state.IsFitted() }

// NSamplesSeen returns the number of rows the statistics were computed from.
func (s *StandardScaler) NSamplesSeen() int {
	_, n := s.state.GetDimensions()
	return n
}

// Fit computes the per-feature mean and population standard deviation of X,
// discarding any previous statistics.
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer asgdErrors.Recover(&err, "StandardScaler.Fit")

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return asgdErrors.Wrap(asgdErrors.ErrEmptyData, "StandardScaler.Fit")
	}

	s.state.Reset()
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	s.m2 = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean
		s.m2[j] = std * std * float64(r)
	}
	s.updateScale(r)

	s.state.Observe(c, r)
	s.state.SetFitted()
	return nil
}

// PartialFit folds X into the running statistics with Welford's update, so a
// scaler can follow a stream of batches.
func (s *StandardScaler) PartialFit(X mat.Matrix) (err error) {
	defer asgdErrors.Recover(&err, "StandardScaler.PartialFit")

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return asgdErrors.Wrap(asgdErrors.ErrEmptyData, "StandardScaler.PartialFit")
	}
	if !s.IsFitted() {
		return s.Fit(X)
	}
	nFeatures, seen := s.state.GetDimensions()
	if c != nFeatures {
		return asgdErrors.NewDimensionError("StandardScaler.PartialFit", nFeatures, c, 1)
	}

	n := seen
	for i := 0; i < r; i++ {
		n++
		for j := 0; j < c; j++ {
			x := X.At(i, j)
			delta := x - s.Mean[j]
			s.Mean[j] += delta / float64(n)
			s.m2[j] += delta * (x - s.Mean[j])
		}
	}
	s.updateScale(n)

	s.state.Observe(c, r)
	return nil
}

func (s *StandardScaler) updateScale(n int) {
	for j := range s.Scale {
		s.Scale[j] = math.Sqrt(s.m2[j] / float64(n))
		if s.Scale[j] < minScale {
			s.Scale[j] = 1
		}
	}
}

func (s *StandardScaler) offsets() (mean, scale func(j int) float64) {
	mean = func(int) float64 { return 0 }
	scale = func(int) float64 { return 1 }
	if s.WithMean {
		mean = func(j int) float64 { return s.Mean[j] }
	}
	if s.WithStd {
		scale = func(j int) float64 { return s.Scale[j] }
	}
	return mean, scale
}

// Transform returns (X - mean) / scale as a new matrix.
func (s *StandardScaler) Transform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer asgdErrors.Recover(&err, "StandardScaler.Transform")
	if !s.IsFitted() {
		return nil, asgdErrors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != len(s.Mean) {
		return nil, asgdErrors.NewDimensionError("StandardScaler.Transform", len(s.Mean), c, 1)
	}

	mean, scale := s.offsets()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - mean(j)) / scale(j)
	}, X)
	return result, nil
}

// FitTransform is Fit followed by Transform on the same data.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps scaled data back to the original units.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer asgdErrors.Recover(&err, "StandardScaler.InverseTransform")
	if !s.IsFitted() {
		return nil, asgdErrors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != len(s.Mean) {
		return nil, asgdErrors.NewDimensionError("StandardScaler.InverseTransform", len(s.Mean), c, 1)
	}

	mean, scale := s.offsets()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return v*scale(j) + mean(j)
	}, X)
	return result, nil
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, len(s.Mean))
}
