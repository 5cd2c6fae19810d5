// Package tensor provides the dense numeric buffer used for training data and
// the row shuffle applied between epochs.
//
// Buffers are always row-major: Row(i) returns the i-th example's features as
// one contiguous slice aliasing the buffer.
package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/asgd/pkg/errors"
)

// Tensor is a 2-D row-major buffer wrapping gonum/mat.Dense.
type Tensor struct {
	data *mat.Dense
}

// New creates a rows x cols tensor with every element set to fill.
func New(rows, cols int, fill float64) (*Tensor, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.NewValueError("tensor.New", "all dimensions must be positive")
	}
	data := make([]float64, rows*cols)
	if fill != 0 {
		for i := range data {
			data[i] = fill
		}
	}
	return &Tensor{data: mat.NewDense(rows, cols, data)}, nil
}

// NewTensor wraps data (row-major, len rows*cols) without copying.
func NewTensor(data []float64, rows, cols int) (*Tensor, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.NewValueError("NewTensor", "all dimensions must be positive")
	}
	if len(data) != rows*cols {
		return nil, errors.NewDimensionError("NewTensor", rows*cols, len(data), 0)
	}
	return &Tensor{data: mat.NewDense(rows, cols, data)}, nil
}

// Dims returns the number of rows and columns.
func (t *Tensor) Dims() (int, int) {
	return t.data.Dims()
}

// At returns the element at (i, j).
func (t *Tensor) At(i, j int) float64 {
	return t.data.At(i, j)
}

// Set sets the element at (i, j).
func (t *Tensor) Set(i, j int, v float64) {
	t.data.Set(i, j, v)
}

// T returns the transpose view so Tensor satisfies mat.Matrix.
func (t *Tensor) T() mat.Matrix {
	return t.data.T()
}

// Row returns a contiguous view of row i. Writes through the slice modify the tensor.
func (t *Tensor) Row(i int) []float64 {
	return t.data.RawRowView(i)
}

// RawRowView is Row under the name gonum uses, so a Tensor can be shuffled
// alongside *mat.Dense buffers.
func (t *Tensor) RawRowView(i int) []float64 {
	return t.data.RawRowView(i)
}

// Data は内部のmat.Denseへの参照を返す
func (t *Tensor) Data() *mat.Dense {
	return t.data
}

// Clone returns an independent deep copy.
func (t *Tensor) Clone() *Tensor {
	var newData mat.Dense
	newData.CloneFrom(t.data)
	return &Tensor{data: &newData}
}

// Slice returns rows [rowStart, rowEnd) as a tensor sharing storage with t.
func (t *Tensor) Slice(rowStart, rowEnd int) (*Tensor, error) {
	r, c := t.data.Dims()
	if rowStart < 0 || rowEnd > r {
		return nil, errors.Newf("slice indices out of bounds")
	}
	if rowStart >= rowEnd {
		return nil, errors.Newf("invalid slice range")
	}
	return &Tensor{data: t.data.Slice(rowStart, rowEnd, 0, c).(*mat.Dense)}, nil
}
