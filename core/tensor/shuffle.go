package tensor

import (
	"github.com/ezoic/asgd/pkg/errors"
)

// Source draws uniform integers in [0, n). *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// RowViewer is a row-major buffer whose rows can be viewed contiguously.
// *mat.Dense and *Tensor both satisfy it.
type RowViewer interface {
	Dims() (r, c int)
	RawRowView(i int) []float64
}

// ShuffleRows permutes the rows of every buffer in place with one shared
// Durstenfeld permutation, so row i of each buffer still refers to the same
// example afterwards. The returned slice maps new row positions to the
// original row indices: after the call, row i came from row perm[i].
func ShuffleRows(src Source, ms ...RowViewer) ([]int, error) {
	if len(ms) == 0 {
		return nil, errors.NewValueError("ShuffleRows", "no buffers to shuffle")
	}
	n, _ := ms[0].Dims()
	for _, m := range ms[1:] {
		if r, _ := m.Dims(); r != n {
			return nil, errors.NewDimensionError("ShuffleRows", n, r, 0)
		}
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		if i == j {
			continue
		}
		for _, m := range ms {
			swapRows(m, i, j)
		}
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm, nil
}

func swapRows(m RowViewer, i, j int) {
	a, b := m.RawRowView(i), m.RawRowView(j)
	for k := range a {
		a[k], b[k] = b[k], a[k]
	}
}
