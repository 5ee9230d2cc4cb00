package mat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewPenalizedBand(t *testing.T) {
	testData := map[string]struct {
		w        []float64
		lambda   float64
		expected [][]float64
		err      error
	}{
		"no weights": {
			err: ErrEmptyWeights,
		},
		"single point": {
			w:        []float64{1},
			lambda:   10,
			expected: [][]float64{{1}},
		},
		"two points": {
			w:        []float64{1, 0},
			lambda:   10,
			expected: [][]float64{{1, 0}, {0, 0}},
		},
		"five points": {
			w:      []float64{1, 0, 1, 1, 0},
			lambda: 2,
			expected: [][]float64{
				{3, -4, 2, 0, 0},
				{-4, 10, -8, 2, 0},
				{2, -8, 13, -8, 2},
				{0, 2, -8, 11, -4},
				{0, 0, 2, -4, 2},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			a, err := NewPenalizedBand(td.w, td.lambda)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)

			expected, err := NewDenseFromArray(td.expected)
			require.Nil(t, err)
			assert.True(t, mat.Equal(expected, a), "penalized system\n%v", mat.Formatted(a))
		})
	}
}

func TestPenalizedBandSolvesLinear(t *testing.T) {
	// a straight line is in the null space of D so it is reproduced exactly
	w := []float64{1, 0, 0, 1, 0, 0, 1}
	y := []float64{1, 0, 0, 4, 0, 0, 7}

	a, err := NewPenalizedBand(w, 1000)
	require.Nil(t, err)

	var chol mat.BandCholesky
	require.True(t, chol.Factorize(a))

	b := make([]float64, len(y))
	for i := range y {
		b[i] = w[i] * y[i]
	}
	var z mat.VecDense
	_ = chol.SolveVecTo(&z, mat.NewVecDense(len(b), b))

	for i := 0; i < len(y); i++ {
		assert.InDelta(t, float64(i+1), z.AtVec(i), 1e-8)
	}
	assert.InDelta(t, 0.0, SecondDiffNorm(z.RawVector().Data), 1e-12)
}

func TestBandInverseDiag(t *testing.T) {
	testData := map[string]struct {
		w      []float64
		lambda float64
	}{
		"single point":    {[]float64{2}, 10},
		"two points":      {[]float64{1, 1}, 10},
		"gaps":            {[]float64{1, 0, 1, 1, 0, 0, 1}, 3},
		"heavy smoothing": {[]float64{1, 1, 0, 1, 0, 1, 1, 1, 0, 1}, 1e4},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			a, err := NewPenalizedBand(td.w, td.lambda)
			require.Nil(t, err)

			n := len(td.w)
			var inv mat.Dense
			require.Nil(t, inv.Inverse(mat.DenseCopyOf(a)))
			expected := make([]float64, n)
			for i := range expected {
				expected[i] = inv.At(i, i)
			}

			diag, err := BandInverseDiag(a)
			require.Nil(t, err)
			assert.InDeltaSlice(t, expected, diag, 1e-8*(1+td.lambda))
		})
	}
}

func TestBandInverseDiagNotPosDef(t *testing.T) {
	a, err := NewPenalizedBand([]float64{0, 0, 0, 0}, 1)
	require.Nil(t, err)
	_, err = BandInverseDiag(a)
	assert.ErrorIs(t, err, ErrNotPosDefBand)
}
