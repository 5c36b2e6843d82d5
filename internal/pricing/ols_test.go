package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFitOLSRecoversExactRelationship(t *testing.T) {
	x := mat.NewDense(6, 2, []float64{
		1, 2.5,
		2, 1.8,
		3, 4.2,
		4, 3.1,
		5, 6.0,
		6, 4.9,
	})
	y := make([]float64, 6)
	for i := range y {
		y[i] = 2*x.At(i, 0) + 3*x.At(i, 1) + 5
	}

	coef, intercept, err := fitOLS(x, y)
	require.NoError(t, err)
	require.Len(t, coef, 2)
	assert.InDelta(t, 2.0, coef[0], 1e-9)
	assert.InDelta(t, 3.0, coef[1], 1e-9)
	assert.InDelta(t, 5.0, intercept, 1e-9)
}

func TestFitOLSMinimumNormOnDuplicatedColumns(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	y := []float64{4, 8, 12, 16}

	coef, intercept, err := fitOLS(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, coef[0], 1e-9)
	assert.InDelta(t, 2.0, coef[1], 1e-9)
	assert.InDelta(t, 0.0, intercept, 1e-9)
}

func TestFitOLSSingleRow(t *testing.T) {
	x := mat.NewDense(1, 3, []float64{1, 2, 3})

	coef, intercept, err := fitOLS(x, []float64{42})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, coef)
	assert.Equal(t, 42.0, intercept)
}

func TestFitOLSLeastSquaresResidual(t *testing.T) {
	// y = x + noise, the best fit line through (0,0) (1,2) (2,2) (3,4)
	x := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := []float64{0, 2, 2, 4}

	coef, intercept, err := fitOLS(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.2, coef[0], 1e-9)
	assert.InDelta(t, 0.2, intercept, 1e-9)
}

func TestFitOLSMismatchedTarget(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 2})

	_, _, err := fitOLS(x, []float64{1})
	assert.Error(t, err)
}
