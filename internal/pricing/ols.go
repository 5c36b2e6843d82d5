package pricing

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var errFactorization = errors.New("singular value decomposition failed")

// machineEpsilon scaled by max(n, p) is the relative cut-off below which
// singular values are treated as zero.
const machineEpsilon = 2.220446049250313e-16

// fitOLS fits y ≈ X·coef + intercept by ordinary least squares.
//
// X and y are centred first so the intercept drops out of the solve. The
// centred system is solved through the SVD, which returns the minimum-norm
// solution when X is rank deficient: one-hot indicators always sum to one,
// and the target column may also appear among the features.
func fitOLS(x mat.Matrix, y []float64) (coef []float64, intercept float64, err error) {
	n, p := x.Dims()
	if n == 0 {
		return nil, 0, ErrNoTrainingRows
	}
	if len(y) != n {
		return nil, 0, fmt.Errorf("target has %d values, design matrix has %d rows", len(y), n)
	}

	xMean := make([]float64, p)
	for j := range xMean {
		xMean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	yMean := stat.Mean(y, nil)

	centered := mat.NewDense(n, p, nil)
	centered.Apply(func(_, j int, v float64) float64 {
		return v - xMean[j]
	}, x)

	yc := make([]float64, n)
	copy(yc, y)
	floats.AddConst(-yMean, yc)
	target := mat.NewDense(n, 1, yc)

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, 0, errFactorization
	}

	coef = make([]float64, p)
	if rank := svd.Rank(machineEpsilon * float64(max(n, p))); rank > 0 {
		var beta mat.Dense
		svd.SolveTo(&beta, target, rank)
		mat.Col(coef, 0, &beta)
	}

	intercept = yMean - floats.Dot(xMean, coef)
	return coef, intercept, nil
}
