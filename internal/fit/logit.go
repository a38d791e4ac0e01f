// Package fit provides the logistic-regression collaborator: a weighted IRLS
// fitter producing a model.Fitted handle and implementing model.Refitter for
// the recode path. Other model families (Cox, conditional logistic) are
// fitted externally and enter the engine through model.Static.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"synergy/pkg/model"
)

var (
	// ErrNotConverged is returned when IRLS fails to converge within MaxIter.
	ErrNotConverged = errors.New("fit: IRLS did not converge")

	// ErrSingular is returned when the weighted normal equations are singular.
	ErrSingular = errors.New("fit: singular information matrix")
)

const (
	defaultMaxIter = 50
	defaultTol     = 1e-10
	probFloor      = 1e-12
)

// Logit fits unconditional logistic regressions by iteratively reweighted
// least squares. The zero value uses the default iteration cap and tolerance.
type Logit struct {
	MaxIter int
	Tol     float64
}

// Refit satisfies model.Refitter.
func (l *Logit) Refit(spec model.Spec, data *model.Dataset) (model.Fitted, error) {
	return l.Fit(spec, data)
}

// Fit fits the model described by spec against data. The design matrix is an
// intercept, the two exposure main effects, any covariates, and the exposure
// product term, in that order. Coefficients are named by their column, the
// product term as "exposure1:exposure2".
func (l *Logit) Fit(spec model.Spec, data *model.Dataset) (*Model, error) {
	if spec.Kind != model.Logistic {
		return nil, fmt.Errorf("fit: kind %s not supported by the IRLS fitter", spec.Kind)
	}
	maxIter := l.MaxIter
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}
	tol := l.Tol
	if tol <= 0 {
		tol = defaultTol
	}

	y, ok := data.Column(spec.Outcome)
	if !ok {
		return nil, fmt.Errorf("fit: outcome column %q missing", spec.Outcome)
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("fit: outcome %q row %d = %g, want 0 or 1", spec.Outcome, i, v)
		}
	}

	wt := make([]float64, len(y))
	for i := range wt {
		wt[i] = 1
	}
	if spec.Weights != "" {
		wcol, ok := data.Column(spec.Weights)
		if !ok {
			return nil, fmt.Errorf("fit: weight column %q missing", spec.Weights)
		}
		for i, w := range wcol {
			if w <= 0 {
				return nil, fmt.Errorf("fit: weight row %d = %g, want > 0", i, w)
			}
			wt[i] = w
		}
	}

	names := append([]string{"(Intercept)", spec.Exposure1, spec.Exposure2}, spec.Covariates...)
	names = append(names, spec.Exposure1+":"+spec.Exposure2)
	p := len(names)

	x1, ok := data.Column(spec.Exposure1)
	if !ok {
		return nil, fmt.Errorf("fit: exposure column %q missing", spec.Exposure1)
	}
	x2, ok := data.Column(spec.Exposure2)
	if !ok {
		return nil, fmt.Errorf("fit: exposure column %q missing", spec.Exposure2)
	}
	covCols := make([][]float64, len(spec.Covariates))
	for i, c := range spec.Covariates {
		col, ok := data.Column(c)
		if !ok {
			return nil, fmt.Errorf("fit: covariate column %q missing", c)
		}
		covCols[i] = col
	}

	n := data.Len()
	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		X.Set(i, 1, x1[i])
		X.Set(i, 2, x2[i])
		for j, col := range covCols {
			X.Set(i, 3+j, col[i])
		}
		X.Set(i, p-1, x1[i]*x2[i])
	}

	beta := make([]float64, p)
	mu := make([]float64, n)
	loglik := math.Inf(-1)

	var cov mat.Dense
	converged := false
	for iter := 0; iter < maxIter; iter++ {
		for i := 0; i < n; i++ {
			eta := 0.0
			for j := 0; j < p; j++ {
				eta += X.At(i, j) * beta[j]
			}
			mu[i] = clampProb(1 / (1 + math.Exp(-eta)))
		}

		info := mat.NewDense(p, p, nil)
		score := make([]float64, p)
		for i := 0; i < n; i++ {
			w := wt[i] * mu[i] * (1 - mu[i])
			r := wt[i] * (y[i] - mu[i])
			for j := 0; j < p; j++ {
				xij := X.At(i, j)
				score[j] += xij * r
				for k := j; k < p; k++ {
					info.Set(j, k, info.At(j, k)+w*xij*X.At(i, k))
				}
			}
		}
		for j := 0; j < p; j++ {
			for k := 0; k < j; k++ {
				info.Set(j, k, info.At(k, j))
			}
		}

		if err := cov.Inverse(info); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
		for j := 0; j < p; j++ {
			step := 0.0
			for k := 0; k < p; k++ {
				step += cov.At(j, k) * score[k]
			}
			beta[j] += step
		}

		ll := 0.0
		for i := 0; i < n; i++ {
			eta := 0.0
			for j := 0; j < p; j++ {
				eta += X.At(i, j) * beta[j]
			}
			m := clampProb(1 / (1 + math.Exp(-eta)))
			ll += wt[i] * (y[i]*math.Log(m) + (1-y[i])*math.Log(1-m))
		}
		if math.Abs(ll-loglik) < tol*(math.Abs(ll)+0.1) {
			loglik = ll
			converged = true
			break
		}
		loglik = ll
	}
	if !converged {
		return nil, fmt.Errorf("%w after %d iterations", ErrNotConverged, maxIter)
	}

	// Final information matrix at the converged estimates.
	for i := 0; i < n; i++ {
		eta := 0.0
		for j := 0; j < p; j++ {
			eta += X.At(i, j) * beta[j]
		}
		mu[i] = clampProb(1 / (1 + math.Exp(-eta)))
	}
	info := mat.NewDense(p, p, nil)
	for i := 0; i < n; i++ {
		w := wt[i] * mu[i] * (1 - mu[i])
		for j := 0; j < p; j++ {
			for k := j; k < p; k++ {
				info.Set(j, k, info.At(j, k)+w*X.At(i, j)*X.At(i, k))
			}
		}
	}
	for j := 0; j < p; j++ {
		for k := 0; k < j; k++ {
			info.Set(j, k, info.At(k, j))
		}
	}
	if err := cov.Inverse(info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	se := make([]float64, p)
	pvals := make([]float64, p)
	for j := 0; j < p; j++ {
		v := cov.At(j, j)
		if v <= 0 {
			return nil, fmt.Errorf("%w: variance %g for %s", ErrSingular, v, names[j])
		}
		se[j] = math.Sqrt(v)
		pvals[j] = 2 * normal.Survival(math.Abs(beta[j])/se[j])
	}

	idx := make(map[string]int, p)
	for j, name := range names {
		idx[name] = j
	}
	return &Model{
		spec:   spec,
		data:   data,
		names:  names,
		index:  idx,
		coef:   beta,
		se:     se,
		p:      pvals,
		cov:    &cov,
		loglik: loglik,
	}, nil
}

func clampProb(p float64) float64 {
	if p < probFloor {
		return probFloor
	}
	if p > 1-probFloor {
		return 1 - probFloor
	}
	return p
}
