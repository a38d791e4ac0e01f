package estimate

import (
	"fmt"
	"math"

	"synergy/pkg/model"
)

// Bundle holds the variance/covariance algebra shared by every measure:
// individual variances of the three coefficients, their pairwise covariances,
// and the variances of the two- and three-coefficient linear combinations.
//
// The combination entries satisfy v_xy = v_x + v_y + 2*cov_xy and
// v123 = v1 + v2 + v3 + 2*(cov12 + cov13 + cov23) exactly.
type Bundle struct {
	V1, V2, V3          float64
	Cov12, Cov13, Cov23 float64
	V12, V13, V23       float64
	V123                float64
}

// NewBundle extracts the bundle for the resolved terms from a fitted model.
// Standard errors are squared for the individual variances; covariances come
// straight from the model's covariance matrix. Every entry is validated:
// individual and combination variances must be positive and finite.
func NewBundle(m model.Fitted, t Terms) (Bundle, error) {
	se1, ok := m.StdErr(t.Beta1)
	if !ok {
		return Bundle{}, fmt.Errorf("%w: no standard error for %s", ErrInvalidVariance, t.Beta1)
	}
	se2, ok := m.StdErr(t.Beta2)
	if !ok {
		return Bundle{}, fmt.Errorf("%w: no standard error for %s", ErrInvalidVariance, t.Beta2)
	}
	se3, ok := m.StdErr(t.Beta3)
	if !ok {
		return Bundle{}, fmt.Errorf("%w: no standard error for %s", ErrInvalidVariance, t.Beta3)
	}

	b := Bundle{V1: se1 * se1, V2: se2 * se2, V3: se3 * se3}

	var err error
	if b.Cov12, err = covEntry(m, t.Beta1, t.Beta2); err != nil {
		return Bundle{}, err
	}
	if b.Cov13, err = covEntry(m, t.Beta1, t.Beta3); err != nil {
		return Bundle{}, err
	}
	if b.Cov23, err = covEntry(m, t.Beta2, t.Beta3); err != nil {
		return Bundle{}, err
	}

	b.V12 = b.V1 + b.V2 + 2*b.Cov12
	b.V13 = b.V1 + b.V3 + 2*b.Cov13
	b.V23 = b.V2 + b.V3 + 2*b.Cov23
	b.V123 = b.V1 + b.V2 + b.V3 + 2*(b.Cov12+b.Cov13+b.Cov23)

	for _, v := range []struct {
		name string
		val  float64
	}{
		{"v1", b.V1}, {"v2", b.V2}, {"v3", b.V3},
		{"v12", b.V12}, {"v13", b.V13}, {"v23", b.V23}, {"v123", b.V123},
	} {
		if !(v.val > 0) || math.IsInf(v.val, 0) {
			return Bundle{}, fmt.Errorf("%w: %s = %g", ErrInvalidVariance, v.name, v.val)
		}
	}
	return b, nil
}

func covEntry(m model.Fitted, a, b string) (float64, error) {
	c, ok := m.Cov(a, b)
	if !ok {
		return 0, fmt.Errorf("%w: covariance (%s, %s) missing", ErrInvalidVariance, a, b)
	}
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, fmt.Errorf("%w: covariance (%s, %s) = %g", ErrInvalidVariance, a, b, c)
	}
	return c, nil
}
