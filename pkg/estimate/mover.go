package estimate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// critValue returns the two-sided critical value z for confidence level c:
// the (1 - (1-c)/2) quantile of the standard normal.
func critValue(level float64) float64 {
	return stdNormal.Quantile(1 - (1-level)/2)
}

// tailP approximates the two-sided normal tail probability for the statistic
// q = |estimate| / sqrt(variance):
//
//	p = exp(-0.717q - 0.416q^2)
//
// This closed form stands in for the exact CDF where no model p-value exists
// for a linear combination of coefficients. It is an approximation; its error
// stays below 2e-2 in absolute terms over the usable range of q.
func tailP(q float64) float64 {
	return math.Exp(-0.717*q - 0.416*q*q)
}

// ci is a two-sided confidence interval.
type ci struct {
	lower, upper float64
}

// ratioCI is the Wald interval for an exponentiated linear combination with
// estimate b (log scale) and variance v: exp(b -/+ z*sqrt(v)).
func ratioCI(b, v, z float64) ci {
	h := z * math.Sqrt(v)
	return ci{lower: math.Exp(b - h), upper: math.Exp(b + h)}
}

// moverPoint is one component estimator entering a MOVER combination: its
// point estimate on the combination scale and its own two-sided interval.
type moverPoint struct {
	est float64
	ci  ci
}

// moverDiff3 combines three correlated component estimators into an interval
// for shift + p1 - p2 - p3 (Zou 2008, extended to three components). r12 and
// r13 correlate the leading component with each subtracted one, r23 the two
// subtracted components with each other. Signs follow the measure direction:
// a subtracted component contributes its upper bound to the lower limit and
// its lower bound to the upper limit.
func moverDiff3(shift float64, p1, p2, p3 moverPoint, r12, r13, r23 float64) (ci, error) {
	point := shift + p1.est - p2.est - p3.est

	lrad := sq(p1.est-p1.ci.lower) + sq(p2.ci.upper-p2.est) + sq(p3.ci.upper-p3.est) -
		2*r12*(p1.est-p1.ci.lower)*(p2.ci.upper-p2.est) -
		2*r13*(p1.est-p1.ci.lower)*(p3.ci.upper-p3.est) +
		2*r23*(p2.ci.upper-p2.est)*(p3.ci.upper-p3.est)
	urad := sq(p1.ci.upper-p1.est) + sq(p2.est-p2.ci.lower) + sq(p3.est-p3.ci.lower) -
		2*r12*(p1.ci.upper-p1.est)*(p2.est-p2.ci.lower) -
		2*r13*(p1.ci.upper-p1.est)*(p3.est-p3.ci.lower) +
		2*r23*(p2.est-p2.ci.lower)*(p3.est-p3.ci.lower)
	if lrad < 0 || urad < 0 {
		return ci{}, fmt.Errorf("%w: negative MOVER radicand (%g, %g)", ErrInvalidVariance, lrad, urad)
	}
	return ci{lower: point - math.Sqrt(lrad), upper: point + math.Sqrt(urad)}, nil
}

// moverSum2 combines two correlated component estimators into an interval for
// p1 + p2. Both components keep their own bound orientation; positive
// correlation widens the interval, matching var(x+y) = v_x + v_y + 2cov.
func moverSum2(p1, p2 moverPoint, r float64) (ci, error) {
	point := p1.est + p2.est
	lrad := sq(p1.est-p1.ci.lower) + sq(p2.est-p2.ci.lower) +
		2*r*(p1.est-p1.ci.lower)*(p2.est-p2.ci.lower)
	urad := sq(p1.ci.upper-p1.est) + sq(p2.ci.upper-p2.est) +
		2*r*(p1.ci.upper-p1.est)*(p2.ci.upper-p2.est)
	if lrad < 0 || urad < 0 {
		return ci{}, fmt.Errorf("%w: negative MOVER radicand (%g, %g)", ErrInvalidVariance, lrad, urad)
	}
	return ci{lower: point - math.Sqrt(lrad), upper: point + math.Sqrt(urad)}, nil
}

// moverDiff2 combines two correlated component estimators into an interval
// for p1 - p2 (used on the log scale for the synergy index).
func moverDiff2(p1, p2 moverPoint, r float64) (ci, error) {
	point := p1.est - p2.est
	lrad := sq(p1.est-p1.ci.lower) + sq(p2.ci.upper-p2.est) -
		2*r*(p1.est-p1.ci.lower)*(p2.ci.upper-p2.est)
	urad := sq(p1.ci.upper-p1.est) + sq(p2.est-p2.ci.lower) -
		2*r*(p1.ci.upper-p1.est)*(p2.est-p2.ci.lower)
	if lrad < 0 || urad < 0 {
		return ci{}, fmt.Errorf("%w: negative MOVER radicand (%g, %g)", ErrInvalidVariance, lrad, urad)
	}
	return ci{lower: point - math.Sqrt(lrad), upper: point + math.Sqrt(urad)}, nil
}

func sq(x float64) float64 { return x * x }
