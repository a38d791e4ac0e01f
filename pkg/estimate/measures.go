package estimate

import (
	"fmt"
	"math"

	"synergy/pkg/model"
)

// engine carries everything the per-measure algebra needs: the (possibly
// refit) model, the resolved terms, the variance bundle and the critical
// value for the requested confidence level.
type engine struct {
	m model.Fitted
	t Terms
	b Bundle
	z float64

	b1, b2, b3 float64
}

func newEngine(m model.Fitted, t Terms, level float64) (*engine, error) {
	bundle, err := NewBundle(m, t)
	if err != nil {
		return nil, err
	}
	e := &engine{m: m, t: t, b: bundle, z: critValue(level)}
	var ok bool
	if e.b1, ok = m.Coef(t.Beta1); !ok {
		return nil, fmt.Errorf("estimate: coefficient %s missing from model", t.Beta1)
	}
	if e.b2, ok = m.Coef(t.Beta2); !ok {
		return nil, fmt.Errorf("estimate: coefficient %s missing from model", t.Beta2)
	}
	if e.b3, ok = m.Coef(t.Beta3); !ok {
		return nil, fmt.Errorf("estimate: coefficient %s missing from model", t.Beta3)
	}
	return e, nil
}

// or10, or01, or11 are the joint-stratum ratios relative to the 00 stratum,
// each with its Wald interval. or11 uses the derived three-way variance.
func (e *engine) or10() moverPoint {
	return moverPoint{est: math.Exp(e.b1), ci: ratioCI(e.b1, e.b.V1, e.z)}
}

func (e *engine) or01() moverPoint {
	return moverPoint{est: math.Exp(e.b2), ci: ratioCI(e.b2, e.b.V2, e.z)}
}

func (e *engine) or11() moverPoint {
	s := e.b1 + e.b2 + e.b3
	return moverPoint{est: math.Exp(s), ci: ratioCI(s, e.b.V123, e.z)}
}

// condRatio is a stratum-conditional ratio exp(base+inter) with combination
// variance v, plus its approximate p-value.
func (e *engine) condRatio(base float64, v float64) (moverPoint, float64) {
	s := base + e.b3
	p := tailP(math.Abs(s) / math.Sqrt(v))
	return moverPoint{est: math.Exp(s), ci: ratioCI(s, v, e.z)}, p
}

// multiplicative is the ratio of ratios exp(beta3) with the model's own
// interval and p-value for the interaction coefficient.
func (e *engine) multiplicative() (moverPoint, float64, bool) {
	p, hasP := e.m.PValue(e.t.Beta3)
	return moverPoint{est: math.Exp(e.b3), ci: ratioCI(e.b3, e.b.V3, e.z)}, p, hasP
}

// or11P is the approximate p-value for the three-coefficient combination.
func (e *engine) or11P() float64 {
	return tailP(math.Abs(e.b1+e.b2+e.b3) / math.Sqrt(e.b.V123))
}

// reri computes the relative excess risk due to interaction,
// OR11 - OR10 - OR01 + 1, with its MOVER interval. The component
// correlations are those of the log-ratio estimators:
// corr(b1+b2+b3, b1), corr(b1+b2+b3, b2) and corr(b1, b2).
func (e *engine) reri() (float64, ci, error) {
	b := e.b
	p1, p2, p3 := e.or11(), e.or10(), e.or01()
	r12 := (b.V1 + b.Cov12 + b.Cov13) / math.Sqrt(b.V123*b.V1)
	r13 := (b.Cov12 + b.V2 + b.Cov23) / math.Sqrt(b.V123*b.V2)
	r23 := b.Cov12 / math.Sqrt(b.V1*b.V2)
	iv, err := moverDiff3(1, p1, p2, p3, r12, r13, r23)
	if err != nil {
		return 0, ci{}, err
	}
	return p1.est - p2.est - p3.est + 1, iv, nil
}

// ap computes the attributable proportion due to interaction on the
// inverse-ratio scale: theta1 - theta2 - theta3 + 1 with theta1 = 1/OR11,
// theta2 = 1/OR(B|A=1), theta3 = 1/OR(A|B=1). Each theta carries a log-normal
// interval theta*exp(-/+z*sqrt(v)); the correlations are those of the negated
// log combinations.
func (e *engine) ap() (float64, ci, error) {
	b := e.b
	s123 := e.b1 + e.b2 + e.b3

	t1 := moverPoint{est: math.Exp(-s123), ci: thetaCI(-s123, b.V123, e.z)}
	t2 := moverPoint{est: math.Exp(-(e.b2 + e.b3)), ci: thetaCI(-(e.b2 + e.b3), b.V23, e.z)}
	t3 := moverPoint{est: math.Exp(-(e.b1 + e.b3)), ci: thetaCI(-(e.b1 + e.b3), b.V13, e.z)}

	r12 := (b.Cov12 + b.Cov13 + b.V2 + 2*b.Cov23 + b.V3) / math.Sqrt(b.V123*b.V23)
	r13 := (b.V1 + b.Cov12 + 2*b.Cov13 + b.Cov23 + b.V3) / math.Sqrt(b.V123*b.V13)
	r23 := (b.Cov12 + b.Cov13 + b.Cov23 + b.V3) / math.Sqrt(b.V23*b.V13)

	iv, err := moverDiff3(1, t1, t2, t3, r12, r13, r23)
	if err != nil {
		return 0, ci{}, err
	}
	return t1.est - t2.est - t3.est + 1, iv, nil
}

// thetaCI is the log-normal interval exp(b -/+ z*sqrt(v)) scaled to theta.
func thetaCI(b, v, z float64) ci {
	return ratioCI(b, v, z)
}

// si computes the synergy index (OR11 - 1) / (OR10 + OR01 - 2). The MOVER
// combination runs on the log scale: ln(OR11-1) takes its interval from the
// shifted OR11 Wald bounds; ln(OR10+OR01-2) from a two-component MOVER sum
// interval shifted by 2; the correlation between the two log components is
// the delta-method correlation under the coefficient covariance. Bounds are
// exponentiated back.
func (e *engine) si() (float64, ci, error) {
	b := e.b
	p1, p2, p3 := e.or11(), e.or10(), e.or01()

	r23 := b.Cov12 / math.Sqrt(b.V1*b.V2)
	sum, err := moverSum2(p2, p3, r23)
	if err != nil {
		return 0, ci{}, err
	}

	num := p1.est - 1
	den := p2.est + p3.est - 2
	for _, arg := range []struct {
		name string
		val  float64
	}{
		{"OR11 - 1", num},
		{"OR10 + OR01 - 2", den},
		{"lower(OR11) - 1", p1.ci.lower - 1},
		{"upper(OR11) - 1", p1.ci.upper - 1},
		{"lower(OR10 + OR01) - 2", sum.lower - 2},
		{"upper(OR10 + OR01) - 2", sum.upper - 2},
	} {
		if !(arg.val > 0) {
			return 0, ci{}, fmt.Errorf("%w: synergy index log argument %s = %g", ErrInvalidVariance, arg.name, arg.val)
		}
	}

	th1 := moverPoint{est: math.Log(num), ci: ci{lower: math.Log(p1.ci.lower - 1), upper: math.Log(p1.ci.upper - 1)}}
	th2 := moverPoint{est: math.Log(den), ci: ci{lower: math.Log(sum.lower - 2), upper: math.Log(sum.upper - 2)}}

	cb1 := b.V1 + b.Cov12 + b.Cov13 // cov(b1+b2+b3, b1)
	cb2 := b.Cov12 + b.V2 + b.Cov23 // cov(b1+b2+b3, b2)
	denVar := p2.est*p2.est*b.V1 + p3.est*p3.est*b.V2 + 2*p2.est*p3.est*b.Cov12
	if !(denVar > 0) {
		return 0, ci{}, fmt.Errorf("%w: synergy index denominator variance = %g", ErrInvalidVariance, denVar)
	}
	r := (p2.est*cb1 + p3.est*cb2) / math.Sqrt(b.V123*denVar)

	iv, err := moverDiff2(th1, th2, r)
	if err != nil {
		return 0, ci{}, err
	}
	return math.Exp(th1.est - th2.est), ci{lower: math.Exp(iv.lower), upper: math.Exp(iv.upper)}, nil
}
