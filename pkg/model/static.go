package model

import (
	"fmt"
	"math"
)

// Static is a Fitted built from explicit numbers. It adapts models fitted by
// external tools (Cox, conditional logistic, anything that can export its
// coefficient table and covariance matrix) and serves as the fixture type in
// tests. A Static has no dataset, so it can never be refit.
type Static struct {
	kind  Kind
	spec  Spec
	names []string
	index map[string]int
	coef  []float64
	se    []float64
	p     []float64
	cov   [][]float64
}

// NewStatic builds a Static model. cov must be a symmetric len(names) square
// matrix. se may be nil, in which case standard errors are recovered from the
// covariance diagonal. p may be nil when p-values are unavailable; lookups
// then report ok=false.
func NewStatic(kind Kind, spec Spec, names []string, coef []float64, cov [][]float64, se, p []float64) (*Static, error) {
	n := len(names)
	if len(coef) != n {
		return nil, fmt.Errorf("static: %d coefficients for %d names", len(coef), n)
	}
	if len(cov) != n {
		return nil, fmt.Errorf("static: covariance has %d rows, want %d", len(cov), n)
	}
	for i := range cov {
		if len(cov[i]) != n {
			return nil, fmt.Errorf("static: covariance row %d has %d entries, want %d", i, len(cov[i]), n)
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(cov[i][j]-cov[j][i]) > 1e-12*math.Max(1, math.Abs(cov[i][j])) {
				return nil, fmt.Errorf("static: covariance not symmetric at (%s, %s)", names[i], names[j])
			}
		}
	}
	if se != nil && len(se) != n {
		return nil, fmt.Errorf("static: %d standard errors for %d names", len(se), n)
	}
	if p != nil && len(p) != n {
		return nil, fmt.Errorf("static: %d p-values for %d names", len(p), n)
	}
	if se == nil {
		se = make([]float64, n)
		for i := range se {
			if cov[i][i] < 0 {
				return nil, fmt.Errorf("static: negative variance for %s", names[i])
			}
			se[i] = math.Sqrt(cov[i][i])
		}
	}
	idx := make(map[string]int, n)
	for i, name := range names {
		if _, dup := idx[name]; dup {
			return nil, fmt.Errorf("static: duplicate coefficient name %q", name)
		}
		idx[name] = i
	}
	s := &Static{
		kind:  kind,
		spec:  spec,
		names: append([]string(nil), names...),
		index: idx,
		coef:  append([]float64(nil), coef...),
		se:    append([]float64(nil), se...),
		cov:   make([][]float64, n),
	}
	for i := range cov {
		s.cov[i] = append([]float64(nil), cov[i]...)
	}
	if p != nil {
		s.p = append([]float64(nil), p...)
	}
	return s, nil
}

func (s *Static) Kind() Kind      { return s.kind }
func (s *Static) Spec() Spec      { return s.spec }
func (s *Static) Data() *Dataset  { return nil }
func (s *Static) Names() []string { return append([]string(nil), s.names...) }

func (s *Static) Coef(name string) (float64, bool) {
	i, ok := s.index[name]
	if !ok {
		return 0, false
	}
	return s.coef[i], true
}

func (s *Static) StdErr(name string) (float64, bool) {
	i, ok := s.index[name]
	if !ok {
		return 0, false
	}
	return s.se[i], true
}

func (s *Static) PValue(name string) (float64, bool) {
	i, ok := s.index[name]
	if !ok || s.p == nil {
		return 0, false
	}
	return s.p[i], true
}

func (s *Static) Cov(a, b string) (float64, bool) {
	i, ok := s.index[a]
	if !ok {
		return 0, false
	}
	j, ok := s.index[b]
	if !ok {
		return 0, false
	}
	return s.cov[i][j], true
}
