package fit

import (
	"gonum.org/v1/gonum/mat"

	"synergy/pkg/model"
)

// Model is a fitted logistic regression. It satisfies model.Fitted.
type Model struct {
	spec   model.Spec
	data   *model.Dataset
	names  []string
	index  map[string]int
	coef   []float64
	se     []float64
	p      []float64
	cov    *mat.Dense
	loglik float64
}

func (m *Model) Kind() model.Kind     { return model.Logistic }
func (m *Model) Spec() model.Spec     { return m.spec }
func (m *Model) Data() *model.Dataset { return m.data }

// LogLik returns the maximized log-likelihood.
func (m *Model) LogLik() float64 { return m.loglik }

func (m *Model) Names() []string {
	return append([]string(nil), m.names...)
}

func (m *Model) Coef(name string) (float64, bool) {
	i, ok := m.index[name]
	if !ok {
		return 0, false
	}
	return m.coef[i], true
}

func (m *Model) StdErr(name string) (float64, bool) {
	i, ok := m.index[name]
	if !ok {
		return 0, false
	}
	return m.se[i], true
}

func (m *Model) PValue(name string) (float64, bool) {
	i, ok := m.index[name]
	if !ok {
		return 0, false
	}
	return m.p[i], true
}

func (m *Model) Cov(a, b string) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		return 0, false
	}
	return m.cov.At(i, j), true
}
