// Package estimate computes interaction and effect-modification measures for
// two binary exposures from a fitted regression model.
//
// A single call to Run turns the model's coefficients, standard errors and
// covariance matrix into a table of joint-stratum ratios, stratum-conditional
// ratios, the multiplicative interaction ratio, and the additive-scale
// measures RERI, AP and SI, the latter three with MOVER confidence intervals
// (Zou 2008) derived in closed form from the coefficient covariance.
package estimate

import (
	"fmt"
	"math"

	"synergy/internal/logging"
	"synergy/pkg/model"
)

// Options configures a single estimation run.
type Options struct {
	// Exposure1 and Exposure2 are name fragments matched case-insensitively
	// against the model's coefficient names.
	Exposure1 string
	Exposure2 string
	// CILevel is the two-sided confidence level, in (0, 1).
	CILevel float64
	// EM selects the effect-modification framing (8 rows); false selects the
	// interaction framing (12 rows).
	EM bool
	// Recode requests reference-category recoding when an exposure is
	// preventive. Requires a Refitter and a model with data.
	Recode bool
	// Refitter refits the model after recoding. Only consulted on recode.
	Refitter model.Refitter
}

func (o Options) validate() error {
	if o.Exposure1 == "" || o.Exposure2 == "" {
		return fmt.Errorf("estimate: both exposure fragments are required")
	}
	if !(o.CILevel > 0 && o.CILevel < 1) {
		return fmt.Errorf("estimate: confidence level %g outside (0, 1)", o.CILevel)
	}
	return nil
}

// MeasureRow is one reportable line of the output table. HasCI and HasP
// distinguish genuine zeros from not-applicable entries (the reference row
// has neither; RERI, AP and SI carry an interval but no p-value).
type MeasureRow struct {
	Label    string
	Estimate float64
	Lower    float64
	Upper    float64
	P        float64
	HasCI    bool
	HasP     bool
}

// WarningKind classifies non-fatal findings surfaced on the result.
type WarningKind int

const (
	// WarnPreventiveExposure: an exposure ratio is below 1 and recoding was
	// not requested.
	WarnPreventiveExposure WarningKind = iota
	// WarnRecodeApplied: exposures were recoded; the message names the new
	// reference levels.
	WarnRecodeApplied
)

// Warning is a non-fatal finding from the preventive-exposure phase.
type Warning struct {
	Kind    WarningKind
	Message string
}

// Result is the immutable outcome of one estimation run.
type Result struct {
	// Rows is the ordered measure table: 8 rows in EM mode, 12 otherwise.
	Rows []MeasureRow
	// Terms are the resolved coefficient names (from the refit model when
	// recoding occurred).
	Terms Terms
	// EM records the framing the table was assembled for.
	EM bool
	// Level is the confidence level the intervals were computed at.
	Level float64
	// Kind is the model family the measures came from.
	Kind model.Kind
	// Spec is the original fitting specification.
	Spec model.Spec
	// RecodedData is the recoded dataset when recoding occurred, nil
	// otherwise.
	RecodedData *model.Dataset
	// Warnings from the preventive-exposure phase, possibly empty.
	Warnings []Warning
}

// Run executes the three phases in order: term resolution, preventive
// handling (with optional recode and refit), and measure computation.
func Run(m model.Fitted, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := logging.New("estimate")

	prepared, t, warnings, recoded, err := PrepareModel(m, opts)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn(w.Message)
	}

	e, err := newEngine(prepared, t, opts.CILevel)
	if err != nil {
		return nil, err
	}

	rows, err := assembleRows(e, opts.EM)
	if err != nil {
		return nil, err
	}
	return &Result{
		Rows:        rows,
		Terms:       t,
		EM:          opts.EM,
		Level:       opts.CILevel,
		Kind:        prepared.Kind(),
		Spec:        m.Spec(),
		RecodedData: recoded,
		Warnings:    warnings,
	}, nil
}

func assembleRows(e *engine, em bool) ([]MeasureRow, error) {
	ratio := e.m.Kind().RatioName()
	t := e.t

	p1Model, hasP1 := e.m.PValue(t.Beta1)
	p2Model, hasP2 := e.m.PValue(t.Beta2)

	rows := []MeasureRow{
		{Label: fmt.Sprintf("%s00 (reference)", ratio), Estimate: 1},
		ratioRow(fmt.Sprintf("%s01 (%s)", ratio, t.Beta2), e.or01(), p2Model, hasP2),
		ratioRow(fmt.Sprintf("%s10 (%s)", ratio, t.Beta1), e.or10(), p1Model, hasP1),
		ratioRow(fmt.Sprintf("%s11 (%s and %s)", ratio, t.Beta1, t.Beta2), e.or11(), e.or11P(), true),
	}

	// Effect of exposure 1 within strata of exposure 2.
	rows = append(rows,
		ratioRow(fmt.Sprintf("%s(%s | %s=0)", ratio, t.Beta1, t.Beta2), e.or10(), p1Model, hasP1))
	cond1, condP1 := e.condRatio(e.b1, e.b.V13)
	rows = append(rows,
		ratioRow(fmt.Sprintf("%s(%s | %s=1)", ratio, t.Beta1, t.Beta2), cond1, condP1, true))

	if !em {
		rows = append(rows,
			ratioRow(fmt.Sprintf("%s(%s | %s=0)", ratio, t.Beta2, t.Beta1), e.or01(), p2Model, hasP2))
		cond2, condP2 := e.condRatio(e.b2, e.b.V23)
		rows = append(rows,
			ratioRow(fmt.Sprintf("%s(%s | %s=1)", ratio, t.Beta2, t.Beta1), cond2, condP2, true))
	}

	mult, multP, hasMultP := e.multiplicative()
	rows = append(rows,
		ratioRow(fmt.Sprintf("Multiplicative scale (%s)", t.Beta3), mult, multP, hasMultP))

	reri, reriCI, err := e.reri()
	if err != nil {
		return nil, err
	}
	rows = append(rows, MeasureRow{
		Label: "RERI", Estimate: reri,
		Lower: reriCI.lower, Upper: reriCI.upper, HasCI: true,
	})

	if !em {
		ap, apCI, err := e.ap()
		if err != nil {
			return nil, err
		}
		rows = append(rows, MeasureRow{
			Label: "AP", Estimate: ap,
			Lower: apCI.lower, Upper: apCI.upper, HasCI: true,
		})
		si, siCI, err := e.si()
		if err != nil {
			return nil, err
		}
		rows = append(rows, MeasureRow{
			Label: "SI", Estimate: si,
			Lower: siCI.lower, Upper: siCI.upper, HasCI: true,
		})
	}
	return rows, nil
}

func ratioRow(label string, p moverPoint, pval float64, hasP bool) MeasureRow {
	r := MeasureRow{
		Label:    label,
		Estimate: p.est,
		Lower:    p.ci.lower,
		Upper:    p.ci.upper,
		HasCI:    true,
		HasP:     hasP,
	}
	if hasP {
		r.P = pval
	}
	if math.IsNaN(pval) {
		r.HasP = false
		r.P = 0
	}
	return r
}
