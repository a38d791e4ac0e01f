package estimate

import (
	"fmt"
	"math"

	"synergy/pkg/model"
)

// PrepareModel runs the preventive-exposure policy and returns the model the
// measures should be computed from. The returned model is the input model
// unless recoding occurred, in which case it is a fresh refit against a
// recoded copy of the dataset (also returned); the input model is never
// mutated.
//
// The contract is stable on its own so that alternative interval estimators
// (e.g. a bootstrap implementation) can share term resolution and recoding
// while replacing the closed-form interval step.
func PrepareModel(m model.Fitted, opts Options) (model.Fitted, Terms, []Warning, *model.Dataset, error) {
	t, err := Resolve(m.Names(), opts.Exposure1, opts.Exposure2)
	if err != nil {
		return nil, Terms{}, nil, nil, err
	}

	if opts.Recode && m.Kind() != model.Logistic {
		return nil, Terms{}, nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedRecode, m.Kind())
	}

	b1, ok := m.Coef(t.Beta1)
	if !ok {
		return nil, Terms{}, nil, nil, fmt.Errorf("estimate: coefficient %s missing from model", t.Beta1)
	}
	b2, ok := m.Coef(t.Beta2)
	if !ok {
		return nil, Terms{}, nil, nil, fmt.Errorf("estimate: coefficient %s missing from model", t.Beta2)
	}
	or10, or01 := math.Exp(b1), math.Exp(b2)

	if or10 >= 1 && or01 >= 1 {
		// Already coded against the lowest-risk reference; nothing to do
		// whether or not recoding was requested.
		return m, t, nil, nil, nil
	}

	if !opts.Recode {
		w := Warning{
			Kind: WarnPreventiveExposure,
			Message: fmt.Sprintf("at least one exposure is preventive (%s=%.4g, %s=%.4g); "+
				"additive measures may be uninterpretable without recoding",
				t.Beta1, or10, t.Beta2, or01),
		}
		return m, t, []Warning{w}, nil, nil
	}

	b3, ok := m.Coef(t.Beta3)
	if !ok {
		return nil, Terms{}, nil, nil, fmt.Errorf("estimate: coefficient %s missing from model", t.Beta3)
	}
	or11 := math.Exp(b1 + b2 + b3)

	// The joint stratum with the lowest ratio becomes the new reference;
	// first in (10, 01, 11) order wins a tie.
	strata := []struct {
		ref1, ref2 float64
		ratio      float64
	}{
		{1, 0, or10},
		{0, 1, or01},
		{1, 1, or11},
	}
	best := strata[0]
	for _, s := range strata[1:] {
		if s.ratio < best.ratio {
			best = s
		}
	}

	data := m.Data()
	if data == nil {
		return nil, Terms{}, nil, nil, fmt.Errorf("estimate: recode requested but model carries no dataset")
	}
	if opts.Refitter == nil {
		return nil, Terms{}, nil, nil, fmt.Errorf("estimate: recode requested but no refitter provided")
	}

	spec := m.Spec()
	recoded := data.Clone()
	if err := recoded.Recode(spec.Exposure1, best.ref1); err != nil {
		return nil, Terms{}, nil, nil, fmt.Errorf("estimate: recode %s: %w", spec.Exposure1, err)
	}
	if err := recoded.Recode(spec.Exposure2, best.ref2); err != nil {
		return nil, Terms{}, nil, nil, fmt.Errorf("estimate: recode %s: %w", spec.Exposure2, err)
	}

	refit, err := opts.Refitter.Refit(spec, recoded)
	if err != nil {
		return nil, Terms{}, nil, nil, fmt.Errorf("estimate: refit after recode: %w", err)
	}
	t2, err := Resolve(refit.Names(), opts.Exposure1, opts.Exposure2)
	if err != nil {
		return nil, Terms{}, nil, nil, fmt.Errorf("estimate: resolve terms on refit model: %w", err)
	}

	w := Warning{
		Kind: WarnRecodeApplied,
		Message: fmt.Sprintf("exposures recoded: new reference levels %s=%g, %s=%g (lowest-risk joint stratum)",
			spec.Exposure1, best.ref1, spec.Exposure2, best.ref2),
	}
	return refit, t2, []Warning{w}, recoded, nil
}
