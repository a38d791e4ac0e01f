package estimate

import (
	"math"
	"strings"
	"testing"

	"synergy/pkg/model"
)

// fixtureModel builds a saturated logistic fit of a grouped case-control
// table with cell counts (controls; cases):
//
//	00: 200;40   10: 100;60   01: 120;50   11: 60;90
//
// For a saturated model the coefficients are log cross-product ratios and
// the covariance entries are signed sums of reciprocal cell counts, so the
// fixture is exact without running a fitter. Expected measure values below
// were computed independently from the same closed form.
func fixtureModel(t *testing.T) *model.Static {
	t.Helper()

	lo := func(cases, controls float64) float64 { return math.Log(cases / controls) }
	l00, l10, l01, l11 := lo(40, 200), lo(60, 100), lo(50, 120), lo(90, 60)
	coef := []float64{
		l00,
		l10 - l00,
		l01 - l00,
		l11 - l10 - l01 + l00,
	}

	s := func(cases, controls float64) float64 { return 1/cases + 1/controls }
	s00, s10, s01, s11 := s(40, 200), s(60, 100), s(50, 120), s(90, 60)
	cov := [][]float64{
		{s00, -s00, -s00, s00},
		{-s00, s10 + s00, s00, -s10 - s00},
		{-s00, s00, s01 + s00, -s01 - s00},
		{s00, -s10 - s00, -s01 - s00, s11 + s10 + s01 + s00},
	}

	names := []string{"(Intercept)", "alc", "smk", "alc:smk"}
	p := []float64{0.5, 0.001, 0.002, 0.3}
	m, err := model.NewStatic(model.Logistic, model.Spec{
		Outcome: "outcome", Exposure1: "alc", Exposure2: "smk", Kind: model.Logistic,
	}, names, coef, cov, nil, p)
	if err != nil {
		t.Fatalf("fixture model: %v", err)
	}
	return m
}

func defaultOptions() Options {
	return Options{Exposure1: "alc", Exposure2: "smk", CILevel: 0.95}
}

type wantRow struct {
	label    string
	estimate float64
	lower    float64
	upper    float64
	p        float64
	hasCI    bool
	hasP     bool
}

func checkRows(t *testing.T, rows []MeasureRow, want []wantRow) {
	t.Helper()
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	const tol = 1e-8
	for i, w := range want {
		got := rows[i]
		if got.Label != w.label {
			t.Errorf("row %d label = %q, want %q", i, got.Label, w.label)
		}
		if math.Abs(got.Estimate-w.estimate) > tol {
			t.Errorf("row %q estimate = %.10f, want %.10f", w.label, got.Estimate, w.estimate)
		}
		if got.HasCI != w.hasCI {
			t.Errorf("row %q HasCI = %v, want %v", w.label, got.HasCI, w.hasCI)
		}
		if w.hasCI {
			if math.Abs(got.Lower-w.lower) > tol {
				t.Errorf("row %q lower = %.10f, want %.10f", w.label, got.Lower, w.lower)
			}
			if math.Abs(got.Upper-w.upper) > tol {
				t.Errorf("row %q upper = %.10f, want %.10f", w.label, got.Upper, w.upper)
			}
		}
		if got.HasP != w.hasP {
			t.Errorf("row %q HasP = %v, want %v", w.label, got.HasP, w.hasP)
		}
		if w.hasP && math.Abs(got.P-w.p) > tol*math.Max(1, w.p) {
			t.Errorf("row %q p = %.3e, want %.3e", w.label, got.P, w.p)
		}
	}
}

func TestRun_InteractionFraming(t *testing.T) {
	res, err := Run(fixtureModel(t), defaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []wantRow{
		{label: "OR00 (reference)", estimate: 1},
		{label: "OR01 (smk)", estimate: 2.0833333333333335,
			lower: 1.2976992644252772, upper: 3.3445944655751907, p: 0.002, hasCI: true, hasP: true},
		{label: "OR10 (alc)", estimate: 3.0,
			lower: 1.8814589969416367, upper: 4.783521732139656, p: 0.001, hasCI: true, hasP: true},
		{label: "OR11 (alc and smk)", estimate: 7.5,
			lower: 4.682285338445911, upper: 12.013364400955075, p: 4.95452123845697e-16, hasCI: true, hasP: true},
		{label: "OR(alc | smk=0)", estimate: 3.0,
			lower: 1.8814589969416367, upper: 4.783521732139656, p: 0.001, hasCI: true, hasP: true},
		{label: "OR(alc | smk=1)", estimate: 3.6,
			lower: 2.2629331147624576, upper: 5.727080449463669, p: 1.0792496741405367e-07, hasCI: true, hasP: true},
		{label: "OR(smk | alc=0)", estimate: 2.0833333333333335,
			lower: 1.2976992644252772, upper: 3.3445944655751907, p: 0.002, hasCI: true, hasP: true},
		{label: "OR(smk | alc=1)", estimate: 2.5,
			lower: 1.5824365859252594, upper: 3.9496053463308867, p: 9.797741083554613e-05, hasCI: true, hasP: true},
		{label: "Multiplicative scale (alc:smk)", estimate: 1.2,
			lower: 0.6213371416139627, upper: 2.317582361581522, p: 0.3, hasCI: true, hasP: true},
		{label: "RERI", estimate: 3.4166666666666665,
			lower: 0.9435756565437119, upper: 7.184627023549208, hasCI: true},
		{label: "AP", estimate: 0.4555555555555556,
			lower: 0.13622204256617865, upper: 0.64025519102425, hasCI: true},
		{label: "SI", estimate: 2.1081081081081083,
			lower: 1.230038447843794, upper: 3.9573860585885785, hasCI: true},
	}
	checkRows(t, res.Rows, want)

	if res.Terms.Beta1 != "alc" || res.Terms.Beta2 != "smk" || res.Terms.Beta3 != "alc:smk" {
		t.Errorf("terms = %+v", res.Terms)
	}
	if res.RecodedData != nil {
		t.Error("RecodedData should be nil without recode")
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", res.Warnings)
	}
}

func TestRun_EffectModificationFraming(t *testing.T) {
	opts := defaultOptions()
	opts.EM = true
	res, err := Run(fixtureModel(t), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Rows) != 8 {
		t.Fatalf("got %d rows, want 8", len(res.Rows))
	}
	wantLabels := []string{
		"OR00 (reference)",
		"OR01 (smk)",
		"OR10 (alc)",
		"OR11 (alc and smk)",
		"OR(alc | smk=0)",
		"OR(alc | smk=1)",
		"Multiplicative scale (alc:smk)",
		"RERI",
	}
	for i, w := range wantLabels {
		if res.Rows[i].Label != w {
			t.Errorf("row %d label = %q, want %q", i, res.Rows[i].Label, w)
		}
	}
}

func TestRun_RowCounts(t *testing.T) {
	for _, tt := range []struct {
		em   bool
		want int
	}{
		{em: true, want: 8},
		{em: false, want: 12},
	} {
		opts := defaultOptions()
		opts.EM = tt.em
		res, err := Run(fixtureModel(t), opts)
		if err != nil {
			t.Fatalf("Run(em=%v): %v", tt.em, err)
		}
		if len(res.Rows) != tt.want {
			t.Errorf("em=%v: %d rows, want %d", tt.em, len(res.Rows), tt.want)
		}
	}
}

func TestRun_ConfidenceLevelMonotonicity(t *testing.T) {
	levels := []float64{0.90, 0.95, 0.99}
	var prev *Result
	for _, level := range levels {
		opts := defaultOptions()
		opts.CILevel = level
		res, err := Run(fixtureModel(t), opts)
		if err != nil {
			t.Fatalf("Run(level=%g): %v", level, err)
		}
		if prev != nil {
			for i, row := range res.Rows {
				if !row.HasCI {
					continue
				}
				prevW := prev.Rows[i].Upper - prev.Rows[i].Lower
				gotW := row.Upper - row.Lower
				if gotW <= prevW {
					t.Errorf("row %q: width at %g (%.6f) not wider than at %g (%.6f)",
						row.Label, level, gotW, prev.Level, prevW)
				}
			}
		}
		prev = res
	}
}

func TestRun_RERIAcrossLevels(t *testing.T) {
	want := map[float64][2]float64{
		0.90: {1.3289278840029333, 6.426290725575073},
		0.99: {0.13383424640481678, 8.881918997961483},
	}
	for level, bounds := range want {
		opts := defaultOptions()
		opts.CILevel = level
		res, err := Run(fixtureModel(t), opts)
		if err != nil {
			t.Fatalf("Run(level=%g): %v", level, err)
		}
		var reri *MeasureRow
		for i := range res.Rows {
			if res.Rows[i].Label == "RERI" {
				reri = &res.Rows[i]
			}
		}
		if reri == nil {
			t.Fatal("no RERI row")
		}
		if math.Abs(reri.Lower-bounds[0]) > 1e-8 || math.Abs(reri.Upper-bounds[1]) > 1e-8 {
			t.Errorf("level %g RERI CI = [%.10f, %.10f], want [%.10f, %.10f]",
				level, reri.Lower, reri.Upper, bounds[0], bounds[1])
		}
	}
}

func TestRun_OptionValidation(t *testing.T) {
	m := fixtureModel(t)
	tests := []struct {
		name string
		opts Options
	}{
		{"missing fragment", Options{Exposure1: "alc", CILevel: 0.95}},
		{"zero level", Options{Exposure1: "alc", Exposure2: "smk"}},
		{"level one", Options{Exposure1: "alc", Exposure2: "smk", CILevel: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(m, tt.opts); err == nil {
				t.Error("Run succeeded, want error")
			}
		})
	}
}

func TestRun_HazardRatioLabels(t *testing.T) {
	base := fixtureModel(t)
	names := base.Names()
	coef := make([]float64, len(names))
	cov := make([][]float64, len(names))
	for i, n := range names {
		coef[i], _ = base.Coef(n)
		cov[i] = make([]float64, len(names))
		for j, m := range names {
			cov[i][j], _ = base.Cov(n, m)
		}
	}
	hz, err := model.NewStatic(model.Hazards, model.Spec{Kind: model.Hazards}, names, coef, cov, nil, nil)
	if err != nil {
		t.Fatalf("static: %v", err)
	}
	res, err := Run(hz, defaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(res.Rows[0].Label, "HR00") {
		t.Errorf("hazards reference row label = %q, want HR00 prefix", res.Rows[0].Label)
	}
}
