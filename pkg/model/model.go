// Package model defines the fitted-model contracts consumed by the
// estimation engine.
//
// The engine never fits a regression itself: it reads coefficients, standard
// errors, p-values and the covariance matrix from a Fitted handle, and asks a
// Refitter for a new model when exposure recoding requires one. Any fitting
// library can participate by satisfying these two interfaces; Static adapts
// models fitted outside this module.
package model

// Kind identifies the regression family a model was fitted with.
type Kind int

const (
	// Logistic is an unconditional logistic regression.
	Logistic Kind = iota
	// CondLogistic is a conditional (matched-set) logistic regression.
	CondLogistic
	// Hazards is a proportional-hazards regression.
	Hazards
)

func (k Kind) String() string {
	switch k {
	case Logistic:
		return "logistic"
	case CondLogistic:
		return "conditional-logistic"
	case Hazards:
		return "proportional-hazards"
	}
	return "unknown"
}

// RatioName is the conventional symbol for exponentiated coefficients of this
// family: odds ratios for the logistic kinds, hazard ratios for Hazards.
func (k Kind) RatioName() string {
	if k == Hazards {
		return "HR"
	}
	return "OR"
}

// Spec is the original fitting specification. It is reused unmodified when a
// model is refit against recoded data.
type Spec struct {
	// Outcome is the response column name.
	Outcome string
	// Exposure1 and Exposure2 are the two binary exposure column names. The
	// fitted model must carry a main-effect coefficient for each and a single
	// product-term coefficient named from both.
	Exposure1 string
	Exposure2 string
	// Covariates are additional adjustment columns entered as main effects.
	Covariates []string
	// Weights optionally names a frequency-weight column.
	Weights string
	// Kind is the regression family.
	Kind Kind
}

// Fitted is a read-only handle on a fitted regression model.
//
// Lookup methods report ok=false for unknown coefficient names. How a
// standard error is obtained is the implementation's concern; callers must
// not branch on Kind to locate it.
type Fitted interface {
	// Kind reports the regression family.
	Kind() Kind
	// Names returns the coefficient names in model order.
	Names() []string
	// Coef returns the point estimate for a named coefficient.
	Coef(name string) (float64, bool)
	// StdErr returns the standard error for a named coefficient.
	StdErr(name string) (float64, bool)
	// PValue returns the two-sided p-value for a named coefficient.
	PValue(name string) (float64, bool)
	// Cov returns the covariance between two named coefficients.
	Cov(a, b string) (float64, bool)
	// Spec returns the fitting specification.
	Spec() Spec
	// Data returns the analysis dataset the model was fitted on, or nil when
	// the data is not available (e.g. externally fitted models).
	Data() *Dataset
}

// Refitter fits a new model from a specification and dataset. It is the
// injected capability used by the recode path; implementations must return a
// fresh Fitted and leave their inputs untouched.
type Refitter interface {
	Refit(spec Spec, data *Dataset) (Fitted, error)
}
