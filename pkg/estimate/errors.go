package estimate

import "errors"

var (
	// ErrAmbiguousInteraction is returned when the two exposure fragments do
	// not select exactly one shared (interaction) coefficient.
	ErrAmbiguousInteraction = errors.New("estimate: interaction term not uniquely identifiable")

	// ErrUnsupportedRecode is returned when exposure recoding is requested
	// for a model kind that cannot be refit automatically.
	ErrUnsupportedRecode = errors.New("estimate: model kind does not support exposure recoding")

	// ErrInvalidVariance is returned when a variance is non-positive, a
	// covariance entry is missing or non-finite, or an interval computation
	// leaves its domain (negative radicand, non-positive log argument).
	ErrInvalidVariance = errors.New("estimate: invalid variance")
)
