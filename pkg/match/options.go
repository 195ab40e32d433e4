package match

import (
	"github.com/rs/zerolog"

	"github.com/placelink/placelink/pkg/constants"
)

// Option configures a Matcher.
type Option func(*Matcher)

// WithTolerance sets the absolute per-axis coordinate tolerance in degrees.
// Negative values are ignored.
func WithTolerance(deg float64) Option {
	return func(m *Matcher) {
		if deg >= 0 {
			m.tolerance = deg
		}
	}
}

// WithZeroAsAbsent treats an OSM center latitude or longitude of exactly 0 as
// missing, as earlier versions of the matching script did.
func WithZeroAsAbsent() Option {
	return func(m *Matcher) {
		m.zeroAsAbsent = true
	}
}

// WithEmptyNames lets two records without a name satisfy the name criterion.
func WithEmptyNames() Option {
	return func(m *Matcher) {
		m.allowEmptyNames = true
	}
}

// WithLogger sets the logger used for the run summary at debug level.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func defaultMatcher() *Matcher {
	nop := zerolog.Nop()
	return &Matcher{
		tolerance: constants.CoordinateTolerance,
		logger:    &nop,
	}
}
