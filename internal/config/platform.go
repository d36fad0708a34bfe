package config

import "github.com/shopspring/decimal"

// Platform tunables with their deployment defaults. Compliance asked for
// these to stay adjustable per region without a code change.
const (
	DefaultReadinessFloor    = 60
	DefaultHighInterestViews = 100
)

// DefaultNonAccreditedCeiling caps a single pledge for non-accredited
// investors regardless of the limits on their claims.
var DefaultNonAccreditedCeiling = decimal.NewFromInt(50000)

// PlatformConfig carries the marketplace tunables.
type PlatformConfig struct {
	// NonAccreditedCeiling is the platform-wide single-pledge cap for
	// non-accredited investors.
	NonAccreditedCeiling decimal.Decimal
	// ReadinessFloor is the minimum readiness score for a listing to be
	// eligible for Match (plain Search is unaffected).
	ReadinessFloor int
	// HighInterestViews is the view count above which a listing earns
	// the "high investor interest" match reason.
	HighInterestViews int64
}

// LoadPlatformConfig reads the platform tunables from the environment,
// falling back to the stated defaults.
func LoadPlatformConfig() PlatformConfig {
	return PlatformConfig{
		NonAccreditedCeiling: GetDecimalEnv("PLEDGE_NONACCREDITED_CEILING", DefaultNonAccreditedCeiling),
		ReadinessFloor:       GetIntEnv("MATCH_READINESS_FLOOR", DefaultReadinessFloor),
		HighInterestViews:    int64(GetIntEnv("MATCH_HIGH_INTEREST_VIEWS", DefaultHighInterestViews)),
	}
}
