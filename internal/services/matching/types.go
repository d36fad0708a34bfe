package matching

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sort keys accepted by Search.
const (
	SortReadinessDesc  = "readiness_desc"
	SortPopularityDesc = "popularity_desc"
	SortNewestFirst    = "newest_first"
)

// SearchFilters narrows a discovery query. All fields are optional; nil
// or zero values leave the corresponding dimension unfiltered.
type SearchFilters struct {
	MinReadiness *int
	Industry     string
	Country      string
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
	Instrument   string
	SortBy       string
}

// Match reason strings, in the priority order they are reported.
const (
	ReasonHighReadiness = "high investment readiness score"
	ReasonIndustryMatch = "matches your industry preference"
	ReasonRegionMatch   = "located in your preferred region"
	ReasonVerified      = "verified business profile"
	ReasonHighInterest  = "high investor interest"
)

// Scoring constants. The bonuses are part of the scoring contract and
// must not drift between deployments.
const (
	industryBonus      = 10
	countryBonus       = 5
	amountInRangeBonus = 5
	highReadinessBar   = 80
)

// MatchResult is a derived, ephemeral value produced fresh on every
// query; it is never persisted.
type MatchResult struct {
	ListingID uuid.UUID `json:"listing_id"`
	Score     int       `json:"score"`
	Reasons   []string  `json:"reasons"`
}

// Config carries the deployment tunables for matching.
type Config struct {
	// ReadinessFloor excludes low-readiness listings from Match output.
	ReadinessFloor int
	// HighInterestViews is the view count above which the high-interest
	// reason is reported.
	HighInterestViews int64
}
