// Package matching filters, scores, and ranks business listings for
// investors. Search and Match are read-only and safe to run in parallel
// across requests.
package matching

import (
	"context"
	"fmt"
	"sort"

	"bvest/internal/models"
	"bvest/internal/repositories"
)

// Service defines the discovery operations.
type Service interface {
	// Search returns published, public listings narrowed by the given
	// filters. Without a sort key the repository order is preserved.
	Search(ctx context.Context, filters SearchFilters) ([]models.BusinessListing, error)

	// Match scores all eligible listings against an investor profile
	// and returns them ranked, best first. Listings below the readiness
	// floor are excluded.
	Match(ctx context.Context, profile *models.InvestorProfile) ([]MatchResult, error)
}

type service struct {
	repo   repositories.ListingRepository
	config Config
}

// NewService creates a matching service over the listing repository.
func NewService(repo repositories.ListingRepository, config Config) Service {
	if repo == nil {
		panic("listing repository is required")
	}
	if config.ReadinessFloor == 0 {
		config.ReadinessFloor = 60
	}
	if config.HighInterestViews == 0 {
		config.HighInterestViews = 100
	}
	return &service{repo: repo, config: config}
}

func (s *service) Search(ctx context.Context, filters SearchFilters) ([]models.BusinessListing, error) {
	listings, err := s.eligibleListings(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.BusinessListing, 0, len(listings))
	for _, l := range listings {
		if !matchesFilters(&l, filters) {
			continue
		}
		results = append(results, l)
	}

	sortListings(results, filters.SortBy)
	return results, nil
}

func (s *service) Match(ctx context.Context, profile *models.InvestorProfile) ([]MatchResult, error) {
	listings, err := s.eligibleListings(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		result  MatchResult
		listing models.BusinessListing
	}

	matches := make([]scored, 0, len(listings))
	for _, l := range listings {
		if l.ReadinessScore < s.config.ReadinessFloor {
			continue
		}
		matches = append(matches, scored{
			result: MatchResult{
				ListingID: l.ID,
				Score:     Score(&l, profile),
				Reasons:   s.reasons(&l, profile),
			},
			listing: l,
		})
	}

	// Descending by score; ties broken by readiness, recency, then id
	// so identical inputs always rank identically.
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.result.Score != b.result.Score {
			return a.result.Score > b.result.Score
		}
		if a.listing.ReadinessScore != b.listing.ReadinessScore {
			return a.listing.ReadinessScore > b.listing.ReadinessScore
		}
		if !a.listing.UpdatedAt.Equal(b.listing.UpdatedAt) {
			return a.listing.UpdatedAt.After(b.listing.UpdatedAt)
		}
		return a.listing.ID.String() < b.listing.ID.String()
	})

	results := make([]MatchResult, len(matches))
	for i, m := range matches {
		results[i] = m.result
	}
	return results, nil
}

func (s *service) eligibleListings(ctx context.Context) ([]models.BusinessListing, error) {
	listings, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	// The repository query already narrows to published+public, but the
	// eligibility rule lives here so a cached or replicated read can
	// never leak a private listing.
	eligible := listings[:0]
	for _, l := range listings {
		if l.Investable() {
			eligible = append(eligible, l)
		}
	}
	return eligible, nil
}

// Score computes the match score for one listing against a profile:
// readiness base plus preference bonuses, clamped to [0,100]. An empty
// preference set simply earns no bonus.
func Score(l *models.BusinessListing, profile *models.InvestorProfile) int {
	score := l.ReadinessScore
	if profile.PreferredIndustries.Contains(l.Industry) {
		score += industryBonus
	}
	if profile.PreferredCountries.Contains(l.Country) {
		score += countryBonus
	}
	if profile.AmountInRange(l.RequestedAmount) {
		score += amountInRangeBonus
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// reasons generates the human-readable match explanations, in priority
// order. Presentation only: the list never feeds back into the score.
func (s *service) reasons(l *models.BusinessListing, profile *models.InvestorProfile) []string {
	var reasons []string
	if l.ReadinessScore >= highReadinessBar {
		reasons = append(reasons, ReasonHighReadiness)
	}
	if profile.PreferredIndustries.Contains(l.Industry) {
		reasons = append(reasons, ReasonIndustryMatch)
	}
	if profile.PreferredCountries.Contains(l.Country) {
		reasons = append(reasons, ReasonRegionMatch)
	}
	if l.Verified {
		reasons = append(reasons, ReasonVerified)
	}
	if l.ViewCount > s.config.HighInterestViews {
		reasons = append(reasons, ReasonHighInterest)
	}
	return reasons
}

func matchesFilters(l *models.BusinessListing, f SearchFilters) bool {
	if f.MinReadiness != nil && l.ReadinessScore < *f.MinReadiness {
		return false
	}
	if f.Industry != "" && l.Industry != f.Industry {
		return false
	}
	if f.Country != "" && l.Country != f.Country {
		return false
	}
	if f.MinAmount != nil && l.RequestedAmount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && l.RequestedAmount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.Instrument != "" && !l.AcceptsInstrument(f.Instrument) {
		return false
	}
	return true
}

func sortListings(listings []models.BusinessListing, sortBy string) {
	switch sortBy {
	case SortReadinessDesc:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].ReadinessScore > listings[j].ReadinessScore
		})
	case SortPopularityDesc:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].ViewCount > listings[j].ViewCount
		})
	case SortNewestFirst:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		})
	}
}
