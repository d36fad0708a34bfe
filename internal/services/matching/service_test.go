package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"bvest/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeListingRepo serves a fixed listing slice. failWith simulates a
// store outage.
type fakeListingRepo struct {
	listings []models.BusinessListing
	failWith error
}

func (f *fakeListingRepo) Create(ctx context.Context, l *models.BusinessListing) error { return nil }
func (f *fakeListingRepo) Save(ctx context.Context, l *models.BusinessListing) error   { return nil }
func (f *fakeListingRepo) IncrementViews(ctx context.Context, id uuid.UUID) error      { return nil }

func (f *fakeListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error) {
	for i := range f.listings {
		if f.listings[i].ID == id {
			return &f.listings[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeListingRepo) ListByOwner(ctx context.Context, ownerID uint) ([]models.BusinessListing, error) {
	return nil, nil
}

func (f *fakeListingRepo) ListPublished(ctx context.Context) ([]models.BusinessListing, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]models.BusinessListing, 0, len(f.listings))
	for _, l := range f.listings {
		if l.Status == models.ListingStatusPublished && l.Visibility == models.VisibilityPublic {
			out = append(out, l)
		}
	}
	return out, nil
}

func publishedListing(industry, country string, amount int64, readiness int) models.BusinessListing {
	return models.BusinessListing{
		ID:                  uuid.New(),
		OwnerID:             7,
		Industry:            industry,
		Country:             country,
		RequestedAmount:     decimal.NewFromInt(amount),
		AcceptedInstruments: models.StringSet{models.InstrumentEquity},
		ReadinessScore:      readiness,
		Visibility:          models.VisibilityPublic,
		Status:              models.ListingStatusPublished,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
}

func testService(listings ...models.BusinessListing) Service {
	return NewService(&fakeListingRepo{listings: listings}, Config{ReadinessFloor: 60, HighInterestViews: 100})
}

func TestMatch_ScoringBonuses(t *testing.T) {
	listing := publishedListing("Agriculture", "Kenya", 50000, 85)
	listing.Verified = true
	svc := testService(listing)

	t.Run("all bonuses apply and score clamps at 100", func(t *testing.T) {
		profile := &models.InvestorProfile{
			PreferredIndustries: models.StringSet{"Agriculture"},
			PreferredCountries:  models.StringSet{"Kenya"},
			MinAmount:           decimal.NewFromInt(10000),
			MaxAmount:           decimal.NewFromInt(100000),
		}

		results, err := svc.Match(context.Background(), profile)
		require.NoError(t, err)
		require.Len(t, results, 1)

		// 85 + 10 + 5 + 5 = 105, clamped.
		assert.Equal(t, 100, results[0].Score)
		assert.Equal(t, []string{
			ReasonHighReadiness,
			ReasonIndustryMatch,
			ReasonRegionMatch,
			ReasonVerified,
		}, results[0].Reasons)
	})

	t.Run("no preference overlap yields base score only", func(t *testing.T) {
		profile := &models.InvestorProfile{
			PreferredIndustries: models.StringSet{"Technology"},
		}

		results, err := svc.Match(context.Background(), profile)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 85, results[0].Score)
	})

	t.Run("empty preference sets are valid", func(t *testing.T) {
		results, err := svc.Match(context.Background(), &models.InvestorProfile{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 85, results[0].Score)
	})

	t.Run("amount range boundaries are inclusive", func(t *testing.T) {
		profile := &models.InvestorProfile{
			MinAmount: decimal.NewFromInt(50000),
			MaxAmount: decimal.NewFromInt(50000),
		}

		results, err := svc.Match(context.Background(), profile)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 90, results[0].Score)
	})
}

func TestMatch_ReadinessFloor(t *testing.T) {
	high := publishedListing("Agriculture", "Kenya", 50000, 85)
	low := publishedListing("Agriculture", "Kenya", 20000, 40)
	svc := testService(high, low)

	results, err := svc.Match(context.Background(), &models.InvestorProfile{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, high.ID, results[0].ListingID)

	// The floor applies to Match only; Search still returns both.
	listings, err := svc.Search(context.Background(), SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestMatch_ExcludesNonInvestable(t *testing.T) {
	published := publishedListing("Retail", "Ghana", 30000, 70)
	draft := publishedListing("Retail", "Ghana", 30000, 95)
	draft.Status = models.ListingStatusDraft
	private := publishedListing("Retail", "Ghana", 30000, 95)
	private.Visibility = models.VisibilityPrivate

	svc := testService(published, draft, private)

	results, err := svc.Match(context.Background(), &models.InvestorProfile{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, published.ID, results[0].ListingID)

	listings, err := svc.Search(context.Background(), SearchFilters{})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, published.ID, listings[0].ID)
}

func TestMatch_DeterministicOrdering(t *testing.T) {
	now := time.Now()

	older := publishedListing("Agriculture", "Kenya", 50000, 80)
	older.UpdatedAt = now.Add(-time.Hour)
	newer := publishedListing("Agriculture", "Kenya", 50000, 80)
	newer.UpdatedAt = now

	higherReadiness := publishedListing("Retail", "Ghana", 50000, 90)
	higherReadiness.UpdatedAt = now.Add(-2 * time.Hour)

	// All three score 90 for this profile: two by readiness 80 plus the
	// industry bonus, one on readiness alone.
	profile := &models.InvestorProfile{PreferredIndustries: models.StringSet{"Agriculture"}}
	svc := testService(older, newer, higherReadiness)

	first, err := svc.Match(context.Background(), profile)
	require.NoError(t, err)
	require.Len(t, first, 3)

	// Ties break on readiness, then recency.
	assert.Equal(t, higherReadiness.ID, first[0].ListingID)
	assert.Equal(t, newer.ID, first[1].ListingID)
	assert.Equal(t, older.ID, first[2].ListingID)

	for i := 0; i < 5; i++ {
		again, err := svc.Match(context.Background(), profile)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMatch_HighInterestReason(t *testing.T) {
	quiet := publishedListing("Retail", "Ghana", 30000, 75)
	quiet.ViewCount = 100
	busy := publishedListing("Retail", "Ghana", 30000, 75)
	busy.ViewCount = 101

	svc := testService(quiet, busy)
	results, err := svc.Match(context.Background(), &models.InvestorProfile{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byID := map[uuid.UUID][]string{}
	for _, r := range results {
		byID[r.ListingID] = r.Reasons
	}
	assert.NotContains(t, byID[quiet.ID], ReasonHighInterest)
	assert.Contains(t, byID[busy.ID], ReasonHighInterest)
}

func TestSearch_Filters(t *testing.T) {
	agri := publishedListing("Agriculture", "Kenya", 50000, 85)
	tech := publishedListing("Technology", "Nigeria", 250000, 65)
	retail := publishedListing("Retail", "Kenya", 5000, 45)
	debtOnly := publishedListing("Agriculture", "Ghana", 80000, 70)
	debtOnly.AcceptedInstruments = models.StringSet{models.InstrumentDebt}

	svc := testService(agri, tech, retail, debtOnly)
	ctx := context.Background()

	t.Run("industry filter", func(t *testing.T) {
		got, err := svc.Search(ctx, SearchFilters{Industry: "Agriculture"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("country filter", func(t *testing.T) {
		got, err := svc.Search(ctx, SearchFilters{Country: "Kenya"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("min readiness filter", func(t *testing.T) {
		min := 60
		got, err := svc.Search(ctx, SearchFilters{MinReadiness: &min})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("amount range filter", func(t *testing.T) {
		lo := decimal.NewFromInt(40000)
		hi := decimal.NewFromInt(100000)
		got, err := svc.Search(ctx, SearchFilters{MinAmount: &lo, MaxAmount: &hi})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("instrument filter", func(t *testing.T) {
		got, err := svc.Search(ctx, SearchFilters{Instrument: models.InstrumentDebt})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, debtOnly.ID, got[0].ID)
	})

	t.Run("no sort key preserves repository order", func(t *testing.T) {
		got, err := svc.Search(ctx, SearchFilters{})
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, agri.ID, got[0].ID)
		assert.Equal(t, debtOnly.ID, got[3].ID)
	})
}

func TestSearch_SortKeys(t *testing.T) {
	now := time.Now()

	a := publishedListing("Agriculture", "Kenya", 50000, 85)
	a.ViewCount = 10
	a.CreatedAt = now.Add(-2 * time.Hour)
	b := publishedListing("Technology", "Nigeria", 250000, 65)
	b.ViewCount = 500
	b.CreatedAt = now.Add(-time.Hour)
	c := publishedListing("Retail", "Kenya", 5000, 92)
	c.ViewCount = 40
	c.CreatedAt = now

	svc := testService(a, b, c)
	ctx := context.Background()

	t.Run("readiness_desc", func(t *testing.T) {
		got, err := svc.Search(ctx, SearchFilters{SortBy: SortReadinessDesc})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, ids(got))
	})

	t.Run("popularity_desc", func(t *testing.T) {
		got, err := svc.Search(ctx, SearchFilters{SortBy: SortPopularityDesc})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{b.ID, c.ID, a.ID}, ids(got))
	})

	t.Run("newest_first", func(t *testing.T) {
		got, err := svc.Search(ctx, SearchFilters{SortBy: SortNewestFirst})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{c.ID, b.ID, a.ID}, ids(got))
	})
}

func TestSearch_RepositoryFailure(t *testing.T) {
	repo := &fakeListingRepo{failWith: errors.New("connection refused")}
	svc := NewService(repo, Config{})

	_, err := svc.Search(context.Background(), SearchFilters{})
	assert.ErrorIs(t, err, ErrRepositoryUnavailable)

	_, err = svc.Match(context.Background(), &models.InvestorProfile{})
	assert.ErrorIs(t, err, ErrRepositoryUnavailable)
}

func ids(listings []models.BusinessListing) []uuid.UUID {
	out := make([]uuid.UUID, len(listings))
	for i, l := range listings {
		out[i] = l.ID
	}
	return out
}
