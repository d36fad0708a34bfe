package listing

import (
	"context"
	"sync"
	"testing"

	"bvest/internal/config"
	"bvest/internal/models"
	"bvest/internal/repositories"
	"bvest/internal/services/compliance"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListingRepo struct {
	mu       sync.Mutex
	listings map[uuid.UUID]models.BusinessListing
	views    map[uuid.UUID]int
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		listings: make(map[uuid.UUID]models.BusinessListing),
		views:    make(map[uuid.UUID]int),
	}
}

func (f *fakeListingRepo) Create(ctx context.Context, l *models.BusinessListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	f.listings[l.ID] = *l
	return nil
}

func (f *fakeListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, repositories.ErrListingNotFound
	}
	copied := l
	return &copied, nil
}

func (f *fakeListingRepo) Save(ctx context.Context, l *models.BusinessListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[l.ID] = *l
	return nil
}

func (f *fakeListingRepo) ListPublished(ctx context.Context) ([]models.BusinessListing, error) {
	return nil, nil
}

func (f *fakeListingRepo) ListByOwner(ctx context.Context, ownerID uint) ([]models.BusinessListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BusinessListing
	for _, l := range f.listings {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[id]++
	return nil
}

type fakeClaimsRepo struct {
	claims map[uint]models.ComplianceClaims
}

func (f *fakeClaimsRepo) GetClaims(ctx context.Context, userID uint) (models.ComplianceClaims, error) {
	c, ok := f.claims[userID]
	if !ok {
		return models.ComplianceClaims{}, repositories.ErrClaimsNotFound
	}
	return c, nil
}

func (f *fakeClaimsRepo) Upsert(ctx context.Context, c *models.ComplianceClaims) error {
	f.claims[c.UserID] = *c
	return nil
}

const businessOwnerID = uint(7)

func newTestService(t *testing.T) (Service, *fakeListingRepo) {
	t.Helper()
	repo := newFakeListingRepo()
	claims := &fakeClaimsRepo{claims: map[uint]models.ComplianceClaims{
		businessOwnerID: {
			UserID:           businessOwnerID,
			KYCLevel:         models.KYCLevelBasic,
			SanctionsCleared: true,
			AccountStatus:    models.AccountStatusActive,
		},
	}}
	gate := compliance.NewGate(config.PlatformConfig{
		NonAccreditedCeiling: decimal.NewFromInt(50000),
	})
	return NewService(repo, claims, gate, nil), repo
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		OwnerID:             businessOwnerID,
		Industry:            "Agriculture",
		Country:             "Ghana",
		Description:         "Cassava processing expansion",
		RequestedAmount:     decimal.NewFromInt(75000),
		AcceptedInstruments: []string{models.InstrumentEquity},
		ReadinessScore:      70,
	}
}

func TestCreate(t *testing.T) {
	t.Run("stores a draft with public visibility by default", func(t *testing.T) {
		svc, _ := newTestService(t)
		l, err := svc.Create(context.Background(), validCreateRequest())
		require.NoError(t, err)
		assert.Equal(t, models.ListingStatusDraft, l.Status)
		assert.Equal(t, models.VisibilityPublic, l.Visibility)
		assert.False(t, l.Investable())
	})

	t.Run("clamps readiness into range", func(t *testing.T) {
		svc, _ := newTestService(t)
		req := validCreateRequest()
		req.ReadinessScore = 140
		l, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 100, l.ReadinessScore)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc, _ := newTestService(t)

		req := validCreateRequest()
		req.Industry = ""
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrMissingField)

		req = validCreateRequest()
		req.RequestedAmount = decimal.NewFromInt(-100)
		_, err = svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		req = validCreateRequest()
		req.AcceptedInstruments = []string{"crypto"}
		_, err = svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInstrument)
	})

	t.Run("refuses owners without KYC", func(t *testing.T) {
		svc, _ := newTestService(t)
		req := validCreateRequest()
		req.OwnerID = 999

		_, err := svc.Create(context.Background(), req)
		var denied *ComplianceDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, compliance.ReasonKYCRequired, denied.Reason)
	})
}

func TestLifecycleTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// draft -> pending_review -> published -> closed
	l, err = svc.SubmitForReview(ctx, l.ID, businessOwnerID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusPendingReview, l.Status)

	l, err = svc.Approve(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusPublished, l.Status)
	assert.True(t, l.Investable())

	l, err = svc.Close(ctx, l.ID, businessOwnerID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusClosed, l.Status)
}

func TestInvalidTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Approve(ctx, l.ID)
	assert.ErrorIs(t, err, ErrInvalidListingState)

	_, err = svc.Close(ctx, l.ID, businessOwnerID)
	assert.ErrorIs(t, err, ErrInvalidListingState)

	l, err = svc.SubmitForReview(ctx, l.ID, businessOwnerID)
	require.NoError(t, err)
	_, err = svc.SubmitForReview(ctx, l.ID, businessOwnerID)
	assert.ErrorIs(t, err, ErrInvalidListingState)
}

func TestApproveRefusesPrivateListing(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	req := validCreateRequest()
	req.Visibility = models.VisibilityPrivate
	l, err := svc.Create(ctx, req)
	require.NoError(t, err)
	l, err = svc.SubmitForReview(ctx, l.ID, businessOwnerID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, l.ID)
	assert.ErrorIs(t, err, ErrListingNotPublic)

	stored, err := repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusPendingReview, stored.Status)
	assert.Equal(t, models.VisibilityPrivate, stored.Visibility)
}

func TestRejectReturnsToDraft(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	l, err = svc.SubmitForReview(ctx, l.ID, businessOwnerID)
	require.NoError(t, err)

	l, err = svc.Reject(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusDraft, l.Status)
}

func TestOwnershipChecks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.SubmitForReview(ctx, l.ID, businessOwnerID+1)
	assert.ErrorIs(t, err, ErrNotOwner)

	desc := "edited"
	_, err = svc.Update(ctx, l.ID, businessOwnerID+1, UpdateRequest{Description: &desc})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdate(t *testing.T) {
	t.Run("edits draft fields", func(t *testing.T) {
		svc, _ := newTestService(t)
		ctx := context.Background()

		l, err := svc.Create(ctx, validCreateRequest())
		require.NoError(t, err)

		amount := decimal.NewFromInt(90000)
		score := 88
		l, err = svc.Update(ctx, l.ID, businessOwnerID, UpdateRequest{
			RequestedAmount:     &amount,
			ReadinessScore:      &score,
			AcceptedInstruments: []string{models.InstrumentDebt, models.InstrumentRevenueShare},
		})
		require.NoError(t, err)
		assert.True(t, amount.Equal(l.RequestedAmount))
		assert.Equal(t, 88, l.ReadinessScore)
		assert.True(t, l.AcceptsInstrument(models.InstrumentRevenueShare))
		assert.False(t, l.AcceptsInstrument(models.InstrumentEquity))
		assert.Equal(t, "Agriculture", l.Industry)
	})

	t.Run("only drafts are editable", func(t *testing.T) {
		svc, _ := newTestService(t)
		ctx := context.Background()

		l, err := svc.Create(ctx, validCreateRequest())
		require.NoError(t, err)
		_, err = svc.SubmitForReview(ctx, l.ID, businessOwnerID)
		require.NoError(t, err)

		desc := "edited"
		_, err = svc.Update(ctx, l.ID, businessOwnerID, UpdateRequest{Description: &desc})
		assert.ErrorIs(t, err, ErrInvalidListingState)
	})
}

func TestRecordView(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// Views on unpublished listings are dropped silently.
	require.NoError(t, svc.RecordView(ctx, l.ID))
	assert.Zero(t, repo.views[l.ID])

	_, err = svc.SubmitForReview(ctx, l.ID, businessOwnerID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, l.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RecordView(ctx, l.ID))
	require.NoError(t, svc.RecordView(ctx, l.ID))
	assert.Equal(t, 2, repo.views[l.ID])
}
