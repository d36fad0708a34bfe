package compliance

import (
	"math/rand"
	"testing"
	"time"

	"bvest/internal/config"
	"bvest/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testGate() *Gate {
	return NewGate(config.PlatformConfig{
		NonAccreditedCeiling: decimal.NewFromInt(50000),
		ReadinessFloor:       60,
		HighInterestViews:    100,
	})
}

func activeClaims() models.ComplianceClaims {
	return models.ComplianceClaims{
		UserID:           1,
		KYCLevel:         models.KYCLevelEnhanced,
		AMLCleared:       true,
		SanctionsCleared: true,
		Accredited:       true,
		SingleTxnLimit:   decimal.NewFromInt(100000),
		DailyLimit:       decimal.NewFromInt(200000),
		MonthlyLimit:     decimal.NewFromInt(500000),
		AccountStatus:    models.AccountStatusActive,
	}
}

func TestAuthorize_SanctionsHoldOverridesEverything(t *testing.T) {
	gate := testGate()
	rng := rand.New(rand.NewSource(42))

	statuses := []string{models.AccountStatusActive, models.AccountStatusRestricted, models.AccountStatusClosed}
	levels := []string{models.KYCLevelNone, models.KYCLevelBasic, models.KYCLevelEnhanced, models.KYCLevelPremium}
	actions := []Action{ActionCreatePledge, ActionAcceptPledge, ActionWithdraw, ActionCreateListing}

	for i := 0; i < 500; i++ {
		claims := models.ComplianceClaims{
			UserID:                     uint(rng.Intn(1000)),
			KYCLevel:                   levels[rng.Intn(len(levels))],
			Accredited:                 rng.Intn(2) == 0,
			AMLCleared:                 rng.Intn(2) == 0,
			SanctionsCleared:           false,
			SingleTxnLimit:             decimal.NewFromInt(rng.Int63n(1000000)),
			DailyLimit:                 decimal.NewFromInt(rng.Int63n(1000000)),
			MonthlyLimit:               decimal.NewFromInt(rng.Int63n(1000000)),
			AllowRestrictedWithdrawals: rng.Intn(2) == 0,
			AccountStatus:              statuses[rng.Intn(len(statuses))],
		}
		req := Request{
			Action:       actions[rng.Intn(len(actions))],
			Amount:       decimal.NewFromInt(rng.Int63n(100000)),
			DailySpent:   decimal.NewFromInt(rng.Int63n(100000)),
			MonthlySpent: decimal.NewFromInt(rng.Int63n(100000)),
		}

		decision := gate.Authorize(claims, req)
		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonSanctionsHold, decision.Reason)
	}
}

func TestAuthorize_AccountStatus(t *testing.T) {
	gate := testGate()

	t.Run("closed account denies all actions", func(t *testing.T) {
		claims := activeClaims()
		claims.AccountStatus = models.AccountStatusClosed

		for _, action := range []Action{ActionCreatePledge, ActionAcceptPledge, ActionWithdraw, ActionCreateListing} {
			decision := gate.Authorize(claims, Request{Action: action, Amount: decimal.NewFromInt(100)})
			assert.False(t, decision.Allowed)
			assert.Equal(t, ReasonAccountClosed, decision.Reason)
		}
	})

	t.Run("restricted account denies by default", func(t *testing.T) {
		claims := activeClaims()
		claims.AccountStatus = models.AccountStatusRestricted

		decision := gate.Authorize(claims, Request{Action: ActionCreatePledge, Amount: decimal.NewFromInt(100)})
		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonAccountRestricted, decision.Reason)
	})

	t.Run("restricted account allows permitted withdrawals", func(t *testing.T) {
		claims := activeClaims()
		claims.AccountStatus = models.AccountStatusRestricted
		claims.AllowRestrictedWithdrawals = true

		decision := gate.Authorize(claims, Request{Action: ActionWithdraw, Amount: decimal.NewFromInt(100)})
		assert.True(t, decision.Allowed)

		decision = gate.Authorize(claims, Request{Action: ActionCreatePledge, Amount: decimal.NewFromInt(100)})
		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonAccountRestricted, decision.Reason)
	})
}

func TestAuthorize_CreateListingRequiresKYC(t *testing.T) {
	gate := testGate()

	claims := activeClaims()
	claims.KYCLevel = models.KYCLevelNone
	decision := gate.Authorize(claims, Request{Action: ActionCreateListing})
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonKYCRequired, decision.Reason)

	claims.KYCLevel = models.KYCLevelBasic
	decision = gate.Authorize(claims, Request{Action: ActionCreateListing})
	assert.True(t, decision.Allowed)
}

func TestAuthorize_MonetaryLimits(t *testing.T) {
	gate := testGate()

	tests := []struct {
		name       string
		setup      func(*models.ComplianceClaims)
		req        Request
		wantAllow  bool
		wantReason string
	}{
		{
			name:      "within all limits",
			req:       Request{Action: ActionCreatePledge, Amount: decimal.NewFromInt(10000)},
			wantAllow: true,
		},
		{
			name:       "exceeds single limit",
			req:        Request{Action: ActionCreatePledge, Amount: decimal.NewFromInt(150000)},
			wantAllow:  false,
			wantReason: ReasonExceedsSingleLimit,
		},
		{
			name: "exceeds daily limit with accumulated spend",
			req: Request{
				Action:     ActionCreatePledge,
				Amount:     decimal.NewFromInt(50000),
				DailySpent: decimal.NewFromInt(160000),
			},
			wantAllow:  false,
			wantReason: ReasonExceedsDailyLimit,
		},
		{
			name: "exceeds monthly limit with accumulated spend",
			req: Request{
				Action:       ActionCreatePledge,
				Amount:       decimal.NewFromInt(50000),
				MonthlySpent: decimal.NewFromInt(460000),
			},
			wantAllow:  false,
			wantReason: ReasonExceedsMonthlyLimit,
		},
		{
			name: "daily limit boundary is inclusive",
			req: Request{
				Action:     ActionCreatePledge,
				Amount:     decimal.NewFromInt(40000),
				DailySpent: decimal.NewFromInt(160000),
			},
			wantAllow: true,
		},
		{
			name: "aml not cleared denies monetary actions",
			setup: func(c *models.ComplianceClaims) {
				c.AMLCleared = false
			},
			req:        Request{Action: ActionCreatePledge, Amount: decimal.NewFromInt(100)},
			wantAllow:  false,
			wantReason: ReasonAMLPending,
		},
		{
			name: "zero-amount action skips limit checks",
			setup: func(c *models.ComplianceClaims) {
				c.AMLCleared = false
			},
			req:       Request{Action: ActionAcceptPledge},
			wantAllow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := activeClaims()
			if tt.setup != nil {
				tt.setup(&claims)
			}

			decision := gate.Authorize(claims, tt.req)
			assert.Equal(t, tt.wantAllow, decision.Allowed)
			if !tt.wantAllow {
				assert.Equal(t, tt.wantReason, decision.Reason)
			}
		})
	}
}

func TestAuthorize_NonAccreditedCeiling(t *testing.T) {
	gate := testGate()

	t.Run("ceiling clamps a higher claims limit", func(t *testing.T) {
		// Claims nominally allow 200,000 but the platform ceiling for
		// non-accredited investors is 50,000.
		claims := activeClaims()
		claims.Accredited = false
		claims.SingleTxnLimit = decimal.NewFromInt(200000)

		decision := gate.Authorize(claims, Request{Action: ActionCreatePledge, Amount: decimal.NewFromInt(80000)})
		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonExceedsSingleLimit, decision.Reason)

		decision = gate.Authorize(claims, Request{Action: ActionCreatePledge, Amount: decimal.NewFromInt(50000)})
		assert.True(t, decision.Allowed)
	})

	t.Run("expired accreditation is treated as non-accredited", func(t *testing.T) {
		expired := time.Now().Add(-24 * time.Hour)
		claims := activeClaims()
		claims.AccreditedUntil = &expired
		claims.SingleTxnLimit = decimal.NewFromInt(200000)

		decision := gate.Authorize(claims, Request{Action: ActionCreatePledge, Amount: decimal.NewFromInt(80000)})
		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonExceedsSingleLimit, decision.Reason)
	})

	t.Run("ceiling does not clamp accredited investors", func(t *testing.T) {
		claims := activeClaims()
		decision := gate.Authorize(claims, Request{Action: ActionCreatePledge, Amount: decimal.NewFromInt(80000)})
		assert.True(t, decision.Allowed)
	})

	t.Run("ceiling does not apply to withdrawals", func(t *testing.T) {
		claims := activeClaims()
		claims.Accredited = false
		claims.SingleTxnLimit = decimal.NewFromInt(200000)

		decision := gate.Authorize(claims, Request{Action: ActionWithdraw, Amount: decimal.NewFromInt(80000)})
		assert.True(t, decision.Allowed)
	})
}

func TestAuthorize_Deterministic(t *testing.T) {
	gate := testGate()
	claims := activeClaims()
	req := Request{Action: ActionCreatePledge, Amount: decimal.NewFromInt(80000), Now: time.Unix(1700000000, 0)}

	first := gate.Authorize(claims, req)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, gate.Authorize(claims, req))
	}
}
